package commands

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/lane-core/pack/internal/resolver"
	"github.com/lane-core/pack/internal/types"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run a read-only diagnostic pass over the environment and declarations",
	Long: `doctor reports problems without mutating anything: a missing git
binary, orphaned installs under the packages directory, registry records
pointing at a missing path, and unresolved dependency edges — the same
warnings a full install would surface, without running one.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	declErrs := engine.Ingest(cmd.Context())
	for _, e := range declErrs {
		fmt.Fprintf(os.Stderr, "declaration error: %s\n", e.Error())
	}

	healthy := true

	if _, err := exec.LookPath("git"); err != nil {
		healthy = false
		fmt.Println("missing: git binary not found on PATH")
	}

	recorded := make(map[string]bool)
	engine.Registry.Each(func(rec *types.PackageRecord, _ *types.PackageConfig) {
		recorded[rec.Name] = true
		if _, err := os.Stat(rec.Path); err != nil {
			healthy = false
			fmt.Printf("missing path: %s expects %s\n", rec.Name, rec.Path)
		}
	})

	entries, err := os.ReadDir(engine.Paths.PackagesDir())
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() && !recorded[entry.Name()] {
				healthy = false
				fmt.Printf("orphaned install: %s has no matching declaration\n", entry.Name())
			}
		}
	}

	result, resolveErr := resolver.Resolve(engine.Registry)
	if resolveErr != nil {
		healthy = false
		fmt.Printf("resolution error: %s\n", resolveErr.Error())
	}
	for _, w := range result.Warnings {
		healthy = false
		fmt.Printf("dependency warning: %s\n", w.Error())
	}

	if healthy {
		fmt.Println("no problems found")
	}
	return nil
}
