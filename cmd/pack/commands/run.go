package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var runPkg string

var runCmd = &cobra.Command{
	Use:   "run [--pkg NAME] CMD [ARGS...]",
	Short: "Evaluate a command in the host session",
	Long: `run evaluates CMD through the same host session packages are
applied to. With --pkg, PKG_DIR and PKG_NAME are injected for NAME
exactly as they are for that package's own rc snippet and entry point.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runPkg, "pkg", "", "Run with PKG_DIR/PKG_NAME set for this declared package")
}

func runRun(cmd *cobra.Command, args []string) error {
	env := map[string]string{}
	if runPkg != "" {
		engine.Ingest(cmd.Context())
		rec, _, ok := engine.Registry.Lookup(runPkg)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown package: %s\n", runPkg)
			os.Exit(1)
		}
		env["PKG_DIR"] = rec.Path
		env["PKG_NAME"] = rec.Name
	}

	snippet := strings.Join(args, " ")
	if err := engine.Session.EvalSnippet(cmd.Context(), snippet, env); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}
