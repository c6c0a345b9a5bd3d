package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install [name]",
	Short: "Ingest declarations, resolve load order, and install missing packages",
	Long: `install runs the full ingest/resolve/install pipeline. With no
argument it installs every enabled package; given a name it still runs
the full pipeline (dependencies must be installed together) but fails
with an unknown-package error if name was never declared.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	summary, _ := engine.Install(cmd.Context())
	reportSummary(summary)
	if len(args) == 1 {
		if _, _, ok := engine.Registry.Lookup(args[0]); !ok {
			fmt.Fprintf(os.Stderr, "unknown package: %s\n", args[0])
			os.Exit(1)
		}
	}
	exitOnSummary(summary)
	return nil
}
