package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Pull a fresh revision for installed packages and re-apply their configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	summary, _ := engine.Update(cmd.Context())
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
