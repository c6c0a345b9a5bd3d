package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Evict a package from the registry and delete its working tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	engine.Ingest(cmd.Context())
	if err := engine.Remove(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "remove %s: %v\n", args[0], err)
		os.Exit(1)
	}
	return nil
}
