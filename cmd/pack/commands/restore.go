package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Re-clone every lockfile entry at its pinned commit",
	Args:  cobra.NoArgs,
	RunE:  runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	if err := engine.Restore(cmd.Context()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}
