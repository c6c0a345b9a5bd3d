package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var selfUpdateCmd = &cobra.Command{
	Use:   "self-update",
	Short: "Update pack's own installation, if it was installed via git",
	Args:  cobra.NoArgs,
	RunE:  runSelfUpdate,
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	if err := engine.SelfUpdate(cmd.Context()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}
