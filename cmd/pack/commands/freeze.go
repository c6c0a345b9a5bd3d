package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var freezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "Pin every enabled, non-local package's current commit into the lockfile",
	Args:  cobra.NoArgs,
	RunE:  runFreeze,
}

func runFreeze(cmd *cobra.Command, args []string) error {
	engine.Ingest(cmd.Context())
	if _, err := engine.Resolve(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := engine.Freeze(cmd.Context(), time.Now().Unix()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}
