package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path <name>",
	Short: "Print a declared package's working-tree path",
	Args:  cobra.ExactArgs(1),
	RunE:  runPath,
}

func runPath(cmd *cobra.Command, args []string) error {
	engine.Ingest(cmd.Context())
	rec, _, ok := engine.Registry.Lookup(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown package: %s\n", args[0])
		os.Exit(1)
	}
	fmt.Println(rec.Path)
	return nil
}
