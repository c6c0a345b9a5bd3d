package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var diffFormat string

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the lockfile against on-disk revisions",
	Args:  cobra.NoArgs,
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "text", "Output format: text|json")
}

func runDiff(cmd *cobra.Command, args []string) error {
	entries, err := engine.Diff(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if diffFormat == "json" {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Println(string(data))
		return nil
	}

	drifted := false
	for _, e := range entries {
		fmt.Printf("%-20s %-10s locked=%-10s actual=%s\n", e.Name, e.Status, e.Locked, e.Actual)
		if e.Status != "unchanged" {
			drifted = true
		}
	}
	if drifted {
		os.Exit(2)
	}
	return nil
}
