package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a declared package's full resolved record",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	engine.Ingest(cmd.Context())
	rec, cfg, ok := engine.Registry.Lookup(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown package: %s\n", args[0])
		os.Exit(1)
	}

	fmt.Printf("name:      %s\n", rec.Name)
	fmt.Printf("source:    %s\n", rec.Source)
	fmt.Printf("path:      %s\n", rec.Path)
	fmt.Printf("local:     %v\n", rec.Local)
	fmt.Printf("disabled:  %v\n", rec.Disabled)
	fmt.Printf("load:      %s\n", rec.LoadMode)
	if !rec.Ref.IsZero() {
		fmt.Printf("ref:       %s:%s\n", rec.Ref.Kind, rec.Ref.Value)
	}
	if rec.Build != "" {
		fmt.Printf("build:     %s\n", rec.Build)
	}
	if rec.EntryOverride != "" {
		fmt.Printf("source_file: %s\n", rec.EntryOverride)
	}
	if len(cfg.Depends) > 0 {
		fmt.Printf("depends:   %s\n", strings.Join(cfg.Depends, ", "))
	}
	if len(cfg.Env) > 0 {
		fmt.Printf("env:       %s\n", strings.Join(cfg.Env, ", "))
	}
	if len(cfg.Paths) > 0 {
		fmt.Printf("path:      %s\n", strings.Join(cfg.Paths, ", "))
	}
	if len(cfg.FPaths) > 0 {
		fmt.Printf("fpath:     %s\n", strings.Join(cfg.FPaths, ", "))
	}
	if len(cfg.Aliases) > 0 {
		fmt.Printf("alias:     %s\n", strings.Join(cfg.Aliases, ", "))
	}
	if cfg.RC != "" {
		fmt.Printf("rc:        %s\n", cfg.RC)
	}
	return nil
}
