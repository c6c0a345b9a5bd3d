// Package commands provides the CLI commands for pack.
package commands

import (
	"fmt"

	"github.com/lane-core/pack/internal/config"
	"github.com/lane-core/pack/internal/logging"
	"github.com/lane-core/pack/internal/pack"
	"github.com/spf13/cobra"
)

var (
	// Version information set at build time.
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags.
var (
	printLogs bool
	logLevel  string
	configDir string
	dataDir   string
)

// engine is the shared core facade every subcommand's RunE closes over.
// It's built in PersistentPreRunE once flags and environment are merged,
// the way the teacher threads GetWorkDir/GetGlobalModel to subcommands
// off package-level state set up in root.go.
var engine *pack.Engine

var rootCmd = &cobra.Command{
	Use:   "pack",
	Short: "pack - declarative package manager for shell plugins",
	Long: `pack declares named shell plugins in a script, filesystem, or
aggregated configuration layer, resolves a dependency-safe load order,
installs missing packages concurrently, and applies each package's
configuration to the host shell session.`,
	Version:           fmt.Sprintf("%s (%s)", Version, BuildTime),
	PersistentPreRunE: setupEngine,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func setupEngine(cmd *cobra.Command, args []string) error {
	settings := config.Load()
	if cmd.Flags().Changed("log-level") {
		settings.LogLevel = config.ParseLogLevel(logLevel)
	}
	if cmd.Flags().Changed("print-logs") {
		settings.PrintLogs = printLogs
	}
	if cmd.Flags().Changed("config-dir") {
		settings.ConfigDir = configDir
	}
	if cmd.Flags().Changed("data-dir") {
		settings.DataDir = dataDir
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = settings.LogLevel
	logCfg.Pretty = settings.PrintLogs
	if !settings.PrintLogs {
		logCfg.Level = logging.FatalLevel
	}
	logging.Init(logCfg)

	engine = pack.New(settings.Paths())
	return engine.Bootstrap()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Override $CONFIG/pack")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Override $DATA/pack")

	rootCmd.SetVersionTemplate(fmt.Sprintf("pack %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(freezeCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(selfUpdateCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
