package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Settings holds the ambient, process-wide knobs controllable via flags or
// environment variables, independent of the per-package declarations the
// registry and ingesters handle.
type Settings struct {
	LogLevel  zerolog.Level
	PrintLogs bool
	ConfigDir string
	DataDir   string
}

// Load resolves Settings from environment variables, to be overridden by
// any CLI flags the caller parsed afterward. PACK_LOG_LEVEL defaults to
// info when unset or unrecognized.
func Load() *Settings {
	return &Settings{
		LogLevel:  ParseLogLevel(os.Getenv("PACK_LOG_LEVEL")),
		PrintLogs: os.Getenv("PACK_PRINT_LOGS") != "",
		ConfigDir: os.Getenv("PACK_CONFIG_DIR"),
		DataDir:   os.Getenv("PACK_DATA_DIR"),
	}
}

// ParseLogLevel maps the spec's debug|info|warn|error vocabulary onto
// zerolog's levels, defaulting unknown or empty input to info.
func ParseLogLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "info", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// Paths resolves the directory layout for these settings, honoring any
// --config-dir/--data-dir overrides already applied to ConfigDir/DataDir.
func (s *Settings) Paths() *Paths {
	return GetPaths(s.ConfigDir, s.DataDir)
}
