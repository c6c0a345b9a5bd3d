package config

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseLogLevel(input), "input=%q", input)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PACK_LOG_LEVEL", "debug")
	t.Setenv("PACK_PRINT_LOGS", "1")
	t.Setenv("PACK_CONFIG_DIR", "/tmp/cfg")
	t.Setenv("PACK_DATA_DIR", "/tmp/data")

	s := Load()
	assert.Equal(t, zerolog.DebugLevel, s.LogLevel)
	assert.True(t, s.PrintLogs)
	assert.Equal(t, "/tmp/cfg", s.ConfigDir)
	assert.Equal(t, "/tmp/data", s.DataDir)
}

func TestLoadDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("PACK_LOG_LEVEL")
	os.Unsetenv("PACK_PRINT_LOGS")
	os.Unsetenv("PACK_CONFIG_DIR")
	os.Unsetenv("PACK_DATA_DIR")

	s := Load()
	assert.Equal(t, zerolog.InfoLevel, s.LogLevel)
	assert.False(t, s.PrintLogs)
	assert.Empty(t, s.ConfigDir)
	assert.Empty(t, s.DataDir)
}

func TestSettingsPathsHonorsOverrides(t *testing.T) {
	s := &Settings{ConfigDir: "/override/config", DataDir: "/override/data"}
	p := s.Paths()
	assert.Equal(t, "/override/config", p.Config)
	assert.Equal(t, "/override/data", p.Data)
	assert.Equal(t, "/override/data/cache", p.Cache)
	assert.Equal(t, "/override/data/state", p.State)
}
