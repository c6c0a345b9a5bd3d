// Package config resolves the XDG-style directory layout and ambient
// settings (log level, config/data overrides) used across the pack
// commands, grounded on the teacher's internal/config path-resolution
// pattern: env-var-first, default-second.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName is the directory component under each XDG base, "<app>" in the
// directory table.
const appName = "pack"

// Paths contains the standard directories pack reads and writes.
type Paths struct {
	Data   string // $DATA/pack
	Config string // $CONFIG/pack
	Cache  string // $DATA/pack/cache
	State  string // $DATA/pack/state
}

// GetPaths returns the standard paths, honoring configDirOverride and
// dataDirOverride (from --config-dir/--data-dir) ahead of the XDG
// environment variables.
func GetPaths(configDirOverride, dataDirOverride string) *Paths {
	dataHome := dataDirOverride
	if dataHome == "" {
		dataHome = filepath.Join(getEnvOrDefault("XDG_DATA_HOME", defaultDataHome()), appName)
	}
	configHome := configDirOverride
	if configHome == "" {
		configHome = filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), appName)
	}
	return &Paths{
		Data:   dataHome,
		Config: configHome,
		Cache:  filepath.Join(dataHome, "cache"),
		State:  filepath.Join(dataHome, "state"),
	}
}

// EnsurePaths creates all required directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Data, p.Config, p.Cache, p.State} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// PackagesDir returns $DATA/pack/packages, the root of installed package
// working trees.
func (p *Paths) PackagesDir() string {
	return filepath.Join(p.Data, "packages")
}

// LockPath returns $DATA/pack/state/lock.
func (p *Paths) LockPath() string {
	return filepath.Join(p.State, "lock")
}

// VCSCacheDir returns $DATA/pack/cache/vcs, the revision cache root.
func (p *Paths) VCSCacheDir() string {
	return filepath.Join(p.Cache, "vcs")
}

// ScriptConfigPath returns $CONFIG/pack/config, the script-layer entry
// point.
func (p *Paths) ScriptConfigPath() string {
	return filepath.Join(p.Config, "config")
}

// PackageConfigDir returns $CONFIG/pack/packages/<name>, the filesystem
// layer root for one package.
func (p *Paths) PackageConfigDir(name string) string {
	return filepath.Join(p.Config, "packages", name)
}

// AggregationDir returns $CONFIG/pack/pkgs.d, the glob root for
// aggregated script layers.
func (p *Paths) AggregationDir() string {
	return filepath.Join(p.Config, "pkgs.d")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}
