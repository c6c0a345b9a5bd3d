// Package apply projects one PackageConfig field at a time onto a
// HostSession. Every applier is idempotent per (package, session) pair
// and silently no-ops on empty fields, per spec §4.7.
package apply

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lane-core/pack/internal/session"
	"github.com/lane-core/pack/internal/types"
)

// Env exports each NAME=VALUE pair. A package may overwrite any variable;
// the host session is trusted.
func Env(s session.HostSession, cfg *types.PackageConfig) {
	for _, kv := range cfg.Env {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		s.ExportEnv(name, value)
	}
}

// Path prepends each directory to the session's executable search path.
// Relative entries resolve against the record's installed path.
// Non-existent directories are skipped.
func Path(s session.HostSession, rec *types.PackageRecord, cfg *types.PackageConfig) {
	for _, dir := range cfg.Paths {
		s.PrependSearchPath(resolveRelative(rec.Path, dir))
	}
}

// Alias defines each name=value pair in the session's alias table.
func Alias(s session.HostSession, cfg *types.PackageConfig) {
	for _, kv := range cfg.Aliases {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		s.AddAlias(name, value)
	}
}

// FPath prepends each directory to the function-search path and registers
// every non-hidden file within it for autoload under its basename, with
// the given source-file suffix stripped.
func FPath(s session.HostSession, rec *types.PackageRecord, cfg *types.PackageConfig, suffix string) {
	for _, dir := range cfg.FPaths {
		full := resolveRelative(rec.Path, dir)
		entries, err := os.ReadDir(full)
		if err != nil {
			continue
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			names = append(names, stripSuffix(e.Name(), suffix))
		}
		s.RegisterAutoload(full, names)
	}
}

// RC evaluates the package's rc snippet with PKG_DIR and PKG_NAME bound.
// Failure is reported via the returned error but is never fatal to the
// caller's batch.
func RC(ctx context.Context, s session.HostSession, rec *types.PackageRecord, cfg *types.PackageConfig) error {
	if strings.TrimSpace(cfg.RC) == "" {
		return nil
	}
	env := map[string]string{"PKG_DIR": rec.Path, "PKG_NAME": rec.Name}
	if err := s.EvalSnippet(ctx, cfg.RC, env); err != nil {
		return &types.RcFailure{Package: rec.Name, Message: err.Error()}
	}
	return nil
}

// Build evaluates the package's build snippet with PKG_DIR and PKG_NAME
// bound, run once after a successful install or update. Failure is
// reported via the returned error but is never fatal to the caller's
// batch, the same as RC.
func Build(ctx context.Context, s session.HostSession, rec *types.PackageRecord) error {
	if strings.TrimSpace(rec.Build) == "" {
		return nil
	}
	env := map[string]string{"PKG_DIR": rec.Path, "PKG_NAME": rec.Name}
	if err := s.EvalSnippet(ctx, rec.Build, env); err != nil {
		return &types.BuildFailure{Package: rec.Name, Message: err.Error()}
	}
	return nil
}

func resolveRelative(base, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

func stripSuffix(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return strings.TrimSuffix(name, "."+suffix)
}
