// Package loader implements the two-pass install/apply pipeline: pass 1
// fans out clone tasks for missing packages, pass 2 drains LoadOrder in
// dependency order, applying each package's field effects and sourcing
// its entry point only after every transitive dependency has already
// been applied.
package loader

import (
	"context"
	"os"
	"path/filepath"

	"github.com/lane-core/pack/internal/apply"
	"github.com/lane-core/pack/internal/hook"
	"github.com/lane-core/pack/internal/installer"
	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/session"
	"github.com/lane-core/pack/internal/types"
)

// CloneRunner performs the clone-task contract for one package record.
type CloneRunner interface {
	Run(ctx context.Context, rec *types.PackageRecord) error
}

// Loader drives one pass over the registry's LoadOrder.
type Loader struct {
	Registry    *registry.Registry
	Pool        *installer.Pool
	Session     session.HostSession
	Hooks       *hook.Bus
	Clone       CloneRunner
	ManagedRoot string

	// EntrySuffix names the shell-specific entry-point suffix ("sh" by
	// default); init.<suffix>, plugin.<suffix>, <name>.<suffix> are tried
	// in that order when load=now and no entry_override is set.
	EntrySuffix string

	loaded map[string]bool
}

// New creates a Loader with EntrySuffix defaulted to "sh".
func New(reg *registry.Registry, pool *installer.Pool, sess session.HostSession, hooks *hook.Bus, clone CloneRunner, managedRoot string) *Loader {
	return &Loader{
		Registry:    reg,
		Pool:        pool,
		Session:     sess,
		Hooks:       hooks,
		Clone:       clone,
		ManagedRoot: managedRoot,
		EntrySuffix: "sh",
		loaded:      make(map[string]bool),
	}
}

// Loaded reports whether name has already been applied to the session.
func (l *Loader) Loaded(name string) bool { return l.loaded[name] }

// candidate reports whether a record is eligible for installation/loading
// at all: enabled and not load_mode=manual.
func candidate(rec *types.PackageRecord) bool {
	return !rec.Disabled && rec.LoadMode != types.LoadManual
}

// Run executes pass 1 (fan-out) then pass 2 (ordered drain) over the
// registry's current LoadOrder, returning an accumulated Summary.
func (l *Loader) Run(ctx context.Context) *types.Summary {
	summary := &types.Summary{}
	l.fanOut(ctx)
	l.drain(ctx, summary)
	if l.Hooks != nil {
		l.Hooks.Fire(hook.Ready, nil)
	}
	return summary
}

func (l *Loader) fanOut(ctx context.Context) {
	for _, name := range l.Registry.LoadOrder() {
		rec, _, ok := l.Registry.Lookup(name)
		if !ok || l.loaded[name] || !candidate(rec) {
			continue
		}
		if _, err := os.Stat(rec.Path); err == nil {
			continue // already on disk
		}
		if rec.Local {
			continue // local packages are never cloned
		}
		if l.Hooks != nil {
			l.Hooks.Fire(hook.PreInstall, name)
		}
		rec := rec
		l.Pool.Defer(name, func() error {
			return l.Clone.Run(ctx, rec)
		})
	}
}

func (l *Loader) drain(ctx context.Context, summary *types.Summary) {
	for _, name := range l.Registry.LoadOrder() {
		rec, cfg, ok := l.Registry.Lookup(name)
		if !ok || l.loaded[name] || !candidate(rec) {
			continue
		}

		if future, pending := l.Pool.Take(name); pending {
			result := future.Await()
			if result.Err != nil {
				summary.VCSErrors = append(summary.VCSErrors, &types.VCSError{
					Package: name, Message: result.Err.Error(),
				})
				continue
			}
			if l.Hooks != nil {
				l.Hooks.Fire(hook.PostInstall, name)
			}
			if buildErr := apply.Build(ctx, l.Session, rec); buildErr != nil {
				if bf, ok := buildErr.(*types.BuildFailure); ok {
					summary.BuildFailures = append(summary.BuildFailures, bf)
				}
			}
		} else if _, err := os.Stat(rec.Path); err != nil && !rec.Local {
			summary.VCSErrors = append(summary.VCSErrors, &types.VCSError{
				Package: name, Message: "package directory missing",
			})
			continue
		}

		apply.Env(l.Session, cfg)
		apply.Path(l.Session, rec, cfg)
		apply.Alias(l.Session, cfg)
		apply.FPath(l.Session, rec, cfg, l.EntrySuffix)

		if l.Hooks != nil {
			l.Hooks.Fire(hook.PreLoad, name)
		}

		if rec.LoadMode == types.LoadNow {
			l.sourceEntryPoint(ctx, rec, summary)
		}

		if err := apply.RC(ctx, l.Session, rec, cfg); err != nil {
			if rc, ok := err.(*types.RcFailure); ok {
				summary.RCFailures = append(summary.RCFailures, rc)
			}
		}

		if l.Hooks != nil {
			l.Hooks.Fire(hook.PostLoad, name)
		}
		l.loaded[name] = true
	}
}

func (l *Loader) sourceEntryPoint(ctx context.Context, rec *types.PackageRecord, summary *types.Summary) {
	candidates, entry := l.entryCandidates(rec)
	if entry == "" {
		summary.EntryMissing = append(summary.EntryMissing, &types.EntryMissing{
			Package: rec.Name, Tried: candidates,
		})
		return
	}
	env := map[string]string{"PKG_DIR": rec.Path, "PKG_NAME": rec.Name}
	_ = l.Session.SourceScript(ctx, entry, env)
}

// entryCandidates returns the ordered list of paths tried, and the first
// one that exists (empty if none do).
func (l *Loader) entryCandidates(rec *types.PackageRecord) ([]string, string) {
	if rec.EntryOverride != "" {
		path := rec.EntryOverride
		if !filepath.IsAbs(path) {
			path = filepath.Join(rec.Path, path)
		}
		if fileExists(path) {
			return []string{path}, path
		}
		return []string{path}, ""
	}

	names := []string{
		"init." + l.EntrySuffix,
		"plugin." + l.EntrySuffix,
		rec.Name + "." + l.EntrySuffix,
	}
	var tried []string
	for _, n := range names {
		full := filepath.Join(rec.Path, n)
		tried = append(tried, full)
		if fileExists(full) {
			return tried, full
		}
	}
	return tried, ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
