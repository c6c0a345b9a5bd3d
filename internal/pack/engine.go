// Package pack is the core facade: it wires the registry, resolver,
// installer, loader, lockfile, revision cache, and hook bus together into
// the operations the CLI layer calls, the way the teacher's own core
// service type composes its storage, provider, and session packages
// behind one entry point.
package pack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lane-core/pack/internal/apply"
	"github.com/lane-core/pack/internal/cache"
	"github.com/lane-core/pack/internal/config"
	"github.com/lane-core/pack/internal/hook"
	"github.com/lane-core/pack/internal/ingest"
	"github.com/lane-core/pack/internal/installer"
	"github.com/lane-core/pack/internal/loader"
	"github.com/lane-core/pack/internal/lockfile"
	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/resolver"
	"github.com/lane-core/pack/internal/session"
	"github.com/lane-core/pack/internal/types"
	"github.com/lane-core/pack/internal/vcs"
)

// revisionCacheTTL bounds how long a remembered default-branch lookup is
// trusted before falling through to a live git call again.
const revisionCacheTTL = 6 * time.Hour

// Engine is the top-level entry point CLI commands call into.
type Engine struct {
	Paths    *config.Paths
	Registry *registry.Registry
	Hooks    *hook.Bus
	Session  session.HostSession

	vcs       *vcs.Client
	pool      *installer.Pool
	cache     *cache.VCSCache
	lock      *lockfile.Lockfile
	cloneTask *installer.CloneTask
}

// New builds an Engine rooted at paths, with a real git-backed VCS client
// and a real HostSession. Paths' directories are not created here — call
// Bootstrap first.
func New(paths *config.Paths) *Engine {
	reg := registry.New()
	bus := hook.New()
	client := vcs.New()
	pool := installer.New()

	reg.OnDisable(func(name string) {
		bus.Fire(hook.PackageDisabled, name)
	})

	e := &Engine{
		Paths:    paths,
		Registry: reg,
		Hooks:    bus,
		Session:  session.NewRealSession(nil),
		vcs:      client,
		pool:     pool,
		cache:    cache.New(paths.VCSCacheDir(), revisionCacheTTL),
		lock:     lockfile.New(paths.LockPath()),
	}
	e.cloneTask = &installer.CloneTask{
		Client:        cloneClientAdapter{e},
		IsRefNotFound: vcs.IsRefNotFoundErr,
		Remove:        vcs.RemoveIfManaged,
		ManagedRoot:   paths.PackagesDir(),
	}
	return e
}

// Bootstrap ensures every standard directory exists.
func (e *Engine) Bootstrap() error {
	return e.Paths.EnsurePaths()
}

// Ingest runs all three config layers against the registry, in the
// script → filesystem → aggregation order spec.md §4.2 requires.
func (e *Engine) Ingest(ctx context.Context) []*types.DeclarationError {
	ing := ingest.New(e.Registry)
	ing.ScriptPath = e.Paths.ScriptConfigPath()
	ing.FilesystemRoot = filepath.Join(e.Paths.Config, "packages")
	ing.AggregationRoot = e.Paths.AggregationDir()
	errs := ing.Run(ctx)
	e.assignManagedPaths()
	return errs
}

// assignManagedPaths points every non-local record's Path at its
// directory under the managed packages root, overwriting the bare
// canonicalized source Declare seeds it with. Local records keep the
// absolute path they were declared with.
func (e *Engine) assignManagedPaths() {
	e.Registry.Each(func(rec *types.PackageRecord, _ *types.PackageConfig) {
		if !rec.Local {
			rec.Path = filepath.Join(e.Paths.PackagesDir(), rec.Name)
		}
	})
}

// Resolve fires pre-resolve, runs the topological sort, installs the
// result as the registry's LoadOrder, and fires post-resolve — keeping
// the hook bus wiring at this orchestration layer rather than inside the
// pure resolver package.
func (e *Engine) Resolve() (resolver.Result, error) {
	e.Hooks.Fire(hook.PreResolve, nil)
	result, err := resolver.Resolve(e.Registry)
	if err != nil {
		return result, err
	}
	e.Registry.SetLoadOrder(result.Order)
	e.Hooks.Fire(hook.PostResolve, result.Order)
	return result, nil
}

// newLoader builds a loader.Loader bound to this engine's dependencies.
// Ingest has already assigned every non-local record's managed path.
func (e *Engine) newLoader() *loader.Loader {
	return loader.New(e.Registry, e.pool, e.Session, e.Hooks, e.cloneTask, e.Paths.PackagesDir())
}

// Install ingests, resolves, and runs the two-pass install/apply
// pipeline, returning the accumulated summary.
func (e *Engine) Install(ctx context.Context) (*types.Summary, error) {
	declErrs := e.Ingest(ctx)
	result, err := e.Resolve()
	summary := &types.Summary{Declarations: declErrs, Warnings: result.Warnings}
	if err != nil {
		if resErr, ok := err.(*types.ResolutionError); ok {
			summary.Resolution = resErr
		}
		return summary, err
	}

	l := e.newLoader()
	passSummary := l.Run(ctx)
	summary.VCSErrors = passSummary.VCSErrors
	summary.EntryMissing = passSummary.EntryMissing
	summary.RCFailures = passSummary.RCFailures
	summary.BuildFailures = passSummary.BuildFailures
	return summary, nil
}

// Update ingests, resolves, pulls a fresh revision for every already-
// installed remote package (fetch+checkout for a pinned tag, pull for a
// branch or unpinned default), then re-runs the apply pass so field
// effects and entry points reflect the refreshed checkout. A commit-
// pinned package is left untouched — update never moves a pin.
func (e *Engine) Update(ctx context.Context) (*types.Summary, error) {
	declErrs := e.Ingest(ctx)
	result, err := e.Resolve()
	summary := &types.Summary{Declarations: declErrs, Warnings: result.Warnings}
	if err != nil {
		if resErr, ok := err.(*types.ResolutionError); ok {
			summary.Resolution = resErr
		}
		return summary, err
	}

	e.Registry.Each(func(rec *types.PackageRecord, _ *types.PackageConfig) {
		if rec.Local {
			return
		}
		path := filepath.Join(e.Paths.PackagesDir(), rec.Name)
		if !e.vcs.HasCheckout(path) {
			return
		}
		if pullErr := e.pullLatest(ctx, path, rec.Ref); pullErr != nil {
			summary.VCSErrors = append(summary.VCSErrors, &types.VCSError{
				Package: rec.Name, Message: pullErr.Error(),
			})
			return
		}
		if buildErr := apply.Build(ctx, e.Session, rec); buildErr != nil {
			if bf, ok := buildErr.(*types.BuildFailure); ok {
				summary.BuildFailures = append(summary.BuildFailures, bf)
			}
		}
	}, registry.Enabled)

	l := e.newLoader()
	passSummary := l.Run(ctx)
	summary.VCSErrors = append(summary.VCSErrors, passSummary.VCSErrors...)
	summary.EntryMissing = passSummary.EntryMissing
	summary.BuildFailures = append(summary.BuildFailures, passSummary.BuildFailures...)
	summary.RCFailures = passSummary.RCFailures
	return summary, nil
}

// pullLatest advances path to ref's latest upstream revision: a commit
// pin never advances, a tag ref is fetched and re-checked-out, and a
// branch ref or an unpinned record pulls its current branch.
func (e *Engine) pullLatest(ctx context.Context, path string, ref types.Ref) error {
	switch ref.Kind {
	case types.RefCommit:
		return nil
	case types.RefTag:
		if err := e.vcs.Fetch(ctx, path); err != nil {
			return err
		}
		return e.vcs.Checkout(ctx, path, ref.Value)
	default:
		return e.vcs.Pull(ctx, path)
	}
}

// Freeze pins every enabled, installed, non-local package's current
// commit into the lockfile.
func (e *Engine) Freeze(ctx context.Context, now int64) error {
	return lockfile.Freeze(ctx, e.lock, e.Registry, e.vcs.RevParseHEAD, now)
}

// Restore re-clones every lockfile entry at its pinned commit into the
// managed packages directory.
func (e *Engine) Restore(ctx context.Context) error {
	return lockfile.Restore(ctx, e.lock, e.Paths.PackagesDir(), func(ctx context.Context, source, dest, commit string) error {
		return e.vcs.CloneCommit(ctx, source, dest, commit)
	})
}

// Diff classifies every lockfile entry against the current on-disk
// revisions, plus any untracked installed directory.
func (e *Engine) Diff(ctx context.Context) ([]lockfile.DiffEntry, error) {
	onDisk := make(map[string]string)
	entries, err := os.ReadDir(e.Paths.PackagesDir())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(e.Paths.PackagesDir(), entry.Name())
		if rev, err := e.vcs.RevParseHEAD(ctx, dir); err == nil {
			onDisk[entry.Name()] = rev
		}
	}
	return lockfile.Diff(ctx, e.lock, onDisk)
}

// SelfUpdate pulls the latest revision into the directory containing the
// running executable, when that directory is itself a git checkout — the
// same pattern shell-plugin frameworks use to keep their own
// installation current independent of any declared package.
func (e *Engine) SelfUpdate(ctx context.Context) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	dir := filepath.Dir(exe)
	if !e.vcs.HasCheckout(dir) {
		return fmt.Errorf("%s is not a git checkout, nothing to self-update", dir)
	}
	return e.vcs.Pull(ctx, dir)
}

// Remove evicts a package from the registry and deletes its on-disk
// working tree (remote packages only — local packages are never touched).
func (e *Engine) Remove(name string) error {
	rec, _, ok := e.Registry.Lookup(name)
	if !ok {
		return os.ErrNotExist
	}
	if !rec.Local {
		if err := vcs.RemoveIfManaged(rec.Path, e.Paths.PackagesDir()); err != nil {
			return err
		}
	}
	e.Registry.Remove(name)
	return nil
}

// cloneClientAdapter adapts *vcs.Client (which also exposes Fetch/Pull/
// RevParseHEAD beyond what a clone task needs) to installer.CloneClient's
// narrower surface.
type cloneClientAdapter struct{ e *Engine }

func (a cloneClientAdapter) HasCheckout(dest string) bool { return a.e.vcs.HasCheckout(dest) }
func (a cloneClientAdapter) CloneCommit(ctx context.Context, source, dest, commit string) error {
	return a.e.vcs.CloneCommit(ctx, source, dest, commit)
}
func (a cloneClientAdapter) CloneRef(ctx context.Context, source, dest, ref string) error {
	return a.e.vcs.CloneRef(ctx, source, dest, ref)
}
// CloneDefault resolves the remote's default branch — via the revision
// cache when a fresh-enough entry exists, via a live `ls-remote` lookup
// otherwise — and clones that branch by name, so a loader pass touching
// many packages on their default branch doesn't re-query the remote for
// each one. A stale cached branch (the remote's default changed, or the
// cache simply outlived the repo) is detected when the named-branch
// clone fails: the entry is invalidated and the plain single-branch
// clone is used instead, exactly as if nothing had been cached.
func (a cloneClientAdapter) CloneDefault(ctx context.Context, source, dest string) error {
	name := filepath.Base(dest)
	branch, ok := a.e.cache.DefaultBranch(ctx, name)
	if !ok {
		resolved, err := a.e.vcs.DefaultBranch(ctx, source)
		if err != nil || resolved == "" {
			return a.e.vcs.CloneDefault(ctx, source, dest)
		}
		branch = resolved
		_ = a.e.cache.PutDefaultBranch(ctx, name, branch, time.Now())
	}
	if err := a.e.vcs.CloneRef(ctx, source, dest, branch); err != nil {
		_ = a.e.cache.Invalidate(ctx, name)
		return a.e.vcs.CloneDefault(ctx, source, dest)
	}
	return nil
}
