package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lane-core/pack/internal/hook"
	"github.com/lane-core/pack/internal/installer"
	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/session"
	"github.com/lane-core/pack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloner struct {
	fn func(rec *types.PackageRecord) error
}

func (f *fakeCloner) Run(_ context.Context, rec *types.PackageRecord) error {
	if f.fn != nil {
		return f.fn(rec)
	}
	return nil
}

func setup(t *testing.T, managedRoot string) (*registry.Registry, *Loader, *session.Fake) {
	r := registry.New()
	pool := installer.New()
	fake := session.NewFake()
	fake.ExistingDirs = nil
	bus := hook.New()
	cloner := &fakeCloner{fn: func(rec *types.PackageRecord) error {
		return os.MkdirAll(rec.Path, 0755)
	}}
	l := New(r, pool, fake, bus, cloner, managedRoot)
	return r, l, fake
}

func TestRunInstallsAndAppliesAPackageInOrder(t *testing.T) {
	root := t.TempDir()
	r, l, fake := setup(t, root)

	r.Declare("github.com/user/foo", map[string]registry.FieldValue{
		"env": registry.List("FOO=bar"),
	})
	rec, _, _ := r.Lookup("foo")
	rec.Path = filepath.Join(root, "foo")
	r.SetLoadOrder([]string{"foo"})

	summary := l.Run(context.Background())

	assert.Empty(t, summary.VCSErrors)
	assert.Equal(t, "bar", fake.Env["FOO"])
	assert.True(t, l.Loaded("foo"))
	assert.DirExists(t, rec.Path)
}

func TestRunSkipsLocalPackageInstallButStillApplies(t *testing.T) {
	root := t.TempDir()
	r, l, fake := setup(t, root)

	localPath := filepath.Join(root, "local-plugin")
	require.NoError(t, os.MkdirAll(localPath, 0755))

	r.Declare(localPath, map[string]registry.FieldValue{
		"alias": registry.List("g=git"),
	})
	r.SetLoadOrder([]string{"local-plugin"})

	summary := l.Run(context.Background())
	assert.Empty(t, summary.VCSErrors)
	assert.Equal(t, "git", fake.Aliases["g"])
}

func TestRunRecordsVCSErrorOnCloneFailure(t *testing.T) {
	root := t.TempDir()
	r := registry.New()
	pool := installer.New()
	fake := session.NewFake()
	bus := hook.New()
	cloner := &fakeCloner{fn: func(rec *types.PackageRecord) error {
		return errors.New("network unreachable")
	}}
	l := New(r, pool, fake, bus, cloner, root)

	r.Declare("github.com/user/bar", map[string]registry.FieldValue{})
	rec, _, _ := r.Lookup("bar")
	rec.Path = filepath.Join(root, "bar")
	r.SetLoadOrder([]string{"bar"})

	summary := l.Run(context.Background())
	require.Len(t, summary.VCSErrors, 1)
	assert.Equal(t, "bar", summary.VCSErrors[0].Package)
	assert.False(t, l.Loaded("bar"))
}

func TestRunSourcesEntryPointWhenLoadModeNow(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "foo")
	require.NoError(t, os.MkdirAll(pkgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "plugin.sh"), []byte("echo hi"), 0644))

	r := registry.New()
	pool := installer.New()
	fake := session.NewFake()
	bus := hook.New()
	l := New(r, pool, fake, bus, &fakeCloner{}, root)

	r.Declare(pkgDir, map[string]registry.FieldValue{
		"load": registry.Scalar("now"),
	})
	r.SetLoadOrder([]string{"foo"})

	summary := l.Run(context.Background())
	assert.Empty(t, summary.EntryMissing)
	require.Len(t, fake.Sourced, 1)
	assert.Equal(t, filepath.Join(pkgDir, "plugin.sh"), fake.Sourced[0].Path)
}

func TestRunReportsEntryMissingWhenNoCandidateExists(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "foo")
	require.NoError(t, os.MkdirAll(pkgDir, 0755))

	r := registry.New()
	pool := installer.New()
	fake := session.NewFake()
	bus := hook.New()
	l := New(r, pool, fake, bus, &fakeCloner{}, root)

	r.Declare(pkgDir, map[string]registry.FieldValue{
		"load": registry.Scalar("now"),
	})
	r.SetLoadOrder([]string{"foo"})

	summary := l.Run(context.Background())
	require.Len(t, summary.EntryMissing, 1)
	assert.Equal(t, "foo", summary.EntryMissing[0].Package)
}

func TestDisabledPackageIsSkippedEntirely(t *testing.T) {
	root := t.TempDir()
	r, l, fake := setup(t, root)

	r.Declare("github.com/user/foo", map[string]registry.FieldValue{
		"disabled": registry.Scalar("1"),
	})
	r.SetLoadOrder([]string{"foo"})

	l.Run(context.Background())
	assert.False(t, l.Loaded("foo"))
	assert.Empty(t, fake.Env)
}

func TestManualLoadModePackageIsNeverInstalledOrApplied(t *testing.T) {
	root := t.TempDir()
	r, l, fake := setup(t, root)

	r.Declare("github.com/user/foo", map[string]registry.FieldValue{
		"load": registry.Scalar("manual"),
		"env":  registry.List("FOO=bar"),
	})
	r.SetLoadOrder([]string{"foo"})

	l.Run(context.Background())
	assert.False(t, l.Loaded("foo"))
	assert.Empty(t, fake.Env)
}

func TestHooksFireInOrderPerPackage(t *testing.T) {
	root := t.TempDir()
	r, l, _ := setup(t, root)

	var order []string
	for _, name := range []hook.Name{hook.PreInstall, hook.PostInstall, hook.PreLoad, hook.PostLoad} {
		name := name
		l.Hooks.On(name, func(e hook.Event) { order = append(order, string(e.Name)) })
	}

	r.Declare("github.com/user/foo", map[string]registry.FieldValue{})
	rec, _, _ := r.Lookup("foo")
	rec.Path = filepath.Join(root, "foo")
	r.SetLoadOrder([]string{"foo"})

	l.Run(context.Background())

	assert.Equal(t, []string{"pre-install", "post-install", "pre-load", "post-load"}, order)
}
