package apply

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lane-core/pack/internal/session"
	"github.com/lane-core/pack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvExportsEachPair(t *testing.T) {
	f := session.NewFake()
	cfg := &types.PackageConfig{Env: []string{"FOO=bar", "BAZ=qux"}}
	Env(f, cfg)
	assert.Equal(t, "bar", f.Env["FOO"])
	assert.Equal(t, "qux", f.Env["BAZ"])
}

func TestPathResolvesRelativeAgainstRecordPath(t *testing.T) {
	f := session.NewFake()
	f.ExistingDirs = map[string]bool{filepath.Join("/pkg/a", "bin"): true}
	rec := &types.PackageRecord{Path: "/pkg/a"}
	cfg := &types.PackageConfig{Paths: []string{"bin"}}
	Path(f, rec, cfg)
	require.Len(t, f.Paths, 1)
	assert.Equal(t, filepath.Join("/pkg/a", "bin"), f.Paths[0])
}

func TestPathSkipsNonexistentDirectories(t *testing.T) {
	f := session.NewFake()
	f.ExistingDirs = map[string]bool{} // nothing exists
	rec := &types.PackageRecord{Path: "/pkg/a"}
	cfg := &types.PackageConfig{Paths: []string{"bin"}}
	Path(f, rec, cfg)
	assert.Empty(t, f.Paths)
	assert.Len(t, f.SkippedPaths, 1)
}

func TestAliasDefinesEachPair(t *testing.T) {
	f := session.NewFake()
	cfg := &types.PackageConfig{Aliases: []string{"g=git", "ll=ls -la"}}
	Alias(f, cfg)
	assert.Equal(t, "git", f.Aliases["g"])
	assert.Equal(t, "ls -la", f.Aliases["ll"])
}

func TestFPathRegistersNonHiddenFilesStrippingSuffix(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.sh"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.sh"), []byte(""), 0644))

	f := session.NewFake()
	rec := &types.PackageRecord{Path: dir}
	cfg := &types.PackageConfig{FPaths: []string{"."}}
	FPath(f, rec, cfg, "sh")

	assert.Equal(t, []string{"foo"}, f.Autoloaded)
}

func TestRCBindsPkgDirAndName(t *testing.T) {
	f := session.NewFake()
	rec := &types.PackageRecord{Name: "foo", Path: "/pkg/foo"}
	cfg := &types.PackageConfig{RC: "echo hi"}
	err := RC(context.Background(), f, rec, cfg)
	require.NoError(t, err)
	require.Len(t, f.Evaluated, 1)
	assert.Equal(t, "/pkg/foo", f.Evaluated[0].Env["PKG_DIR"])
	assert.Equal(t, "foo", f.Evaluated[0].Env["PKG_NAME"])
}

func TestRCEmptySnippetNoOps(t *testing.T) {
	f := session.NewFake()
	rec := &types.PackageRecord{Name: "foo"}
	cfg := &types.PackageConfig{}
	err := RC(context.Background(), f, rec, cfg)
	require.NoError(t, err)
	assert.Empty(t, f.Evaluated)
}

func TestRCFailureIsNonFatalTypedError(t *testing.T) {
	f := session.NewFake()
	f.Fail = map[string]error{"boom": assertErr{}}
	rec := &types.PackageRecord{Name: "foo"}
	cfg := &types.PackageConfig{RC: "boom"}
	err := RC(context.Background(), f, rec, cfg)
	require.Error(t, err)
	var rcErr *types.RcFailure
	require.ErrorAs(t, err, &rcErr)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom failed" }
