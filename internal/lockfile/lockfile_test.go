package lockfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lane-core/pack/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLockFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadParsesPipeDelimitedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lock")
	writeLockFile(t, path, "# comment\n\nzsh-autosuggestions|https://github.com/zsh-users/zsh-autosuggestions|"+
		"0000000000000000000000000000000000000001|1700000000\n")

	l := New(path)
	entries, err := l.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "zsh-autosuggestions", entries[0].Name)
	assert.Equal(t, int64(1700000000), entries[0].Timestamp)
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "lock"))
	entries, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lock")
	writeLockFile(t, path, "bad|line|onlythree\n")

	l := New(path)
	_, err := l.Load()
	assert.Error(t, err)
}

func TestFreezeWritesEnabledInstalledNonLocalPackages(t *testing.T) {
	dir := t.TempDir()
	packagesDir := filepath.Join(dir, "packages")
	pkgPath := filepath.Join(packagesDir, "foo")
	require.NoError(t, os.MkdirAll(pkgPath, 0755))

	r := registry.New()
	r.Declare("github.com/user/foo", map[string]registry.FieldValue{})
	rec, _, _ := r.Lookup("foo")
	rec.Path = pkgPath

	l := New(filepath.Join(dir, "lock"))
	revOf := func(_ context.Context, d string) (string, error) { return "deadbeef", nil }

	require.NoError(t, Freeze(context.Background(), l, r, revOf, 1700000000))

	entries, err := l.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "foo", entries[0].Name)
	assert.Equal(t, "deadbeef", entries[0].Commit)
}

func TestFreezeSkipsLocalPackages(t *testing.T) {
	dir := t.TempDir()
	localPath := filepath.Join(dir, "my-plugin")
	require.NoError(t, os.MkdirAll(localPath, 0755))

	r := registry.New()
	r.Declare(localPath, map[string]registry.FieldValue{})
	rec, _, _ := r.Lookup("my-plugin")
	rec.Path = localPath

	l := New(filepath.Join(dir, "lock"))
	revOf := func(_ context.Context, d string) (string, error) { return "deadbeef", nil }

	require.NoError(t, Freeze(context.Background(), l, r, revOf, 1700000000))

	entries, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRestoreClonesEveryEntryAtRecordedCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lock")
	writeLockFile(t, path, "foo|https://example.com/foo|deadbeef|1700000000\n")

	l := New(path)
	var cloned []string
	clone := func(_ context.Context, source, dest, commit string) error {
		cloned = append(cloned, source+"@"+commit+"->"+dest)
		return nil
	}

	require.NoError(t, Restore(context.Background(), l, filepath.Join(dir, "packages"), clone))
	require.Len(t, cloned, 1)
	assert.Contains(t, cloned[0], "deadbeef")
}

func TestDiffClassifiesEachStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lock")
	writeLockFile(t, path,
		"unchanged|src|aaa|1700000000\n"+
			"drifted|src|bbb|1700000000\n"+
			"missing|src|ccc|1700000000\n")

	l := New(path)
	onDisk := map[string]string{
		"unchanged": "aaa",
		"drifted":   "zzz",
		"untracked": "www",
	}

	diffs, err := Diff(context.Background(), l, onDisk)
	require.NoError(t, err)

	byName := make(map[string]DiffEntry, len(diffs))
	for _, d := range diffs {
		byName[d.Name] = d
	}
	assert.Equal(t, Unchanged, byName["unchanged"].Status)
	assert.Equal(t, Drifted, byName["drifted"].Status)
	assert.Equal(t, Missing, byName["missing"].Status)
	assert.Equal(t, Untracked, byName["untracked"].Status)
}
