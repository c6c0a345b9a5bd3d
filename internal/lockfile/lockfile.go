// Package lockfile serializes and restores the set of installed package
// revisions as a pipe-delimited text file, atomically written via the
// teacher's write-temp-then-rename pattern and guarded against
// concurrent freeze/restore by a flock(2)-based FileLock.
package lockfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/storage"
	"github.com/lane-core/pack/internal/types"
)

// Entry is one recorded package revision.
type Entry struct {
	Name      string
	Source    string
	Commit    string
	Timestamp int64
}

// DiffStatus classifies one package's lockfile-vs-disk comparison.
type DiffStatus string

const (
	Unchanged DiffStatus = "unchanged"
	Drifted   DiffStatus = "drifted"
	Missing   DiffStatus = "missing"
	Untracked DiffStatus = "untracked"
)

// DiffEntry reports one package's comparison outcome.
type DiffEntry struct {
	Name   string
	Status DiffStatus
	Locked string // commit recorded in the lockfile, empty if untracked
	Actual string // commit on disk, empty if missing
}

// Lockfile manages the on-disk revision record at path.
type Lockfile struct {
	path string
	lock *storage.FileLock
}

// New creates a Lockfile at path.
func New(path string) *Lockfile {
	return &Lockfile{path: path, lock: storage.NewFileLock(path)}
}

// Load parses the lockfile, returning an empty slice if it does not
// exist yet.
func (l *Lockfile) Load() ([]Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

func parse(f *os.File) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("lockfile line %d: expected 4 pipe-delimited fields, got %d", lineNo, len(parts))
		}
		ts, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("lockfile line %d: invalid timestamp %q: %w", lineNo, parts[3], err)
		}
		entries = append(entries, Entry{Name: parts[0], Source: parts[1], Commit: parts[2], Timestamp: ts})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// write serializes entries and atomically replaces the lockfile.
func (l *Lockfile) write(entries []Entry) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s|%s|%s|%d\n", e.Name, e.Source, e.Commit, e.Timestamp)
	}

	tmpPath := l.path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(b.String()), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// RevFunc returns the full commit hash checked out at dir.
type RevFunc func(ctx context.Context, dir string) (string, error)

// Freeze records the current revision of every enabled, installed,
// non-local package in the registry. now stamps every entry.
func Freeze(ctx context.Context, l *Lockfile, r *registry.Registry, revOf RevFunc, now int64) error {
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("acquire lockfile lock: %w", err)
	}
	defer l.lock.Unlock()

	var entries []Entry
	var walkErr error
	r.Each(func(rec *types.PackageRecord, _ *types.PackageConfig) {
		if walkErr != nil || rec.Local {
			return
		}
		commit, err := revOf(ctx, rec.Path)
		if err != nil {
			walkErr = fmt.Errorf("package %s: %w", rec.Name, err)
			return
		}
		entries = append(entries, Entry{Name: rec.Name, Source: rec.Source, Commit: commit, Timestamp: now})
	}, registry.InstalledEnabled)
	if walkErr != nil {
		return walkErr
	}

	return l.write(entries)
}

// CloneFunc clones source at the given commit into dest.
type CloneFunc func(ctx context.Context, source, dest, commit string) error

// Restore re-clones every lockfile entry into its canonical managed path
// at the recorded commit. Local packages are untouched because they are
// never written to the lockfile.
func Restore(ctx context.Context, l *Lockfile, packagesDir string, clone CloneFunc) error {
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("acquire lockfile lock: %w", err)
	}
	defer l.lock.Unlock()

	entries, err := l.Load()
	if err != nil {
		return err
	}
	for _, e := range entries {
		dest := filepath.Join(packagesDir, e.Name)
		if err := clone(ctx, e.Source, dest, e.Commit); err != nil {
			return fmt.Errorf("restore %s: %w", e.Name, err)
		}
	}
	return nil
}

// Diff compares lockfile entries against the current on-disk revisions.
// Packages present on disk but absent from the lockfile are reported
// untracked; packages in the lockfile with no working tree are missing.
func Diff(ctx context.Context, l *Lockfile, onDisk map[string]string) ([]DiffEntry, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	var out []DiffEntry
	for _, e := range entries {
		seen[e.Name] = true
		actual, present := onDisk[e.Name]
		switch {
		case !present:
			out = append(out, DiffEntry{Name: e.Name, Status: Missing, Locked: e.Commit})
		case actual == e.Commit:
			out = append(out, DiffEntry{Name: e.Name, Status: Unchanged, Locked: e.Commit, Actual: actual})
		default:
			out = append(out, DiffEntry{Name: e.Name, Status: Drifted, Locked: e.Commit, Actual: actual})
		}
	}
	for name, actual := range onDisk {
		if !seen[name] {
			out = append(out, DiffEntry{Name: name, Status: Untracked, Actual: actual})
		}
	}
	return out, nil
}
