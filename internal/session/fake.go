package session

import (
	"context"
	"fmt"
)

// Fake is an in-memory HostSession recording every call, for loader and
// applier tests that must not touch a real process environment.
type Fake struct {
	Env         map[string]string
	Paths       []string
	SkippedPaths []string
	Aliases     map[string]string
	FPaths      []string
	Autoloaded  []string
	Sourced     []SourcedCall
	Evaluated   []EvaluatedCall

	// ExistingDirs restricts PrependSearchPath to directories present in
	// this set, mirroring the real session's "skip non-existent
	// directories" rule. If nil, every directory is treated as existing.
	ExistingDirs map[string]bool
	// Fail, if set, makes SourceScript/EvalSnippet return the mapped
	// error when the path or snippet equals a key.
	Fail map[string]error
}

type SourcedCall struct {
	Path string
	Env  map[string]string
}

type EvaluatedCall struct {
	Snippet string
	Env     map[string]string
}

func NewFake() *Fake {
	return &Fake{
		Env:     make(map[string]string),
		Aliases: make(map[string]string),
	}
}

func (f *Fake) ExportEnv(name, value string) {
	f.Env[name] = value
}

func (f *Fake) PrependSearchPath(dir string) bool {
	if f.ExistingDirs != nil && !f.ExistingDirs[dir] {
		f.SkippedPaths = append(f.SkippedPaths, dir)
		return false
	}
	f.Paths = append([]string{dir}, f.Paths...)
	return true
}

func (f *Fake) AddAlias(name, value string) {
	f.Aliases[name] = value
}

func (f *Fake) RegisterAutoload(dir string, entries []string) {
	f.FPaths = append([]string{dir}, f.FPaths...)
	f.Autoloaded = append(f.Autoloaded, entries...)
}

func (f *Fake) SourceScript(_ context.Context, path string, env map[string]string) error {
	f.Sourced = append(f.Sourced, SourcedCall{Path: path, Env: env})
	if err, ok := f.Fail[path]; ok {
		return err
	}
	return nil
}

func (f *Fake) EvalSnippet(_ context.Context, snippet string, env map[string]string) error {
	f.Evaluated = append(f.Evaluated, EvaluatedCall{Snippet: snippet, Env: env})
	if err, ok := f.Fail[snippet]; ok {
		return err
	}
	return nil
}

func (f *Fake) String() string {
	return fmt.Sprintf("Fake{env=%d paths=%v aliases=%d}", len(f.Env), f.Paths, len(f.Aliases))
}
