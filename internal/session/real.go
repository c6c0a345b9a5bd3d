package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// RealSession is the production HostSession: a persistent shell
// interpreter (mvdan.cc/sh) whose environment, alias table, and search
// paths accumulate across a loader pass, grounded on the teacher's
// go-memsh embedded-shell design (EnvironMap + afero.Fs + interp.Runner).
type RealSession struct {
	mu sync.Mutex

	fs  afero.Fs
	env *EnvironMap

	origPath  string
	origFPath string
	pathDirs  []string
	fpathDirs []string
	aliases   map[string]string

	// AutoloadDirective formats one autoload registration, with %s the
	// function name. Defaults to the zsh form; callers targeting another
	// shell family override it, per the spec's "configurable parameter,
	// not a hard-coded literal" note on shell-specific behavior.
	AutoloadDirective string
}

// NewRealSession creates a session seeded from the current process
// environment. fs is used to resolve and read scripts; pass nil to use
// the OS filesystem.
func NewRealSession(fs afero.Fs) *RealSession {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	env := NewEnvironMap(os.Environ())
	return &RealSession{
		fs:                fs,
		env:               env,
		origPath:          env.String("PATH"),
		origFPath:         env.String("FPATH"),
		aliases:           make(map[string]string),
		AutoloadDirective: "autoload -Uz %s",
	}
}

func (s *RealSession) ExportEnv(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Set(name, value)
}

func (s *RealSession) PrependSearchPath(dir string) bool {
	if _, err := s.fs.Stat(dir); err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pathDirs = append([]string{dir}, s.pathDirs...)
	s.env.Set("PATH", joinPath(s.pathDirs, s.origPath))
	return true
}

func (s *RealSession) AddAlias(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[name] = value
}

// Aliases returns a snapshot of the session's alias table, including the
// autoload directives recorded by RegisterAutoload.
func (s *RealSession) Aliases() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.aliases))
	for k, v := range s.aliases {
		out[k] = v
	}
	return out
}

func (s *RealSession) RegisterAutoload(dir string, entries []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fpathDirs = append([]string{dir}, s.fpathDirs...)
	s.env.Set("FPATH", joinPath(s.fpathDirs, s.origFPath))
	for _, name := range entries {
		s.aliases["__autoload__:"+name] = fmt.Sprintf(s.AutoloadDirective, name)
	}
}

func joinPath(dirs []string, orig string) string {
	parts := append([]string(nil), dirs...)
	if orig != "" {
		parts = append(parts, orig)
	}
	return strings.Join(parts, string(os.PathListSeparator))
}

func (s *RealSession) SourceScript(ctx context.Context, path string, extra map[string]string) error {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return err
	}
	return s.eval(ctx, string(data), filepath.Base(path), extra)
}

func (s *RealSession) EvalSnippet(ctx context.Context, snippet string, extra map[string]string) error {
	return s.eval(ctx, snippet, "", extra)
}

func (s *RealSession) eval(ctx context.Context, src, name string, extra map[string]string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	prog, err := parser.Parse(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	s.mu.Lock()
	runEnv := &overlayEnviron{base: s.env, extra: extra}
	s.mu.Unlock()

	runner, err := interp.New(
		interp.Env(runEnv),
		interp.StdIO(nil, os.Stdout, os.Stderr),
	)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

// overlayEnviron layers per-call bindings (PKG_DIR, PKG_NAME) on top of
// the session's persistent environment without mutating it.
type overlayEnviron struct {
	base  expand.Environ
	extra map[string]string
}

func (o *overlayEnviron) Get(name string) expand.Variable {
	if v, ok := o.extra[name]; ok {
		return expand.Variable{Exported: true, Kind: expand.String, Str: v}
	}
	return o.base.Get(name)
}

func (o *overlayEnviron) Each(fn func(name string, vr expand.Variable) bool) {
	seen := make(map[string]bool, len(o.extra))
	for name, v := range o.extra {
		seen[name] = true
		if !fn(name, expand.Variable{Exported: true, Kind: expand.String, Str: v}) {
			return
		}
	}
	o.base.Each(func(name string, vr expand.Variable) bool {
		if seen[name] {
			return true
		}
		return fn(name, vr)
	})
}
