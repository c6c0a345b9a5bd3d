// Package ingest implements the three config-ingestion layers spec.md §4.2
// defines: a script layer executing declarative builtins directly against
// the registry, a directory-per-package filesystem layer, and an
// aggregation layer that discovers and runs additional scripts under
// pkgs.d/.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/session"
)

// Script runs a pack configuration script against a registry, extending
// an mvdan.cc/sh/v3 interpreter with "pack" and "pack-disable" builtins —
// the same technique go-memsh's Shell uses to graft domain commands onto
// the interpreter via interp.ExecHandlers, substituted here for our own
// builtins instead of its REPL file-management commands.
type Script struct {
	Registry *registry.Registry
	Fs       afero.Fs
	env      *session.EnvironMap
}

// NewScript creates a Script bound to reg. fs is stored in the Script's Fs
// field (nil means the OS filesystem); Run does not hand it to the
// interpreter, so paths the script itself opens resolve on the OS
// filesystem.
func NewScript(reg *registry.Registry, fs afero.Fs) *Script {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Script{
		Registry: reg,
		Fs:       fs,
		env:      session.NewEnvironMap(nil),
	}
}

// Run parses and executes src, dispatching "pack"/"pack-disable" builtin
// calls into the registry. Declaration errors are logged and reflected in
// the script's exit status but do not abort the run — ingestion is
// supposed to continue past a single rejected declaration.
func (s *Script) Run(ctx context.Context, src, name string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	prog, err := parser.Parse(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("parse error in %s: %w", name, err)
	}

	runner, err := interp.New(
		interp.Env(s.env),
		interp.StdIO(nil, io.Discard, io.Discard),
		interp.ExecHandlers(s.execHandler),
	)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

func (s *Script) execHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}
		switch args[0] {
		case "pack":
			return s.cmdPack(args[1:])
		case "pack-disable":
			return s.cmdPackDisable(args[1:])
		}
		return next(ctx, args)
	}
}

func (s *Script) cmdPack(args []string) error {
	if len(args) == 0 {
		log.Error().Msg("pack: missing id argument")
		return interp.NewExitStatus(1)
	}
	id := args[0]
	fields := make(map[string]registry.FieldValue, len(args)-1)
	for _, raw := range args[1:] {
		key, val, ok := ParseFieldArg(raw)
		if !ok {
			log.Error().Str("arg", raw).Msg("pack: malformed field argument")
			return interp.NewExitStatus(1)
		}
		fields[key] = val
	}

	if errs := s.Registry.Declare(id, fields); len(errs) > 0 {
		for _, e := range errs {
			log.Error().Str("package", e.Name).Str("field", e.Field).Msg(e.Message)
		}
		return interp.NewExitStatus(1)
	}
	return nil
}

func (s *Script) cmdPackDisable(args []string) error {
	if len(args) == 0 {
		log.Error().Msg("pack-disable: missing name argument")
		return interp.NewExitStatus(1)
	}
	s.Registry.Disable(args[0])
	return nil
}
