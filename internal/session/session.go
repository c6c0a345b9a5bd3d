// Package session abstracts the host shell process whose environment,
// search paths, alias table, and function-autoload registry the loader
// and field appliers mutate. The real shell itself is out of scope (spec
// §1); this package only defines and implements the narrow interface the
// core needs against it.
package session

import "context"

// HostSession is the interface the loader and field appliers mutate.
// Tests substitute the in-memory Fake implementation.
type HostSession interface {
	// ExportEnv sets an environment variable for the session and any
	// process it subsequently spawns.
	ExportEnv(name, value string)
	// PrependSearchPath adds dir to the front of the executable search
	// path, skipping directories that don't exist.
	PrependSearchPath(dir string) (applied bool)
	// AddAlias defines name=value in the session's alias table.
	AddAlias(name, value string)
	// RegisterAutoload prepends dir to the function search path and
	// registers each name in entries for autoload.
	RegisterAutoload(dir string, entries []string)
	// SourceScript sources path into the current session.
	SourceScript(ctx context.Context, path string, env map[string]string) error
	// EvalSnippet evaluates an inline shell snippet in the current
	// session with the given extra environment bindings.
	EvalSnippet(ctx context.Context, snippet string, env map[string]string) error
}
