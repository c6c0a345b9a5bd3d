package types

import "fmt"

// DeclarationError reports an invalid name, unknown field, or malformed
// array syntax encountered while parsing a declaration. The declaration is
// rejected but ingestion continues.
type DeclarationError struct {
	Name    string
	Field   string
	Message string
}

func (e *DeclarationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("declaration %q: field %q: %s", e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("declaration %q: %s", e.Name, e.Message)
}

// ResolutionError reports a dependency cycle. It is fatal to the
// resolve operation and names every node still on the cycle.
type ResolutionError struct {
	Cycle []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("dependency cycle detected among: %v", e.Cycle)
}

// DependencyWarning reports an unsatisfied or misversioned dependency.
// Non-fatal: the dependent still appears in the load order.
type DependencyWarning struct {
	Dependent string
	Dependency string
	Constraint string
	Message   string
}

func (w *DependencyWarning) Error() string {
	return fmt.Sprintf("%s depends on %s: %s", w.Dependent, w.Dependency, w.Message)
}

// VCSError reports a clone/fetch/checkout failure for one package. Fatal to
// that package only; accumulated across a batch.
type VCSError struct {
	Package string
	Message string
}

func (e *VCSError) Error() string {
	return fmt.Sprintf("%s: %s", e.Package, e.Message)
}

// EntryMissing reports that a load=now package had no entry point file.
// Warning only; the package is still considered loaded.
type EntryMissing struct {
	Package string
	Tried   []string
}

func (e *EntryMissing) Error() string {
	return fmt.Sprintf("%s: no entry point found (tried %v)", e.Package, e.Tried)
}

// RcFailure reports a non-zero exit from a package's rc snippet. Warning
// only.
type RcFailure struct {
	Package string
	Message string
}

func (e *RcFailure) Error() string {
	return fmt.Sprintf("%s: rc snippet failed: %s", e.Package, e.Message)
}

// BuildFailure reports a non-zero exit from a package's build snippet,
// run once after a successful install or update. Warning only, the same
// as RcFailure: the package is still considered installed.
type BuildFailure struct {
	Package string
	Message string
}

func (e *BuildFailure) Error() string {
	return fmt.Sprintf("%s: build snippet failed: %s", e.Package, e.Message)
}

// Summary accumulates errors across independent units of a batch operation
// (declarations, clones, loads) so the core can surface them once at the
// end, per the batch propagation policy.
type Summary struct {
	Declarations  []*DeclarationError
	Warnings      []*DependencyWarning
	VCSErrors     []*VCSError
	EntryMissing  []*EntryMissing
	RCFailures    []*RcFailure
	BuildFailures []*BuildFailure
	Resolution    *ResolutionError
}

// Failed reports whether the summary should cause a non-zero exit: any
// VCS error, or a resolution cycle. Declaration errors, dependency
// warnings, missing entries and rc failures are warning-only per spec.
func (s *Summary) Failed() bool {
	return s.Resolution != nil || len(s.VCSErrors) > 0
}

// ExitCode maps the summary to the CLI exit-code contract: 0 success,
// 1 user/logic error (declaration invalid, cycle, unknown package),
// 2 I/O or VCS failure in at least one package.
func (s *Summary) ExitCode() int {
	switch {
	case s.Resolution != nil || len(s.Declarations) > 0:
		return 1
	case len(s.VCSErrors) > 0:
		return 2
	default:
		return 0
	}
}
