// Package types holds the value types shared across the package manager:
// package records, their configuration fields, installed-state pins, and
// the typed errors the core reports.
package types

import "fmt"

// RefKind identifies which variant of a Ref is set.
type RefKind int

const (
	RefNone RefKind = iota
	RefBranch
	RefTag
	RefCommit
)

func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefTag:
		return "tag"
	case RefCommit:
		return "commit"
	default:
		return "none"
	}
}

// Ref is a closed sum of at most one of {branch, tag, commit}. The zero
// value is RefNone.
type Ref struct {
	Kind  RefKind
	Value string
}

func NoRef() Ref               { return Ref{Kind: RefNone} }
func BranchRef(name string) Ref { return Ref{Kind: RefBranch, Value: name} }
func TagRef(name string) Ref    { return Ref{Kind: RefTag, Value: name} }
func CommitRef(sha string) Ref  { return Ref{Kind: RefCommit, Value: sha} }

func (r Ref) IsZero() bool { return r.Kind == RefNone }

// LoadMode controls when a package's entry point is sourced.
type LoadMode int

const (
	// LoadAutoload defers sourcing to the function-autoload mechanism.
	LoadAutoload LoadMode = iota
	// LoadNow sources the entry point immediately during the loader's pass 2.
	LoadNow
	// LoadManual never sources the entry point or triggers install-on-load.
	LoadManual
)

func (m LoadMode) String() string {
	switch m {
	case LoadNow:
		return "now"
	case LoadManual:
		return "manual"
	default:
		return "autoload"
	}
}

// ParseLoadMode parses the "load" declaration field. Unrecognized values
// fall back to LoadAutoload.
func ParseLoadMode(s string) LoadMode {
	switch s {
	case "now":
		return LoadNow
	case "manual":
		return LoadManual
	default:
		return LoadAutoload
	}
}

// PackageRecord is the canonical, merged record for one declared package.
type PackageRecord struct {
	Name         string
	Source       string
	Path         string
	Ref          Ref
	Local        bool
	URLOverride  string
	LoadMode     LoadMode
	Build        string
	Disabled     bool
	EntryOverride string
}

// String renders a compact identity for logs and diagnostics.
func (p *PackageRecord) String() string {
	return fmt.Sprintf("%s(%s)", p.Name, p.Source)
}
