package types

// PackageConfig carries the array/scalar configuration fields co-keyed
// with a PackageRecord by name.
type PackageConfig struct {
	Env     []string
	Paths   []string
	FPaths  []string
	Aliases []string
	Depends []string
	RC      string
}

// DependSpec is a parsed entry from PackageConfig.Depends: "name" or
// "name@constraint".
type DependSpec struct {
	Name       string
	Constraint string // empty when unconstrained
}

// InstalledState is the frozen, pinned revision of one remote package.
type InstalledState struct {
	Commit    string
	Source    string
	Timestamp int64
}
