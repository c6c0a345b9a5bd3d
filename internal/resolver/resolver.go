// Package resolver topologically sorts the enabled package dependency
// graph into a stable load order via Kahn's algorithm, detecting cycles
// and warning on unsatisfied or misversioned dependencies.
package resolver

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/types"
)

// Result is the output of Resolve: the stable load order plus any
// non-fatal dependency warnings gathered while building edges.
type Result struct {
	Order    []string
	Warnings []*types.DependencyWarning
}

// Resolve builds the dependency DAG over every enabled package in r and
// returns a total order in which every dependency precedes its dependents.
// Determinism: the zero-in-degree frontier is always processed in
// lexicographic order, making the result stable and idempotent for a
// fixed set of declarations.
func Resolve(r *registry.Registry) (Result, error) {
	type node struct {
		rec *types.PackageRecord
		cfg *types.PackageConfig
	}
	nodes := make(map[string]node)
	r.Each(func(rec *types.PackageRecord, cfg *types.PackageConfig) {
		nodes[rec.Name] = node{rec: rec, cfg: cfg}
	}, registry.Enabled)

	indegree := make(map[string]int, len(nodes))
	forward := make(map[string][]string) // dependency -> dependents
	for name := range nodes {
		indegree[name] = 0
	}

	var warnings []*types.DependencyWarning

	for name, n := range nodes {
		for _, d := range n.cfg.Depends {
			bare, want := splitDepend(d)
			dep, ok := nodes[bare]
			if !ok {
				warnings = append(warnings, &types.DependencyWarning{
					Dependent: name, Dependency: bare, Constraint: want,
					Message: "not declared",
				})
				continue
			}
			if want != "" {
				if w := checkConstraint(dep.rec, want); w != "" {
					warnings = append(warnings, &types.DependencyWarning{
						Dependent: name, Dependency: bare, Constraint: want,
						Message: w,
					})
				}
			}
			forward[bare] = append(forward[bare], name)
			indegree[name]++
		}
	}

	// Kahn's algorithm, frontier kept fully sorted rather than a plain FIFO
	// queue with a sorted initial seed: freed nodes are merged back in by
	// name instead of appended, so a node freed later can still pop before
	// one freed earlier if it sorts first. Both orders are deterministic
	// and topologically valid; this one additionally guarantees the whole
	// frontier is lexicographic at every step, not just its initial seed.
	var frontier []string
	for name, deg := range indegree {
		if deg == 0 {
			frontier = append(frontier, name)
		}
	}
	sort.Strings(frontier)

	var order []string
	for len(frontier) > 0 {
		n := frontier[0]
		frontier = frontier[1:]
		order = append(order, n)

		var freed []string
		for _, dependent := range forward[n] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		sort.Strings(freed)
		frontier = mergeSorted(frontier, freed)
	}

	if len(order) < len(nodes) {
		var cycle []string
		for name, deg := range indegree {
			if deg > 0 {
				cycle = append(cycle, name)
			}
		}
		sort.Strings(cycle)
		return Result{}, &types.ResolutionError{Cycle: cycle}
	}

	return Result{Order: order, Warnings: warnings}, nil
}

// mergeSorted merges two already-sorted slices, keeping the queue
// lexicographically ordered without a full re-sort each step.
func mergeSorted(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// splitDepend splits a "name" or "name@constraint" dependency specifier.
func splitDepend(spec string) (name, constraint string) {
	if idx := strings.Index(spec, "@"); idx != -1 {
		return spec[:idx], spec[idx+1:]
	}
	return spec, ""
}

// checkConstraint compares a declared tag against a wanted constraint.
// It never blocks resolution — it only returns a human-readable warning
// message, or "" when satisfied / not checkable. When both the tag and
// the constraint parse as semver, a real range check is used; otherwise
// the spec's original literal-inequality fallback applies.
func checkConstraint(dep *types.PackageRecord, want string) string {
	if dep.Ref.Kind != types.RefTag {
		return ""
	}
	tag := dep.Ref.Value

	if v, err := semver.NewVersion(tag); err == nil {
		if c, err := semver.NewConstraint(want); err == nil {
			if c.Check(v) {
				return ""
			}
			return "but " + dep.Name + " is declared with tag=" + tag
		}
	}

	if tag != want {
		return "but " + dep.Name + " is declared with tag=" + tag
	}
	return ""
}
