package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lane-core/pack/internal/registry"
)

// Aggregate discovers and runs every script matching Suffix under a
// pkgs.d/ directory as an additional script layer, per spec.md §4.2's
// aggregation layer. File discovery uses doublestar glob matching.
type Aggregate struct {
	Registry *registry.Registry

	// Suffix is the shell-specific script extension to match, "sh" by
	// default (spec.md §9's configurable entry-suffix parameter applies
	// here too, not just to the loader's entry-point search).
	Suffix string
}

// NewAggregate creates an Aggregate with Suffix defaulted to "sh".
func NewAggregate(reg *registry.Registry) *Aggregate {
	return &Aggregate{Registry: reg, Suffix: "sh"}
}

// Load runs every "*.<suffix>" file directly under root, in lexicographic
// order, so aggregation is deterministic across runs. A missing root is
// not an error.
func (a *Aggregate) Load(ctx context.Context, root string) error {
	if _, err := os.Stat(root); err != nil {
		return nil
	}

	pattern := "*." + a.Suffix
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return fmt.Errorf("aggregation glob failed: %w", err)
	}
	sort.Strings(matches)

	script := NewScript(a.Registry, nil)
	for _, name := range matches {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := script.Run(ctx, string(data), path); err != nil {
			return fmt.Errorf("running %s: %w", path, err)
		}
	}
	return nil
}
