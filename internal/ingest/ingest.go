package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/types"
)

// Ingester drives the three config layers against one registry, in the
// order spec.md §4.2 specifies: script, then filesystem, then aggregation
// — each layer's declarations overwrite the previous layer's for the same
// name, per the registry's last-writer-wins merge rule.
type Ingester struct {
	Registry *registry.Registry

	// ScriptPath is the single user script executed first ($CONFIG/<app>/config).
	ScriptPath string
	// FilesystemRoot is the directory-per-package layout root
	// ($CONFIG/<app>/packages).
	FilesystemRoot string
	// AggregationRoot is the pkgs.d/ directory glob root
	// ($CONFIG/<app>/pkgs.d).
	AggregationRoot string
	// Suffix is the aggregation layer's script extension, "sh" by default.
	Suffix string
}

// New creates an Ingester wired to reg with Suffix defaulted to "sh".
func New(reg *registry.Registry) *Ingester {
	return &Ingester{Registry: reg, Suffix: "sh"}
}

// Run executes all three layers in order, accumulating every
// DeclarationError encountered along the way. A missing script, missing
// filesystem root, or missing aggregation root are each treated as an
// unconfigured layer, not a failure.
func (ing *Ingester) Run(ctx context.Context) []*types.DeclarationError {
	var errs []*types.DeclarationError

	if ing.ScriptPath != "" {
		if data, err := os.ReadFile(ing.ScriptPath); err == nil {
			script := NewScript(ing.Registry, nil)
			if runErr := script.Run(ctx, string(data), ing.ScriptPath); runErr != nil {
				errs = append(errs, &types.DeclarationError{
					Message: fmt.Sprintf("script layer %s: %v", ing.ScriptPath, runErr),
				})
			}
		} else if !os.IsNotExist(err) {
			errs = append(errs, &types.DeclarationError{
				Message: fmt.Sprintf("reading script layer %s: %v", ing.ScriptPath, err),
			})
		}
	}

	if ing.FilesystemRoot != "" {
		fs := &Filesystem{Registry: ing.Registry}
		errs = append(errs, fs.Load(ing.FilesystemRoot)...)
	}

	if ing.AggregationRoot != "" {
		agg := &Aggregate{Registry: ing.Registry, Suffix: ing.Suffix}
		if err := agg.Load(ctx, ing.AggregationRoot); err != nil {
			errs = append(errs, &types.DeclarationError{
				Message: fmt.Sprintf("aggregation layer %s: %v", ing.AggregationRoot, err),
			})
		}
	}

	return errs
}
