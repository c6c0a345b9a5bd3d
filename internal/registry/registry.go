// Package registry is the canonical in-memory store of package records and
// configuration fields. It owns PackageRecord and PackageConfig exclusively;
// the loader only reads from it.
package registry

import (
	"os"
	"sync"

	"github.com/lane-core/pack/internal/canon"
	"github.com/lane-core/pack/internal/types"
)

var scalarRecordFields = map[string]bool{
	"branch": true, "tag": true, "commit": true, "as": true, "local": true,
	"load": true, "build": true, "disabled": true, "source_file": true, "url": true,
	"rc": true,
}

var arrayConfigFields = map[string]bool{
	"env": true, "path": true, "fpath": true, "alias": true, "depends": true,
}

// Registry is the canonical store of package records and configuration.
// It is safe for concurrent use; the pipeline contract guarantees no
// mutating call runs concurrently with the loader reading it (see §5).
type Registry struct {
	mu        sync.Mutex
	records   map[string]*types.PackageRecord
	configs   map[string]*types.PackageConfig
	order     []string // registry (declaration) order
	loadOrder []string // populated by the resolver; empty until resolve runs

	onDisable func(name string)
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		records: make(map[string]*types.PackageRecord),
		configs: make(map[string]*types.PackageConfig),
	}
}

// OnDisable registers a callback fired synchronously whenever Disable
// removes a package from the load order (used to wire the "package-disabled"
// hook without the registry depending on the hook bus package).
func (r *Registry) OnDisable(fn func(name string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDisable = fn
}

// Declare canonicalizes id's URL/path and name, parses fields, and stores
// (or replaces) the package's record and config. Later declarations of the
// same name fully overwrite earlier ones (last-writer-wins on every
// field), per invariant 1. Unknown fields produce non-fatal warnings;
// an invalid derived name produces a fatal declaration error and the
// declaration is rejected entirely.
func (r *Registry) Declare(id string, fields map[string]FieldValue) []*types.DeclarationError {
	var errs []*types.DeclarationError

	res := canon.Resolve(id)
	name := res.Name
	if as, ok := fields["as"]; ok {
		name = as.first()
	}

	if err := canon.ValidateName(name); err != nil {
		return append(errs, &types.DeclarationError{Name: name, Message: err.Error(), Field: "as"})
	}

	if disabledField, ok := fields["disabled"]; ok && isTruthy(disabledField.first()) {
		r.mu.Lock()
		r.records[name] = &types.PackageRecord{Name: name, Disabled: true}
		r.configs[name] = &types.PackageConfig{}
		r.appendOrderLocked(name)
		r.mu.Unlock()
		return errs
	}

	rec := &types.PackageRecord{
		Name:   name,
		Source: res.Source,
		Local:  res.Local,
		Path:   res.Source,
	}
	cfg := &types.PackageConfig{}

	for key, val := range fields {
		switch key {
		case "as", "disabled":
			// consumed above
		case "branch":
			rec.Ref = types.BranchRef(val.first())
		case "tag":
			rec.Ref = types.TagRef(val.first())
		case "commit":
			rec.Ref = types.CommitRef(val.first())
		case "local":
			rec.Local = isTruthy(val.first())
		case "load":
			rec.LoadMode = types.ParseLoadMode(val.first())
		case "build":
			rec.Build = val.first()
		case "source_file":
			rec.EntryOverride = val.first()
			// Permitted even when it points outside the package path,
			// per the spec's open question — flagged, not rejected.
			if isOutsideHint(val.first()) {
				errs = append(errs, &types.DeclarationError{
					Name: name, Field: "source_file",
					Message: "points outside the package path",
				})
			}
		case "url":
			rec.URLOverride = val.first()
		case "rc":
			cfg.RC = val.first()
		case "env":
			cfg.Env = val.asList()
		case "path":
			cfg.Paths = val.asList()
		case "fpath":
			cfg.FPaths = val.asList()
		case "alias":
			cfg.Aliases = val.asList()
		case "depends":
			cfg.Depends = val.asList()
		default:
			errs = append(errs, &types.DeclarationError{
				Name: name, Field: key, Message: "unknown field",
			})
		}
	}

	r.mu.Lock()
	r.records[name] = rec
	r.configs[name] = cfg
	r.appendOrderLocked(name)
	r.mu.Unlock()

	return errs
}

func (r *Registry) appendOrderLocked(name string) {
	for _, n := range r.order {
		if n == name {
			return
		}
	}
	r.order = append(r.order, name)
}

// Disable marks a package disabled and removes it from the load order.
// Fires the registered OnDisable callback, if any.
func (r *Registry) Disable(name string) {
	r.mu.Lock()
	if rec, ok := r.records[name]; ok {
		rec.Disabled = true
	}
	filtered := r.loadOrder[:0:0]
	for _, n := range r.loadOrder {
		if n != name {
			filtered = append(filtered, n)
		}
	}
	r.loadOrder = filtered
	cb := r.onDisable
	r.mu.Unlock()

	if cb != nil {
		cb(name)
	}
}

// Lookup returns the record and config for name, or ok=false.
func (r *Registry) Lookup(name string) (*types.PackageRecord, *types.PackageConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[name]
	if !ok {
		return nil, nil, false
	}
	return rec, r.configs[name], true
}

// SetLoadOrder installs the resolver's output. Subsequent Each calls
// iterate in this order until the next SetLoadOrder or Disable call.
func (r *Registry) SetLoadOrder(order []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadOrder = append([]string(nil), order...)
}

// LoadOrder returns a copy of the current load order (empty if unresolved).
func (r *Registry) LoadOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.loadOrder...)
}

// Filter selects which records Each visits.
type Filter func(*types.PackageRecord) bool

// Enabled selects non-disabled records.
func Enabled(r *types.PackageRecord) bool { return !r.Disabled }

// RemoteEnabled selects non-disabled, non-local records.
func RemoteEnabled(r *types.PackageRecord) bool { return !r.Disabled && !r.Local }

// InstalledEnabled selects non-disabled records whose Path currently
// exists on disk.
func InstalledEnabled(r *types.PackageRecord) bool {
	if r.Disabled {
		return false
	}
	_, err := os.Stat(r.Path)
	return err == nil
}

// Each iterates packages in LoadOrder if populated, otherwise in
// registry (declaration) order, invoking fn for each record that passes
// every given filter.
func (r *Registry) Each(fn func(*types.PackageRecord, *types.PackageConfig), filters ...Filter) {
	r.mu.Lock()
	order := r.loadOrder
	if len(order) == 0 {
		order = r.order
	}
	order = append([]string(nil), order...)
	r.mu.Unlock()

	for _, name := range order {
		r.mu.Lock()
		rec, ok := r.records[name]
		cfg := r.configs[name]
		r.mu.Unlock()
		if !ok {
			continue
		}
		pass := true
		for _, f := range filters {
			if !f(rec) {
				pass = false
				break
			}
		}
		if pass {
			fn(rec, cfg)
		}
	}
}

// Names returns every declared package name in registry order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Remove evicts a package's record and config entirely (used by the
// remove command once its on-disk directory has been deleted).
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, name)
	delete(r.configs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	filtered := r.loadOrder[:0:0]
	for _, n := range r.loadOrder {
		if n != name {
			filtered = append(filtered, n)
		}
	}
	r.loadOrder = filtered
}

func isTruthy(s string) bool {
	switch s {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// isOutsideHint is a best-effort heuristic flagging an entry override that
// looks like it escapes the package directory (absolute, or a leading
// "../"). It never blocks the declaration — only warns, per spec.
func isOutsideHint(p string) bool {
	if p == "" {
		return false
	}
	if p[0] == '/' {
		return true
	}
	return len(p) >= 3 && p[:3] == "../"
}
