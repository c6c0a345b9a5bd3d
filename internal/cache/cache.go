// Package cache memoizes expensive VCS lookups — currently just
// default-branch resolution — under $DATA/pack/cache/vcs/<name>.json,
// grounded on internal/storage's atomic JSON file layer.
package cache

import (
	"context"
	"time"

	"github.com/lane-core/pack/internal/storage"
)

// entry is the on-disk record for one package's cached default branch.
type entry struct {
	Branch   string `json:"branch"`
	CachedAt int64  `json:"cached_at"`
}

// VCSCache stores default-branch lookups keyed by package name.
type VCSCache struct {
	store *storage.Storage
	ttl   time.Duration
}

// New creates a VCSCache rooted at dir, with entries older than ttl
// treated as a miss. A zero ttl disables expiry.
func New(dir string, ttl time.Duration) *VCSCache {
	return &VCSCache{store: storage.New(dir), ttl: ttl}
}

// DefaultBranch returns the cached default branch for name, if present
// and not expired.
func (c *VCSCache) DefaultBranch(ctx context.Context, name string) (string, bool) {
	var e entry
	if err := c.store.Get(ctx, []string{name}, &e); err != nil {
		return "", false
	}
	if c.ttl > 0 && time.Since(time.Unix(e.CachedAt, 0)) > c.ttl {
		return "", false
	}
	return e.Branch, true
}

// PutDefaultBranch records branch as name's default branch as of now.
func (c *VCSCache) PutDefaultBranch(ctx context.Context, name, branch string, now time.Time) error {
	return c.store.Put(ctx, []string{name}, entry{Branch: branch, CachedAt: now.Unix()})
}

// Invalidate removes name's cached entry, forcing the next lookup to hit
// the network.
func (c *VCSCache) Invalidate(ctx context.Context, name string) error {
	return c.store.Delete(ctx, []string{name})
}
