package installer

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/lane-core/pack/internal/types"
)

// CloneClient is the subset of vcs.Client the clone task needs, kept
// narrow so tests can substitute a fake without importing internal/vcs.
type CloneClient interface {
	HasCheckout(dest string) bool
	CloneCommit(ctx context.Context, source, dest, commit string) error
	CloneRef(ctx context.Context, source, dest, ref string) error
	CloneDefault(ctx context.Context, source, dest string) error
}

// RefNotFoundDetector reports whether err indicates the requested ref does
// not exist on the remote, as opposed to a transient failure.
type RefNotFoundDetector func(err error) bool

// RemoveFunc deletes a partial clone at dest, guarded to only ever touch
// paths under the managed packages directory.
type RemoveFunc func(dest, managedRoot string) error

// CloneTask implements the clone-task contract of spec §4.5: given a
// package record, ensure a working tree exists at rec.Path matching its
// requested revision, trying commit, then tag/branch, then the remote
// default branch, with bounded retries for transient failures.
type CloneTask struct {
	Client        CloneClient
	IsRefNotFound RefNotFoundDetector
	Remove        RemoveFunc
	ManagedRoot   string
}

// Run performs the clone, or returns immediately if dest already has a
// checkout.
func (t *CloneTask) Run(ctx context.Context, rec *types.PackageRecord) error {
	if t.Client.HasCheckout(rec.Path) {
		return nil
	}

	switch rec.Ref.Kind {
	case types.RefCommit:
		return t.withRetry(ctx, func() error {
			return t.Client.CloneCommit(ctx, rec.Source, rec.Path, rec.Ref.Value)
		})
	case types.RefTag, types.RefBranch:
		err := t.withRetry(ctx, func() error {
			return t.Client.CloneRef(ctx, rec.Source, rec.Path, rec.Ref.Value)
		})
		if err == nil {
			return nil
		}
		if t.refNotFound(err) {
			if t.Remove != nil {
				_ = t.Remove(rec.Path, t.ManagedRoot)
			}
			return t.withRetry(ctx, func() error {
				return t.Client.CloneDefault(ctx, rec.Source, rec.Path)
			})
		}
		return &types.VCSError{Package: rec.Name, Message: err.Error()}
	default:
		return t.withRetry(ctx, func() error {
			return t.Client.CloneDefault(ctx, rec.Source, rec.Path)
		})
	}
}

func (t *CloneTask) refNotFound(err error) bool {
	if t.IsRefNotFound == nil {
		return false
	}
	return t.IsRefNotFound(err)
}

// withRetry retries a transient failure up to twice with exponential
// backoff, never retrying a ref-not-found error (the caller handles that
// fallthrough itself).
func (t *CloneTask) withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	attempt := 0
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)

	err := backoff.Retry(func() error {
		attempt++
		err := op()
		lastErr = err
		if err == nil {
			return nil
		}
		if t.refNotFound(err) || !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))

	if err != nil {
		return fmt.Errorf("clone failed after %d attempt(s): %w", attempt, lastErr)
	}
	return nil
}

// isTransient matches network-level failures (timeout, connection reset,
// DNS failure) that are worth retrying, as opposed to a permanent
// condition like a missing ref or auth failure.
func isTransient(err error) bool {
	var netErr net.Error
	if ok := asNetError(err, &netErr); ok && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection reset", "connection refused", "timed out",
		"temporary failure in name resolution", "could not resolve host",
		"network is unreachable", "i/o timeout",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func asNetError(err error, target *net.Error) bool {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			*target = ne
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
