// Package vcs is a thin orchestrator above the git command-line tool: it
// never embeds a git implementation, it only shells out to "git" and
// interprets its output, per the spec's "black-box command-line tool"
// boundary.
package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Client runs git commands against working trees. The zero value is ready
// to use; Runner defaults to exec.CommandContext.
type Client struct {
	// Runner executes a git subcommand and returns combined stdout. It is
	// overridable in tests to avoid a real git binary and network access.
	Runner func(ctx context.Context, dir string, args ...string) (string, error)
}

// New returns a Client that shells out to the real git binary.
func New() *Client {
	return &Client{Runner: runGit}
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	runner := c.Runner
	if runner == nil {
		runner = runGit
	}
	out, err := runner(ctx, dir, args...)
	if err != nil {
		log.Debug().Str("dir", dir).Strs("args", args).Err(err).Msg("git command failed")
	}
	return strings.TrimSpace(out), err
}

// HasCheckout reports whether dest already contains a git working tree,
// per the "clone task returns success without contacting the network"
// short-circuit in the spec's installer contract.
func (c *Client) HasCheckout(dest string) bool {
	info, err := os.Stat(filepath.Join(dest, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

// CloneCommit performs a full clone followed by a checkout of the exact
// commit — the only strategy that can reach an arbitrary commit, since a
// shallow clone cannot guarantee the requested object is present.
func (c *Client) CloneCommit(ctx context.Context, source, dest, commit string) error {
	if _, err := c.run(ctx, "", "clone", source, dest); err != nil {
		return err
	}
	_, err := c.run(ctx, dest, "checkout", commit)
	return err
}

// CloneRef performs a single-branch shallow clone of the given ref (a tag
// or branch name).
func (c *Client) CloneRef(ctx context.Context, source, dest, ref string) error {
	_, err := c.run(ctx, "", "clone", "--depth", "1", "--branch", ref, "--single-branch", source, dest)
	return err
}

// CloneDefault performs a single-branch shallow clone of the remote's
// default branch.
func (c *Client) CloneDefault(ctx context.Context, source, dest string) error {
	_, err := c.run(ctx, "", "clone", "--depth", "1", "--single-branch", source, dest)
	return err
}

// Fetch updates an existing working tree's remote-tracking refs.
func (c *Client) Fetch(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "fetch", "--all", "--tags")
	return err
}

// Checkout switches an existing working tree to ref.
func (c *Client) Checkout(ctx context.Context, dir, ref string) error {
	_, err := c.run(ctx, dir, "checkout", ref)
	return err
}

// Pull fast-forwards the current branch from its upstream.
func (c *Client) Pull(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "pull", "--ff-only")
	return err
}

// RevParseHEAD returns the full 40-character commit hash at dir's HEAD —
// the "full revision at working tree" operation the lockfile's freeze
// step relies on.
func (c *Client) RevParseHEAD(ctx context.Context, dir string) (string, error) {
	return c.run(ctx, dir, "rev-parse", "HEAD")
}

// DefaultBranch resolves the remote's HEAD symref without cloning, via
// `git ls-remote --symref <url> HEAD`.
func (c *Client) DefaultBranch(ctx context.Context, source string) (string, error) {
	out, err := c.run(ctx, "", "ls-remote", "--symref", source, "HEAD")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		// "ref: refs/heads/main\tHEAD"
		if strings.HasPrefix(line, "ref:") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return strings.TrimPrefix(fields[1], "refs/heads/"), nil
			}
		}
	}
	return "", nil
}

// IsRefNotFoundErr reports whether an error from a ref-scoped clone looks
// like "ref not found on remote" rather than a transient network failure
// — this distinction matters because the installer's clone strategy
// (spec §4.5 step 2) falls through to the next strategy immediately on a
// missing ref, but retries transient failures.
func IsRefNotFoundErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "couldn't find remote ref") ||
		strings.Contains(msg, "remote branch") && strings.Contains(msg, "not found") ||
		strings.Contains(msg, "not a valid reference") ||
		strings.Contains(msg, "could not find remote ref")
}

// RemoveIfManaged deletes dest only if it is nested under managedRoot, the
// safety guard spec §4.5 requires before cleaning up a partial clone.
func RemoveIfManaged(dest, managedRoot string) error {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	absRoot, err := filepath.Abs(managedRoot)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absRoot, absDest)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil
	}
	return os.RemoveAll(absDest)
}
