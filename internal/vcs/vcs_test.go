package vcs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRunner(calls *[][]string, resp map[string]string, errs map[string]error) func(context.Context, string, ...string) (string, error) {
	return func(_ context.Context, dir string, args ...string) (string, error) {
		*calls = append(*calls, append([]string{dir}, args...))
		key := args[0]
		return resp[key], errs[key]
	}
}

func TestCloneCommitRunsCloneThenCheckout(t *testing.T) {
	var calls [][]string
	c := &Client{Runner: fakeRunner(&calls, nil, nil)}

	err := c.CloneCommit(context.Background(), "src", "dest", "deadbeef")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "clone", calls[0][1])
	assert.Equal(t, "checkout", calls[1][1])
}

func TestCloneCommitStopsOnCloneFailure(t *testing.T) {
	var calls [][]string
	c := &Client{Runner: fakeRunner(&calls, nil, map[string]error{"clone": errors.New("network down")})}

	err := c.CloneCommit(context.Background(), "src", "dest", "deadbeef")
	require.Error(t, err)
	assert.Len(t, calls, 1, "checkout must not run after a failed clone")
}

func TestDefaultBranchParsesSymref(t *testing.T) {
	c := &Client{Runner: func(_ context.Context, _ string, args ...string) (string, error) {
		return "ref: refs/heads/main\tHEAD\nabc123\tHEAD\n", nil
	}}
	branch, err := c.DefaultBranch(context.Background(), "src")
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestRevParseHEADTrimsOutput(t *testing.T) {
	c := &Client{Runner: func(_ context.Context, _ string, args ...string) (string, error) {
		return "  deadbeefdeadbeefdeadbeefdeadbeefdeadbeef\n", nil
	}}
	sha, err := c.RevParseHEAD(context.Background(), "dir")
	require.NoError(t, err)
	assert.Equal(t, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", sha)
}

func TestIsRefNotFoundErr(t *testing.T) {
	assert.True(t, IsRefNotFoundErr(errors.New("fatal: couldn't find remote ref v9")))
	assert.False(t, IsRefNotFoundErr(errors.New("fatal: unable to access: connection timed out")))
	assert.False(t, IsRefNotFoundErr(nil))
}

func TestRemoveIfManagedRefusesOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	err := RemoveIfManaged("/etc/passwd", dir)
	require.NoError(t, err) // no-op, not an error, but must not touch /etc/passwd
}
