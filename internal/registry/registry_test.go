package registry

import (
	"testing"

	"github.com/lane-core/pack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareCanonicalizesShorthand(t *testing.T) {
	r := New()
	errs := r.Declare("user/a", nil)
	require.Empty(t, errs)

	rec, _, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "https://github.com/user/a.git", rec.Source)
}

func TestDeclareLastWriterWinsInFull(t *testing.T) {
	r := New()
	r.Declare("x", map[string]FieldValue{"branch": Scalar("dev")})
	r.Declare("x", map[string]FieldValue{"tag": Scalar("v1")})

	rec, _, ok := r.Lookup("x")
	require.True(t, ok)
	// second declaration replaces the first in full: branch must be gone.
	assert.Equal(t, "v1", rec.Ref.Value)
	assert.Equal(t, "tag", rec.Ref.Kind.String())
}

func TestDeclareAsOverridesName(t *testing.T) {
	r := New()
	r.Declare("user/repo", map[string]FieldValue{"as": Scalar("myname")})
	_, _, ok := r.Lookup("myname")
	assert.True(t, ok)
	_, _, oldOk := r.Lookup("repo")
	assert.False(t, oldOk)
}

func TestDeclareDisabledStoresOnlyNameAndFlag(t *testing.T) {
	r := New()
	r.Declare("user/a", map[string]FieldValue{"disabled": Scalar("true"), "branch": Scalar("dev")})
	rec, cfg, ok := r.Lookup("a")
	require.True(t, ok)
	assert.True(t, rec.Disabled)
	assert.True(t, rec.Ref.IsZero())
	assert.Empty(t, cfg.Env)
}

func TestDeclareUnknownFieldWarnsButDoesNotReject(t *testing.T) {
	r := New()
	errs := r.Declare("user/a", map[string]FieldValue{"bogus": Scalar("x")})
	require.Len(t, errs, 1)
	_, _, ok := r.Lookup("a")
	assert.True(t, ok, "declaration should still succeed despite unknown field")
}

func TestDeclareInvalidNameRejectsEntirely(t *testing.T) {
	r := New()
	errs := r.Declare("user/a", map[string]FieldValue{"as": Scalar("bad name")})
	require.NotEmpty(t, errs)
	_, _, ok := r.Lookup("bad name")
	assert.False(t, ok)
}

func TestDeclareScalarIntoArrayFieldBecomesSingleElementList(t *testing.T) {
	r := New()
	r.Declare("user/b", map[string]FieldValue{"depends": Scalar("foo")})
	_, cfg, ok := r.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, []string{"foo"}, cfg.Depends)
}

func TestDisableRemovesFromLoadOrderAndFiresCallback(t *testing.T) {
	r := New()
	r.Declare("user/a", nil)
	r.Declare("user/b", nil)
	r.SetLoadOrder([]string{"a", "b"})

	var disabled string
	r.OnDisable(func(name string) { disabled = name })

	r.Disable("a")
	assert.Equal(t, "a", disabled)
	assert.Equal(t, []string{"b"}, r.LoadOrder())

	rec, _, _ := r.Lookup("a")
	assert.True(t, rec.Disabled)
}

func TestEachUsesLoadOrderWhenPopulated(t *testing.T) {
	r := New()
	r.Declare("user/a", nil)
	r.Declare("user/b", nil)
	r.SetLoadOrder([]string{"b", "a"})

	var seen []string
	r.Each(func(rec *types.PackageRecord, _ *types.PackageConfig) {
		seen = append(seen, rec.Name)
	})
	assert.Equal(t, []string{"b", "a"}, seen)
}

func TestEachFallsBackToRegistryOrder(t *testing.T) {
	r := New()
	r.Declare("user/a", nil)
	r.Declare("user/b", nil)

	var seen []string
	r.Each(func(rec *types.PackageRecord, _ *types.PackageConfig) {
		seen = append(seen, rec.Name)
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestEachEnabledFilter(t *testing.T) {
	r := New()
	r.Declare("user/a", nil)
	r.Declare("user/b", map[string]FieldValue{"disabled": Scalar("true")})

	var seen []string
	r.Each(func(rec *types.PackageRecord, _ *types.PackageConfig) {
		seen = append(seen, rec.Name)
	}, Enabled)
	assert.Equal(t, []string{"a"}, seen)
}

func TestRemoveEvictsAllKeys(t *testing.T) {
	r := New()
	r.Declare("user/a", nil)
	r.SetLoadOrder([]string{"a"})
	r.Remove("a")

	_, _, ok := r.Lookup("a")
	assert.False(t, ok)
	assert.Empty(t, r.LoadOrder())
	assert.Empty(t, r.Names())
}
