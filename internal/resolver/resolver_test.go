package resolver

import (
	"testing"

	"github.com/lane-core/pack/internal/registry"
	"github.com/lane-core/pack/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSimpleOrder(t *testing.T) {
	r := registry.New()
	r.Declare("user/a", nil)
	r.Declare("user/b", map[string]registry.FieldValue{"depends": registry.List("a")})

	res, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Order)

	rec, _, _ := r.Lookup("a")
	assert.Equal(t, "https://github.com/user/a.git", rec.Source)
}

func TestResolveCycleDetected(t *testing.T) {
	r := registry.New()
	r.Declare("a", map[string]registry.FieldValue{"depends": registry.List("b")})
	r.Declare("b", map[string]registry.FieldValue{"depends": registry.List("a")})

	_, err := Resolve(r)
	require.Error(t, err)
	var resErr *types.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.ElementsMatch(t, []string{"a", "b"}, resErr.Cycle)
}

func TestResolveUnversionedConstraintWarns(t *testing.T) {
	r := registry.New()
	r.Declare("x", map[string]registry.FieldValue{"tag": registry.Scalar("v1")})
	r.Declare("y", map[string]registry.FieldValue{"depends": registry.List("x@v2")})

	res, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, res.Order)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "x", res.Warnings[0].Dependency)
	assert.Equal(t, "y", res.Warnings[0].Dependent)
}

func TestResolveMissingDependencyWarnsAndDropsEdge(t *testing.T) {
	r := registry.New()
	r.Declare("y", map[string]registry.FieldValue{"depends": registry.List("ghost")})

	res, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, res.Order)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "not declared", res.Warnings[0].Message)
}

func TestResolveIsIdempotentAndDeterministic(t *testing.T) {
	r := registry.New()
	r.Declare("c", map[string]registry.FieldValue{"depends": registry.List("a", "b")})
	r.Declare("a", nil)
	r.Declare("b", map[string]registry.FieldValue{"depends": registry.List("a")})

	res1, err := Resolve(r)
	require.NoError(t, err)
	res2, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, res1.Order, res2.Order)
	assert.Equal(t, []string{"a", "b", "c"}, res1.Order)
}

func TestResolveDisabledDependencyTreatedAsUndeclared(t *testing.T) {
	r := registry.New()
	r.Declare("x", map[string]registry.FieldValue{"disabled": registry.Scalar("true")})
	r.Declare("y", map[string]registry.FieldValue{"depends": registry.List("x")})

	res, err := Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, res.Order)
	require.Len(t, res.Warnings, 1)
}

func TestResolveSatisfiedSemverConstraintDoesNotWarn(t *testing.T) {
	r := registry.New()
	r.Declare("x", map[string]registry.FieldValue{"tag": registry.Scalar("v1.2.0")})
	r.Declare("y", map[string]registry.FieldValue{"depends": registry.List("x@^1.0.0")})

	res, err := Resolve(r)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
}
