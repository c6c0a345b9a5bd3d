package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFieldArgScalar(t *testing.T) {
	key, val, ok := ParseFieldArg("tag=v1.0")
	assert.True(t, ok)
	assert.Equal(t, "tag", key)
	assert.False(t, val.Array)
}

func TestParseFieldArgArray(t *testing.T) {
	key, val, ok := ParseFieldArg("depends=(a b c)")
	assert.True(t, ok)
	assert.Equal(t, "depends", key)
	assert.True(t, val.Array)
	assert.Equal(t, []string{"a", "b", "c"}, val.List)
}

func TestParseFieldArgEmptyArray(t *testing.T) {
	_, val, ok := ParseFieldArg("path=()")
	assert.True(t, ok)
	assert.True(t, val.Array)
	assert.Empty(t, val.List)
}

func TestParseFieldArgMissingEquals(t *testing.T) {
	_, _, ok := ParseFieldArg("garbage")
	assert.False(t, ok)
}

func TestParseFieldArgEmptyKey(t *testing.T) {
	_, _, ok := ParseFieldArg("=value")
	assert.False(t, ok)
}
