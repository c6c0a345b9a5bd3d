package ingest

import (
	"context"
	"testing"

	"github.com/lane-core/pack/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDeclaresAPlainPackage(t *testing.T) {
	r := registry.New()
	s := NewScript(r, nil)

	err := s.Run(context.Background(), `pack user/a`, "config")
	require.NoError(t, err)

	rec, _, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "https://github.com/user/a.git", rec.Source)
}

func TestRunDeclaresWithArrayField(t *testing.T) {
	r := registry.New()
	s := NewScript(r, nil)

	err := s.Run(context.Background(), `pack user/b 'depends=(a)'`, "config")
	require.NoError(t, err)

	_, cfg, ok := r.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, cfg.Depends)
}

func TestRunPackDisableDisablesExistingPackage(t *testing.T) {
	r := registry.New()
	s := NewScript(r, nil)

	require.NoError(t, s.Run(context.Background(), "pack user/a", "config"))
	require.NoError(t, s.Run(context.Background(), "pack-disable a", "config"))

	rec, _, ok := r.Lookup("a")
	require.True(t, ok)
	assert.True(t, rec.Disabled)
}

func TestRunReportsNonZeroExitOnInvalidName(t *testing.T) {
	r := registry.New()
	s := NewScript(r, nil)

	err := s.Run(context.Background(), `pack user/a as='bad name'`, "config")
	require.Error(t, err)
}

func TestRunContinuesScriptAfterRejectedDeclaration(t *testing.T) {
	r := registry.New()
	s := NewScript(r, nil)

	script := `
pack user/a as='bad name' || true
pack user/b
`
	require.NoError(t, s.Run(context.Background(), script, "config"))

	_, _, ok := r.Lookup("b")
	assert.True(t, ok)
}
