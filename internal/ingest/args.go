package ingest

import (
	"strings"

	"github.com/lane-core/pack/internal/registry"
)

// ParseFieldArg parses one script-layer builtin argument of the shape
// "key=value" or "key=(v1 v2 ...)" into a registry.FieldValue, mirroring
// the declaration field syntax spec.md §4.3 defines for the registry
// itself.
func ParseFieldArg(arg string) (string, registry.FieldValue, bool) {
	key, rest, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", registry.FieldValue{}, false
	}
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		inner := strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")")
		fields := strings.Fields(inner)
		return key, registry.List(fields...), true
	}
	return key, registry.Scalar(rest), true
}
