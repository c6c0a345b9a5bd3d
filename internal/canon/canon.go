// Package canon expands shorthand package identifiers ("user/repo", "gl:…")
// into canonical git URLs or local filesystem paths, and derives a default
// package name from the identifier.
package canon

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Result is the outcome of canonicalizing one identifier.
type Result struct {
	Source string // canonical URL or absolute filesystem path
	Name   string // derived package name (before an "as=" override)
	Local  bool   // true when Source is a filesystem path
}

var schemeRe = regexp.MustCompile(`^(https?|git|ssh)://`)
var glob = regexp.MustCompile(`[*?\[]`)

var (
	memoMu sync.Mutex
	memo   = make(map[string]Result)
)

// Resolve canonicalizes a user-supplied identifier per the resolution
// table: scheme URLs and ssh shorthand pass through unchanged, "gl:"/"bb:"
// expand to GitLab/Bitbucket HTTPS URLs, absolute paths and "~" expand as
// local paths, a bare "user/repo" expands to GitHub, and anything else is
// passed through unchanged (treated as an opaque, non-local source).
//
// Results are memoized: canonicalization is pure and the same shorthand
// commonly appears across multiple ingestion layers.
func Resolve(id string) Result {
	memoMu.Lock()
	if r, ok := memo[id]; ok {
		memoMu.Unlock()
		return r
	}
	memoMu.Unlock()

	r := resolve(id)

	memoMu.Lock()
	memo[id] = r
	memoMu.Unlock()
	return r
}

func resolve(id string) Result {
	switch {
	case schemeRe.MatchString(id):
		return Result{Source: id, Name: deriveName(id)}
	case strings.HasPrefix(id, "gl:"):
		rest := strings.TrimPrefix(id, "gl:")
		src := "https://gitlab.com/" + rest + ".git"
		return Result{Source: src, Name: deriveName(rest)}
	case strings.HasPrefix(id, "bb:"):
		rest := strings.TrimPrefix(id, "bb:")
		src := "https://bitbucket.org/" + rest + ".git"
		return Result{Source: src, Name: deriveName(rest)}
	case strings.HasPrefix(id, "/"):
		return Result{Source: id, Name: deriveName(id), Local: true}
	case id == "~" || strings.HasPrefix(id, "~/"):
		expanded := expandHome(id)
		return Result{Source: expanded, Name: deriveName(id), Local: true}
	case strings.HasPrefix(id, "git@"):
		return Result{Source: id, Name: deriveName(id)}
	case strings.Contains(id, "/") && !schemeRe.MatchString(id):
		src := "https://github.com/" + id + ".git"
		return Result{Source: src, Name: deriveName(id)}
	default:
		return Result{Source: id, Name: deriveName(id)}
	}
}

func expandHome(p string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~/"))
}

var hostPrefixes = []string{"https://", "http://", "git://", "ssh://", "git@"}

// deriveName strips scheme, known host prefix, and ".git" suffix, then
// takes the final path segment.
func deriveName(id string) string {
	s := id
	for _, p := range hostPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimPrefix(s, p)
			break
		}
	}
	// git@host:user/repo -> user/repo
	if idx := strings.Index(s, ":"); idx != -1 && !strings.Contains(s[:idx], "/") {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(s, ".git")
	s = strings.TrimRight(s, "/")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}

// ValidateName rejects whitespace and glob metacharacters (* ? [) in a
// package name.
func ValidateName(name string) error {
	if strings.ContainsAny(name, " \t\n\r") {
		return &InvalidNameError{Name: name, Reason: "contains whitespace"}
	}
	if glob.MatchString(name) {
		return &InvalidNameError{Name: name, Reason: "contains glob metacharacters"}
	}
	if name == "" {
		return &InvalidNameError{Name: name, Reason: "empty"}
	}
	return nil
}

// InvalidNameError reports a package name that fails ValidateName.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return "invalid package name " + e.Name + ": " + e.Reason
}
