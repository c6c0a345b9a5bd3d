package session

import (
	"strings"
	"sync"

	"mvdan.cc/sh/v3/expand"
)

// EnvironMap implements expand.Environ with a mutable map backend, so the
// same environment can be threaded through repeated interpreter runs
// across a loader pass while still being inspectable and settable
// directly by the field appliers.
type EnvironMap struct {
	mu   sync.RWMutex
	vars map[string]expand.Variable
}

// NewEnvironMap builds an EnvironMap from "NAME=VALUE" pairs, typically
// os.Environ().
func NewEnvironMap(pairs []string) *EnvironMap {
	e := &EnvironMap{vars: make(map[string]expand.Variable)}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if ok {
			e.vars[name] = expand.Variable{Exported: true, Kind: expand.String, Str: value}
		}
	}
	return e
}

func (e *EnvironMap) Get(name string) expand.Variable {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.vars[name]; ok {
		return v
	}
	return expand.Variable{}
}

func (e *EnvironMap) Each(fn func(name string, vr expand.Variable) bool) {
	e.mu.RLock()
	snapshot := make(map[string]expand.Variable, len(e.vars))
	for k, v := range e.vars {
		snapshot[k] = v
	}
	e.mu.RUnlock()
	for name, vr := range snapshot {
		if !fn(name, vr) {
			break
		}
	}
}

// Set assigns an exported string variable.
func (e *EnvironMap) Set(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = expand.Variable{Exported: true, Kind: expand.String, Str: value}
}

func (e *EnvironMap) String(name string) string {
	return e.Get(name).Str
}

// Pairs renders the environment as "NAME=VALUE" strings, for handing to a
// child process via exec.Cmd.Env.
func (e *EnvironMap) Pairs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.vars))
	for k, v := range e.vars {
		out = append(out, k+"="+v.Str)
	}
	return out
}
