package env

import (
	"sync"
)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{NAME}} references with variable values. Access to the
// variable set is guarded so one resolver can be shared.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
	}
}

// NewResolverFor returns a resolver loaded with the enabled rows of e.
func NewResolverFor(e *Environment) *Resolver {
	r := NewResolver()
	if e != nil {
		r.SetVariables(e.Values())
	}
	return r
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// Resolve substitutes known references in input in a single pass. Unknown
// references stay in place and are reported through the warn func.
func (r *Resolver) Resolve(input string) string {
	r.mu.RLock()
	out := Substitute(input, r.variables)
	missing := Unresolved(input, r.variables)
	r.mu.RUnlock()

	for _, name := range missing {
		r.warn("unresolved variable: %s", name)
	}
	return out
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string)
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// HasUnresolvedVariables reports whether input references an unknown name.
func (r *Resolver) HasUnresolvedVariables(input string) bool {
	return len(r.GetUnresolvedVariables(input)) > 0
}

// GetUnresolvedVariables returns the unknown names referenced in input, in
// order, duplicates kept. It returns nil when every reference resolves.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Unresolved(input, r.variables)
}

func (r *Resolver) HasVariable(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.variables[name]
	return ok
}

func (r *Resolver) GetVariable(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	clone.warnFunc = r.warnFunc
	return clone
}
