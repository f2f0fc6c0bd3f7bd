package env

import (
	"fmt"
	"regexp"
	"sort"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EnvVar is one environment row. Only enabled rows take part in resolution.
type EnvVar struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// ValidKey reports whether key is usable as a variable name: letters, digits
// and underscores, not starting with a digit.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Environment is a snapshot of variables with unique keys, kept in insertion
// order.
type Environment struct {
	Name string
	vars []EnvVar
}

// NewEnvironment builds an environment from vars. A later duplicate key
// replaces the earlier row.
func NewEnvironment(name string, vars ...EnvVar) *Environment {
	e := &Environment{Name: name}
	for _, v := range vars {
		e.Set(v.Key, v.Value, v.Enabled)
	}
	return e
}

// Vars returns a copy of all rows.
func (e *Environment) Vars() []EnvVar {
	return append([]EnvVar(nil), e.vars...)
}

// Len returns the number of rows.
func (e *Environment) Len() int {
	return len(e.vars)
}

// Get returns the row for key.
func (e *Environment) Get(key string) (EnvVar, bool) {
	if i := e.index(key); i >= 0 {
		return e.vars[i], true
	}
	return EnvVar{}, false
}

// Set inserts or replaces the row for key.
func (e *Environment) Set(key, value string, enabled bool) {
	v := EnvVar{Key: key, Value: value, Enabled: enabled}
	if i := e.index(key); i >= 0 {
		e.vars[i] = v
		return
	}
	e.vars = append(e.vars, v)
}

// SetEnabled toggles a row. It reports whether the key exists.
func (e *Environment) SetEnabled(key string, enabled bool) bool {
	i := e.index(key)
	if i < 0 {
		return false
	}
	e.vars[i].Enabled = enabled
	return true
}

// Delete removes the row for key. It reports whether the key existed.
func (e *Environment) Delete(key string) bool {
	i := e.index(key)
	if i < 0 {
		return false
	}
	e.vars = append(e.vars[:i], e.vars[i+1:]...)
	return true
}

// Rename changes a key in place, keeping value and enabled state.
func (e *Environment) Rename(oldKey, newKey string) error {
	if !ValidKey(newKey) {
		return fmt.Errorf("invalid variable name %q", newKey)
	}
	i := e.index(oldKey)
	if i < 0 {
		return fmt.Errorf("variable %q not found", oldKey)
	}
	if oldKey != newKey && e.index(newKey) >= 0 {
		return fmt.Errorf("variable %q already exists", newKey)
	}
	e.vars[i].Key = newKey
	return nil
}

// Values returns key to value for enabled rows only.
func (e *Environment) Values() map[string]string {
	out := make(map[string]string, len(e.vars))
	for _, v := range e.vars {
		if v.Enabled {
			out[v.Key] = v.Value
		}
	}
	return out
}

// Keys returns the sorted keys of enabled rows.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for _, v := range e.vars {
		if v.Enabled {
			keys = append(keys, v.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (e *Environment) index(key string) int {
	for i, v := range e.vars {
		if v.Key == key {
			return i
		}
	}
	return -1
}
