// Package htn implements a hierarchical task network planner: compound
// tasks are recursively decomposed into ordered primitive actions using
// methods registered in a domain, gated by preconditions over a world
// state and ranked by priority.
package htn

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// WorldState is the fact base the planner reasons over: a set of named
// properties with arbitrarily typed values. A state is either mutable or
// frozen; mutating a frozen state fails with ErrImmutableState. Frozen
// states are safe for concurrent reads, which is what the planner wants
// during decomposition.
type WorldState struct {
	mu     sync.RWMutex
	props  map[string]any
	frozen bool
}

// NewState creates an empty mutable world state.
func NewState() *WorldState {
	return &WorldState{props: make(map[string]any)}
}

// StateBuilder accumulates properties for a WorldState.
type StateBuilder struct {
	props map[string]any
}

// BuildState creates a new StateBuilder.
func BuildState() *StateBuilder {
	return &StateBuilder{props: make(map[string]any)}
}

// Property sets a single property.
func (b *StateBuilder) Property(key string, value any) *StateBuilder {
	b.props[key] = value
	return b
}

// Properties merges a map of properties. A nil map is a no-op.
func (b *StateBuilder) Properties(props map[string]any) *StateBuilder {
	for k, v := range props {
		b.props[k] = v
	}
	return b
}

// Build returns a mutable world state with the accumulated properties.
func (b *StateBuilder) Build() *WorldState {
	s := NewState()
	for k, v := range b.props {
		s.props[k] = v
	}
	return s
}

// BuildFrozen returns a frozen world state with the accumulated properties.
func (b *StateBuilder) BuildFrozen() *WorldState {
	s := b.Build()
	s.frozen = true
	return s
}

// Set stores a property value. Fails with ErrImmutableState on a frozen state.
func (s *WorldState) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return fmt.Errorf("set %q: %w", key, ErrImmutableState)
	}
	s.props[key] = value
	return nil
}

// SetAll stores multiple properties at once. A nil map is a no-op.
// Fails with ErrImmutableState on a frozen state.
func (s *WorldState) SetAll(props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return fmt.Errorf("set all: %w", ErrImmutableState)
	}
	for k, v := range props {
		s.props[k] = v
	}
	return nil
}

// Remove deletes a property. Fails with ErrImmutableState on a frozen state.
func (s *WorldState) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return fmt.Errorf("remove %q: %w", key, ErrImmutableState)
	}
	delete(s.props, key)
	return nil
}

// Clear removes all properties. Fails with ErrImmutableState on a frozen state.
func (s *WorldState) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return fmt.Errorf("clear: %w", ErrImmutableState)
	}
	s.props = make(map[string]any)
	return nil
}

// Get returns a property value and whether the key exists.
func (s *WorldState) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.props[key]
	return v, ok
}

// GetOr returns a property value, or the default when the key is absent.
func (s *WorldState) GetOr(key string, def any) any {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// GetBool returns a boolean property. Booleans pass through; the strings
// "true" and "false" parse; anything else yields the default.
func (s *WorldState) GetBool(key string, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	return coerceBool(v, def)
}

// GetInt returns an integer property, truncating wider numeric values.
func (s *WorldState) GetInt(key string, def int) int {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	return int(coerceInt64(v, int64(def)))
}

// GetInt64 returns a 64-bit integer property, truncating floats.
func (s *WorldState) GetInt64(key string, def int64) int64 {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	return coerceInt64(v, def)
}

// GetFloat64 returns a floating point property, widening integer values.
func (s *WorldState) GetFloat64(key string, def float64) float64 {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	return coerceFloat64(v, def)
}

// GetString returns a string property, stringifying non-string values.
func (s *WorldState) GetString(key string, def string) string {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	return coerceString(v)
}

// Has reports whether a property exists.
func (s *WorldState) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// HasAll reports whether every given property exists.
func (s *WorldState) HasAll(keys ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range keys {
		if _, ok := s.props[key]; !ok {
			return false
		}
	}
	return true
}

// Keys returns the property names in sorted order. The slice is a copy.
func (s *WorldState) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.props))
	for k := range s.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of properties.
func (s *WorldState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.props)
}

// IsEmpty reports whether the state has no properties.
func (s *WorldState) IsEmpty() bool {
	return s.Len() == 0
}

// Frozen reports whether this state is an immutable snapshot.
func (s *WorldState) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Snapshot returns an independent frozen copy of the current facts.
// Later mutation of the source has no effect on the snapshot.
func (s *WorldState) Snapshot() *WorldState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &WorldState{props: copyProps(s.props), frozen: true}
}

// CopyMutable returns an independent mutable copy of the current facts,
// regardless of whether the source is frozen.
func (s *WorldState) CopyMutable() *WorldState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &WorldState{props: copyProps(s.props)}
}

// Equal reports whether two states hold the same facts. Mutability is
// ignored: a snapshot equals the mutable state it was taken from.
func (s *WorldState) Equal(other *WorldState) bool {
	if other == nil {
		return false
	}
	if s == other {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	return propsEqual(s.props, other.props)
}

// String renders the facts in key order, for logs and debugging.
func (s *WorldState) String() string {
	s.mu.RLock()
	frozen := s.frozen
	props := copyProps(s.props)
	s.mu.RUnlock()

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("WorldState{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", k, props[k])
	}
	if frozen {
		sb.WriteString("}(frozen)")
	} else {
		sb.WriteString("}")
	}
	return sb.String()
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func propsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}
