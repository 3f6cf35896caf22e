package htn

import (
	"errors"
	"testing"
)

func TestWorldState_SetAndGet(t *testing.T) {
	s := NewState()
	if err := s.Set("hasAxe", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("woodCount", 64); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, ok := s.Get("hasAxe")
	if !ok || v != true {
		t.Errorf("Get(hasAxe) = %v, %v, want true, true", v, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) reported existence for absent key")
	}
	if got := s.GetOr("missing", "fallback"); got != "fallback" {
		t.Errorf("GetOr(missing) = %v, want fallback", got)
	}
}

func TestWorldState_FrozenRejectsMutation(t *testing.T) {
	s := NewState()
	if err := s.Set("hasAxe", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	snap := s.Snapshot()

	tests := []struct {
		name string
		op   func() error
	}{
		{"Set", func() error { return snap.Set("hasAxe", false) }},
		{"SetAll", func() error { return snap.SetAll(map[string]any{"a": 1}) }},
		{"Remove", func() error { return snap.Remove("hasAxe") }},
		{"Clear", func() error { return snap.Clear() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			if !errors.Is(err, ErrImmutableState) {
				t.Errorf("%s on frozen state: error = %v, want ErrImmutableState", tt.name, err)
			}
		})
	}

	// The snapshot must be untouched after the rejected mutations.
	if !snap.GetBool("hasAxe", false) {
		t.Error("frozen state was modified by a rejected mutation")
	}
}

func TestWorldState_SnapshotIndependence(t *testing.T) {
	s := NewState()
	_ = s.Set("woodCount", 10)
	snap := s.Snapshot()

	// Mutating the source must not leak into the snapshot.
	_ = s.Set("woodCount", 99)
	_ = s.Set("extra", "yes")

	if got := snap.GetInt("woodCount", 0); got != 10 {
		t.Errorf("snapshot woodCount = %d, want 10", got)
	}
	if snap.Has("extra") {
		t.Error("snapshot gained a key set on the source after freezing")
	}
}

func TestWorldState_SnapshotIdempotent(t *testing.T) {
	s := NewState()
	_ = s.Set("biome", "forest")

	first := s.Snapshot()
	second := first.Snapshot()

	if !second.Frozen() {
		t.Error("snapshot of snapshot is not frozen")
	}
	if !first.Equal(second) {
		t.Error("snapshot of snapshot is not equal to the first snapshot")
	}
}

func TestWorldState_CopyMutable(t *testing.T) {
	tests := []struct {
		name   string
		source func() *WorldState
	}{
		{"from mutable", func() *WorldState {
			s := NewState()
			_ = s.Set("k", 1)
			return s
		}},
		{"from frozen", func() *WorldState {
			s := NewState()
			_ = s.Set("k", 1)
			return s.Snapshot()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.source()
			cp := src.CopyMutable()

			if cp.Frozen() {
				t.Error("CopyMutable() returned a frozen state")
			}
			if !cp.Equal(src) {
				t.Error("CopyMutable() facts differ from the source")
			}
			if err := cp.Set("k", 2); err != nil {
				t.Fatalf("Set() on copy error = %v", err)
			}
			if got := src.GetInt("k", 0); got != 1 {
				t.Errorf("mutating copy leaked into source: k = %d, want 1", got)
			}
		})
	}
}

func TestWorldState_EqualityIgnoresMutability(t *testing.T) {
	s := NewState()
	_ = s.Set("hasAxe", true)
	_ = s.Set("woodCount", 64)

	if !s.Equal(s.Snapshot()) {
		t.Error("mutable state and its snapshot should be equal")
	}

	other := NewState()
	_ = other.Set("hasAxe", true)
	if s.Equal(other) {
		t.Error("states with different fact sets should not be equal")
	}
	if s.Equal(nil) {
		t.Error("Equal(nil) should be false")
	}
}

func TestWorldState_GetBool(t *testing.T) {
	s := NewState()
	_ = s.Set("t", true)
	_ = s.Set("f", false)
	_ = s.Set("strTrue", "true")
	_ = s.Set("strFalse", "false")
	_ = s.Set("junk", "not-a-bool")
	_ = s.Set("num", 7)

	tests := []struct {
		name string
		key  string
		def  bool
		want bool
	}{
		{"bool true", "t", false, true},
		{"bool false", "f", true, false},
		{"string true", "strTrue", false, true},
		{"string false", "strFalse", true, false},
		{"unparsable string uses default", "junk", true, true},
		{"numeric uses default", "num", false, false},
		{"absent uses default", "missing", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.GetBool(tt.key, tt.def); got != tt.want {
				t.Errorf("GetBool(%q, %v) = %v, want %v", tt.key, tt.def, got, tt.want)
			}
		})
	}
}

func TestWorldState_NumericCoercion(t *testing.T) {
	s := NewState()
	_ = s.Set("i", 42)
	_ = s.Set("i64", int64(1 << 40))
	_ = s.Set("f", 3.9)
	_ = s.Set("str", "text")

	if got := s.GetInt("i", 0); got != 42 {
		t.Errorf("GetInt(i) = %d, want 42", got)
	}
	if got := s.GetInt("f", 0); got != 3 {
		t.Errorf("GetInt(f) = %d, want 3 (truncated)", got)
	}
	if got := s.GetInt64("i64", 0); got != 1<<40 {
		t.Errorf("GetInt64(i64) = %d, want %d", got, int64(1<<40))
	}
	if got := s.GetFloat64("i", 0); got != 42.0 {
		t.Errorf("GetFloat64(i) = %v, want 42.0", got)
	}
	if got := s.GetInt("str", -1); got != -1 {
		t.Errorf("GetInt(str) = %d, want default -1", got)
	}
	if got := s.GetString("i", ""); got != "42" {
		t.Errorf("GetString(i) = %q, want \"42\"", got)
	}
	if got := s.GetString("missing", "dflt"); got != "dflt" {
		t.Errorf("GetString(missing) = %q, want default", got)
	}
}

func TestWorldState_HasAll(t *testing.T) {
	s := NewState()
	_ = s.Set("a", 1)
	_ = s.Set("b", 2)

	tests := []struct {
		name string
		keys []string
		want bool
	}{
		{"all present", []string{"a", "b"}, true},
		{"one missing", []string{"a", "c"}, false},
		{"no keys", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.HasAll(tt.keys...); got != tt.want {
				t.Errorf("HasAll(%v) = %v, want %v", tt.keys, got, tt.want)
			}
		})
	}
}

func TestWorldState_Builder(t *testing.T) {
	s := BuildState().
		Property("hasAxe", true).
		Properties(map[string]any{"woodCount": 64, "biome": "forest"}).
		Properties(nil).
		Build()

	if s.Frozen() {
		t.Error("Build() should produce a mutable state")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}

	frozen := BuildState().Property("k", 1).BuildFrozen()
	if !frozen.Frozen() {
		t.Error("BuildFrozen() should produce a frozen state")
	}
}

func TestWorldState_RemoveAndClear(t *testing.T) {
	s := NewState()
	_ = s.Set("a", 1)
	_ = s.Set("b", 2)

	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.Has("a") {
		t.Error("removed key still present")
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if !s.IsEmpty() {
		t.Errorf("state not empty after Clear, len = %d", s.Len())
	}
}

func TestWorldState_Keys(t *testing.T) {
	s := NewState()
	_ = s.Set("beta", 1)
	_ = s.Set("alpha", 2)

	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "alpha" || keys[1] != "beta" {
		t.Errorf("Keys() = %v, want [alpha beta]", keys)
	}

	// The returned slice is a copy; mutating it must not affect the state.
	keys[0] = "gamma"
	if !s.Has("alpha") {
		t.Error("mutating the Keys() result affected the state")
	}
}
