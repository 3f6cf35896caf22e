package htn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes directly executable tasks from those that must be
// decomposed by a method before execution.
type Kind string

const (
	// KindPrimitive tasks map directly to executable actions.
	KindPrimitive Kind = "primitive"
	// KindCompound tasks are expanded into subtasks via domain methods.
	KindCompound Kind = "compound"
)

// Valid returns true if the kind is a known value.
func (k Kind) Valid() bool {
	switch k {
	case KindPrimitive, KindCompound:
		return true
	default:
		return false
	}
}

// Task is one step of work: either a primitive action or a compound goal.
// Tasks are immutable once built; Clone and WithParameters produce derived
// copies with fresh IDs.
type Task struct {
	name   string
	kind   Kind
	params map[string]any
	id     string
}

// TaskBuilder accumulates fields for a Task.
type TaskBuilder struct {
	name   string
	kind   Kind
	params map[string]any
	id     string
}

// NewTask creates a builder for a task with the given name.
// The kind defaults to compound.
func NewTask(name string) *TaskBuilder {
	return &TaskBuilder{
		name:   name,
		kind:   KindCompound,
		params: make(map[string]any),
	}
}

// Primitive creates a builder preset to a primitive task.
func Primitive(name string) *TaskBuilder {
	return NewTask(name).Kind(KindPrimitive)
}

// Compound creates a builder preset to a compound task.
func Compound(name string) *TaskBuilder {
	return NewTask(name).Kind(KindCompound)
}

// Kind sets the task kind.
func (b *TaskBuilder) Kind(k Kind) *TaskBuilder {
	b.kind = k
	return b
}

// Parameter adds a single parameter. Later calls override earlier ones
// on key collision.
func (b *TaskBuilder) Parameter(key string, value any) *TaskBuilder {
	b.params[key] = value
	return b
}

// Parameters merges a parameter map. A nil map is a no-op; entries
// override earlier parameters on key collision.
func (b *TaskBuilder) Parameters(params map[string]any) *TaskBuilder {
	for k, v := range params {
		b.params[k] = v
	}
	return b
}

// ID sets an explicit task ID, replacing the auto-generated one.
func (b *TaskBuilder) ID(id string) *TaskBuilder {
	b.id = id
	return b
}

// Build validates the builder and returns the task. Fails with
// ErrValidation when the name is empty or blank, or the kind is unknown.
func (b *TaskBuilder) Build() (*Task, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, fmt.Errorf("task name cannot be empty: %w", ErrValidation)
	}
	if !b.kind.Valid() {
		return nil, fmt.Errorf("task %q has unknown kind %q: %w", b.name, b.kind, ErrValidation)
	}
	id := b.id
	if id == "" {
		id = newTaskID()
	}
	return &Task{
		name:   b.name,
		kind:   b.kind,
		params: copyProps(b.params),
		id:     id,
	}, nil
}

func newTaskID() string {
	return "task_" + uuid.NewString()
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Kind returns the task kind.
func (t *Task) Kind() Kind { return t.kind }

// ID returns the unique instance ID. Identity is excluded from equality:
// structurally identical tasks compare equal regardless of ID.
func (t *Task) ID() string { return t.id }

// IsPrimitive reports whether this task is directly executable.
func (t *Task) IsPrimitive() bool { return t.kind == KindPrimitive }

// IsCompound reports whether this task requires decomposition.
func (t *Task) IsCompound() bool { return t.kind == KindCompound }

// Parameters returns a copy of the parameter map.
func (t *Task) Parameters() map[string]any {
	return copyProps(t.params)
}

// Parameter returns a parameter value and whether the key exists.
func (t *Task) Parameter(key string) (any, bool) {
	v, ok := t.params[key]
	return v, ok
}

// HasParameter reports whether a parameter exists.
func (t *Task) HasParameter(key string) bool {
	_, ok := t.params[key]
	return ok
}

// StringParameter returns a string parameter, stringifying non-string
// values; absent keys yield the default.
func (t *Task) StringParameter(key, def string) string {
	v, ok := t.params[key]
	if !ok {
		return def
	}
	return coerceString(v)
}

// IntParameter returns an integer parameter, truncating wider numeric
// values; absent or non-numeric values yield the default.
func (t *Task) IntParameter(key string, def int) int {
	v, ok := t.params[key]
	if !ok {
		return def
	}
	return int(coerceInt64(v, int64(def)))
}

// BoolParameter returns a boolean parameter; the strings "true"/"false"
// parse, everything else yields the default.
func (t *Task) BoolParameter(key string, def bool) bool {
	v, ok := t.params[key]
	if !ok {
		return def
	}
	return coerceBool(v, def)
}

// Equal reports whether two tasks have the same name, kind, and
// parameters. IDs are deliberately ignored.
func (t *Task) Equal(other *Task) bool {
	if other == nil {
		return false
	}
	return t.name == other.name &&
		t.kind == other.kind &&
		propsEqual(t.params, other.params)
}

// Clone returns a copy of this task with a fresh ID.
func (t *Task) Clone() *Task {
	return &Task{
		name:   t.name,
		kind:   t.kind,
		params: copyProps(t.params),
		id:     newTaskID(),
	}
}

// WithParameters returns a copy with extra parameters merged in. Extra
// entries win on key collision; a fresh ID is minted. The receiver is
// never modified. A nil map still produces a new instance.
func (t *Task) WithParameters(extra map[string]any) *Task {
	merged := copyProps(t.params)
	for k, v := range extra {
		merged[k] = v
	}
	return &Task{
		name:   t.name,
		kind:   t.kind,
		params: merged,
		id:     newTaskID(),
	}
}

// ToAction converts a primitive task into its executable action form.
// Fails with ErrNotExecutable for compound tasks.
func (t *Task) ToAction() (*Action, error) {
	if !t.IsPrimitive() {
		return nil, fmt.Errorf("compound task %q: %w", t.name, ErrNotExecutable)
	}
	return &Action{
		Name:       t.name,
		Parameters: copyProps(t.params),
	}, nil
}

// String renders the task with its parameters in key order.
func (t *Task) String() string {
	keys := make([]string, 0, len(t.params))
	for k := range t.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%s)", t.name, t.kind)
	if len(keys) > 0 {
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%v", k, t.params[k])
		}
		sb.WriteString("}")
	}
	return sb.String()
}
