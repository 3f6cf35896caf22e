package htn

import (
	"fmt"
	"reflect"
	"strings"
)

// Precondition gates a method on the current world state. Implementations
// should be fast and side-effect free; the planner may evaluate them many
// times during a single decomposition.
type Precondition func(*WorldState) bool

// Method is a decomposition recipe: one way to expand a compound task
// into an ordered sequence of subtasks. Methods for the same task are
// ranked by priority; the precondition decides applicability.
type Method struct {
	name        string
	taskName    string
	pre         Precondition
	subtasks    []*Task
	priority    int
	description string
}

// MethodBuilder accumulates fields for a Method.
type MethodBuilder struct {
	name        string
	taskName    string
	pre         Precondition
	subtasks    []*Task
	priority    int
	description string
}

// NewMethod creates a builder for a method with the given method name,
// decomposing the given compound task name. The precondition defaults to
// always applicable; the priority defaults to 0.
func NewMethod(methodName, taskName string) *MethodBuilder {
	return &MethodBuilder{
		name:     methodName,
		taskName: taskName,
		pre:      func(*WorldState) bool { return true },
	}
}

// Subtask appends a subtask template. Nil subtasks are silently skipped.
func (b *MethodBuilder) Subtask(t *Task) *MethodBuilder {
	if t != nil {
		b.subtasks = append(b.subtasks, t)
	}
	return b
}

// Subtasks appends a list of subtask templates. A nil list is a no-op
// and nil entries are skipped.
func (b *MethodBuilder) Subtasks(tasks []*Task) *MethodBuilder {
	for _, t := range tasks {
		if t != nil {
			b.subtasks = append(b.subtasks, t)
		}
	}
	return b
}

// Precondition sets the applicability predicate. A nil predicate resets
// to always applicable.
func (b *MethodBuilder) Precondition(pre Precondition) *MethodBuilder {
	if pre == nil {
		pre = func(*WorldState) bool { return true }
	}
	b.pre = pre
	return b
}

// PreconditionEquals gates the method on a single property equaling the
// expected value. An absent property compares equal to a nil expectation.
func (b *MethodBuilder) PreconditionEquals(key string, want any) *MethodBuilder {
	b.pre = func(s *WorldState) bool {
		got, _ := s.Get(key)
		return reflect.DeepEqual(got, want)
	}
	return b
}

// Priority sets the ranking priority. Higher is tried first; negative
// values are legal.
func (b *MethodBuilder) Priority(p int) *MethodBuilder {
	b.priority = p
	return b
}

// Description sets an informational description.
func (b *MethodBuilder) Description(d string) *MethodBuilder {
	b.description = d
	return b
}

// Build validates the builder and returns the method. Fails with
// ErrValidation on an empty method name, empty task name, or zero
// subtasks.
func (b *MethodBuilder) Build() (*Method, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, fmt.Errorf("method name cannot be empty: %w", ErrValidation)
	}
	if strings.TrimSpace(b.taskName) == "" {
		return nil, fmt.Errorf("method %q: task name cannot be empty: %w", b.name, ErrValidation)
	}
	if len(b.subtasks) == 0 {
		return nil, fmt.Errorf("method %q must have at least one subtask: %w", b.name, ErrValidation)
	}
	subtasks := make([]*Task, len(b.subtasks))
	copy(subtasks, b.subtasks)
	return &Method{
		name:        b.name,
		taskName:    b.taskName,
		pre:         b.pre,
		subtasks:    subtasks,
		priority:    b.priority,
		description: b.description,
	}, nil
}

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// TaskName returns the compound task name this method decomposes.
func (m *Method) TaskName() string { return m.taskName }

// Priority returns the ranking priority.
func (m *Method) Priority() int { return m.priority }

// Description returns the informational description, if any.
func (m *Method) Description() string { return m.description }

// Subtasks returns a copy of the ordered subtask templates.
func (m *Method) Subtasks() []*Task {
	out := make([]*Task, len(m.subtasks))
	copy(out, m.subtasks)
	return out
}

// SubtaskCount returns the number of subtask templates.
func (m *Method) SubtaskCount() int { return len(m.subtasks) }

// CheckPreconditions evaluates the precondition against a state.
// A nil state is never applicable, and a panicking predicate degrades to
// not applicable rather than aborting the search.
func (m *Method) CheckPreconditions(state *WorldState) (ok bool) {
	if state == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return m.pre(state)
}

// Equal reports whether two methods have the same method name and task
// name. Priority and subtasks do not affect identity.
func (m *Method) Equal(other *Method) bool {
	if other == nil {
		return false
	}
	return m.name == other.name && m.taskName == other.taskName
}

// String renders the method with its priority and subtask count.
func (m *Method) String() string {
	return fmt.Sprintf("%s->%s(priority=%d, subtasks=%d)",
		m.name, m.taskName, m.priority, len(m.subtasks))
}
