package htn

import (
	"fmt"
	"sort"
	"sync"
)

// Domain is the registry of all methods, organized by the compound task
// name they decompose. Registration order is preserved within a task's
// method list, which is the tie-break among equal-priority methods.
//
// Reads are safe from concurrent planning calls; writes must be
// externally serialized against in-flight decompositions.
type Domain struct {
	mu sync.RWMutex
	// name labels the domain in logs and history records.
	name string
	// methods maps compound task name to its candidate methods in
	// registration order.
	methods map[string][]*Method
	// order preserves first-registration order of task names so that
	// TaskNames and String are deterministic.
	order []string
}

// NewDomain creates an empty domain with the given name.
func NewDomain(name string) *Domain {
	return &Domain{
		name:    name,
		methods: make(map[string][]*Method),
	}
}

// Name returns the domain name.
func (d *Domain) Name() string {
	return d.name
}

// AddMethod registers a method under its task name. A nil method is a
// silent no-op.
func (d *Domain) AddMethod(m *Method) {
	if m == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.methods[m.TaskName()]; !ok {
		d.order = append(d.order, m.TaskName())
	}
	d.methods[m.TaskName()] = append(d.methods[m.TaskName()], m)
}

// AddMethods registers a list of methods. A nil list and nil entries are
// silent no-ops.
func (d *Domain) AddMethods(methods []*Method) {
	for _, m := range methods {
		d.AddMethod(m)
	}
}

// MethodsForTask returns the registered methods for a task name in
// registration order. The slice is a copy; an unknown task name yields
// an empty slice, indistinguishable from a task with no methods.
func (d *Domain) MethodsForTask(taskName string) []*Method {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ms := d.methods[taskName]
	out := make([]*Method, len(ms))
	copy(out, ms)
	return out
}

// ApplicableMethods returns the methods for a task whose preconditions
// hold against the state, sorted by priority descending. Ties keep
// registration order (stable sort).
func (d *Domain) ApplicableMethods(taskName string, state *WorldState) []*Method {
	d.mu.RLock()
	ms := d.methods[taskName]
	candidates := make([]*Method, len(ms))
	copy(candidates, ms)
	d.mu.RUnlock()

	applicable := make([]*Method, 0, len(candidates))
	for _, m := range candidates {
		if m.CheckPreconditions(state) {
			applicable = append(applicable, m)
		}
	}
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority() > applicable[j].Priority()
	})
	return applicable
}

// BestMethod returns the highest-priority applicable method for a task,
// or nil when none is applicable or the task name is unknown.
func (d *Domain) BestMethod(taskName string, state *WorldState) *Method {
	applicable := d.ApplicableMethods(taskName, state)
	if len(applicable) == 0 {
		return nil
	}
	return applicable[0]
}

// HasMethodsFor reports whether at least one method is registered for a
// task name.
func (d *Domain) HasMethodsFor(taskName string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.methods[taskName]) > 0
}

// RemoveMethod removes every method with the given method name across
// all tasks. Returns true if anything was removed.
func (d *Domain) RemoveMethod(methodName string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	removed := false
	for taskName, ms := range d.methods {
		kept := ms[:0]
		for _, m := range ms {
			if m.Name() == methodName {
				removed = true
				continue
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			delete(d.methods, taskName)
			d.dropOrderLocked(taskName)
		} else {
			d.methods[taskName] = kept
		}
	}
	return removed
}

// RemoveMethodsForTask removes all methods for a task name and returns
// them in registration order. An unknown task yields an empty slice.
func (d *Domain) RemoveMethodsForTask(taskName string) []*Method {
	d.mu.Lock()
	defer d.mu.Unlock()
	removed := d.methods[taskName]
	if removed == nil {
		return []*Method{}
	}
	delete(d.methods, taskName)
	d.dropOrderLocked(taskName)
	return removed
}

// Clear empties the registry.
func (d *Domain) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.methods = make(map[string][]*Method)
	d.order = nil
}

// TaskCount returns the number of distinct task names with at least one
// method.
func (d *Domain) TaskCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.methods)
}

// MethodCount returns the total number of methods across all tasks.
func (d *Domain) MethodCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	total := 0
	for _, ms := range d.methods {
		total += len(ms)
	}
	return total
}

// TaskNames returns the task names with registered methods, in first
// registration order. The slice is a copy.
func (d *Domain) TaskNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// String renders the domain with its task and method counts.
func (d *Domain) String() string {
	return fmt.Sprintf("Domain{name=%q, tasks=%d, methods=%d}",
		d.name, d.TaskCount(), d.MethodCount())
}

// dropOrderLocked removes a task name from the registration order.
// Callers must hold the write lock.
func (d *Domain) dropOrderLocked(taskName string) {
	for i, n := range d.order {
		if n == taskName {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
}
