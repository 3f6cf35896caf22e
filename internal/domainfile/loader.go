// Package domainfile loads HTN domains and world states from YAML data
// files. Domain content is configuration, not algorithm: a file declares
// methods (task, priority, subtasks) and data-driven preconditions, and
// the loader turns them into a ready-to-plan htn.Domain.
package domainfile

import (
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/tverens/craftplan/pkg/htn"
)

// Doc is the top-level structure of a domain file.
type Doc struct {
	// Name labels the domain.
	Name string `yaml:"name"`
	// Methods lists the decomposition recipes.
	Methods []MethodDoc `yaml:"methods"`
}

// MethodDoc describes one method.
type MethodDoc struct {
	// Method is the method name.
	Method string `yaml:"method"`
	// Task is the compound task name this method decomposes.
	Task string `yaml:"task"`
	// Priority ranks the method; higher is tried first.
	Priority int `yaml:"priority"`
	// Description is informational only.
	Description string `yaml:"description,omitempty"`
	// When lists properties that must equal the given values.
	When map[string]any `yaml:"when,omitempty"`
	// Requires lists properties that must merely exist.
	Requires []string `yaml:"requires,omitempty"`
	// RequiresTrue lists boolean properties that must be true.
	RequiresTrue []string `yaml:"requires_true,omitempty"`
	// Subtasks is the ordered decomposition sequence.
	Subtasks []SubtaskDoc `yaml:"subtasks"`
}

// SubtaskDoc describes one subtask template.
type SubtaskDoc struct {
	// Name is the subtask name.
	Name string `yaml:"name"`
	// Kind is "primitive" or "compound"; compound when omitted.
	Kind string `yaml:"kind,omitempty"`
	// Params is the subtask's own parameter bag.
	Params map[string]any `yaml:"params,omitempty"`
}

// StateDoc is the top-level structure of a world state file.
type StateDoc struct {
	// Facts maps property names to values.
	Facts map[string]any `yaml:"facts"`
}

// Load reads and parses a domain file.
func Load(path string) (*htn.Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domain file: %w", err)
	}
	domain, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return domain, nil
}

// Parse builds a domain from YAML bytes.
func Parse(data []byte) (*htn.Domain, error) {
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal domain yaml: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("domain file missing name")
	}

	domain := htn.NewDomain(doc.Name)
	for i, md := range doc.Methods {
		m, err := buildMethod(md)
		if err != nil {
			return nil, fmt.Errorf("method %d (%q): %w", i, md.Method, err)
		}
		domain.AddMethod(m)
	}
	return domain, nil
}

// LoadState reads and parses a world state file into a mutable state.
func LoadState(path string) (*htn.WorldState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return ParseState(data)
}

// ParseState builds a mutable world state from YAML bytes.
func ParseState(data []byte) (*htn.WorldState, error) {
	var doc StateDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal state yaml: %w", err)
	}
	return htn.BuildState().Properties(doc.Facts).Build(), nil
}

func buildMethod(md MethodDoc) (*htn.Method, error) {
	b := htn.NewMethod(md.Method, md.Task).
		Priority(md.Priority).
		Description(md.Description)

	if pre := buildPrecondition(md); pre != nil {
		b.Precondition(pre)
	}

	for i, sd := range md.Subtasks {
		task, err := buildSubtask(sd)
		if err != nil {
			return nil, fmt.Errorf("subtask %d (%q): %w", i, sd.Name, err)
		}
		b.Subtask(task)
	}
	return b.Build()
}

func buildSubtask(sd SubtaskDoc) (*htn.Task, error) {
	kind := htn.KindCompound
	switch sd.Kind {
	case "", string(htn.KindCompound):
		kind = htn.KindCompound
	case string(htn.KindPrimitive):
		kind = htn.KindPrimitive
	default:
		return nil, fmt.Errorf("unknown kind %q", sd.Kind)
	}
	return htn.NewTask(sd.Name).
		Kind(kind).
		Parameters(sd.Params).
		Build()
}

// buildPrecondition compiles the data-driven precondition clauses into a
// single predicate. All clauses must hold. Returns nil when the method
// declares no clauses, leaving the builder's always-true default.
func buildPrecondition(md MethodDoc) htn.Precondition {
	if len(md.When) == 0 && len(md.Requires) == 0 && len(md.RequiresTrue) == 0 {
		return nil
	}
	// Copy the clauses so later document reuse cannot alias them.
	when := make(map[string]any, len(md.When))
	for k, v := range md.When {
		when[k] = v
	}
	requires := append([]string(nil), md.Requires...)
	requiresTrue := append([]string(nil), md.RequiresTrue...)

	return func(s *htn.WorldState) bool {
		for k, want := range when {
			got, ok := s.Get(k)
			if !ok || !reflect.DeepEqual(got, want) {
				return false
			}
		}
		if !s.HasAll(requires...) {
			return false
		}
		for _, k := range requiresTrue {
			if !s.GetBool(k, false) {
				return false
			}
		}
		return true
	}
}
