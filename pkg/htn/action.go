package htn

// Action is the outbound representation of a primitive task: what the
// execution layer consumes. The planner produces tasks; converting them
// with Task.ToAction yields these.
type Action struct {
	// Name is the action name, identical to the primitive task's name.
	Name string `json:"name"`
	// Parameters carries the task's resolved parameter bag.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Actions converts a plan of primitive tasks into executable actions.
// Returns an error as soon as a compound task is encountered.
func Actions(plan []*Task) ([]*Action, error) {
	actions := make([]*Action, 0, len(plan))
	for _, t := range plan {
		a, err := t.ToAction()
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}
