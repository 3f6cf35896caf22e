package htn

import (
	"fmt"
	"testing"
)

func mustBuildTask(t *testing.T, b *TaskBuilder) *Task {
	t.Helper()
	task, err := b.Build()
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func mustBuildMethod(t *testing.T, b *MethodBuilder) *Method {
	t.Helper()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("build method: %v", err)
	}
	return m
}

func TestPlanner_DecomposePrimitive(t *testing.T) {
	p := NewPlanner(NewDomain("empty"))
	task := mustBuildTask(t, Primitive("mine").Parameter("blockType", "stone"))

	plan := p.Decompose(task, NewState())
	if len(plan) != 1 {
		t.Fatalf("plan length = %d, want 1", len(plan))
	}
	if plan[0].Name() != "mine" {
		t.Errorf("plan[0] = %s, want mine", plan[0].Name())
	}
	if got := plan[0].StringParameter("blockType", ""); got != "stone" {
		t.Errorf("plan[0].blockType = %q, want stone", got)
	}
}

func TestPlanner_DecomposeOrderedPrimitives(t *testing.T) {
	d := NewDomain("test")
	d.AddMethod(mustBuildMethod(t, NewMethod("gather", "gather_wood").
		Subtask(mustBuildTask(t, Primitive("pathfind"))).
		Subtask(mustBuildTask(t, Primitive("mine"))).
		Subtask(mustBuildTask(t, Primitive("deposit")))))
	p := NewPlanner(d)

	plan := p.Decompose(mustBuildTask(t, Compound("gather_wood")), NewState())
	if len(plan) != 3 {
		t.Fatalf("plan length = %d, want 3", len(plan))
	}
	for i, want := range []string{"pathfind", "mine", "deposit"} {
		if plan[i].Name() != want {
			t.Errorf("plan[%d] = %s, want %s", i, plan[i].Name(), want)
		}
	}
}

func TestPlanner_DecomposeNested(t *testing.T) {
	d := NewDomain("test")
	d.AddMethod(mustBuildMethod(t, NewMethod("outer", "make_tools").
		Subtask(mustBuildTask(t, Compound("get_materials"))).
		Subtask(mustBuildTask(t, Primitive("craft")))))
	d.AddMethod(mustBuildMethod(t, NewMethod("inner", "get_materials").
		Subtask(mustBuildTask(t, Primitive("pathfind"))).
		Subtask(mustBuildTask(t, Primitive("mine")))))
	p := NewPlanner(d)

	plan := p.Decompose(mustBuildTask(t, Compound("make_tools")), NewState())
	if len(plan) != 3 {
		t.Fatalf("plan length = %d, want 3", len(plan))
	}
	for i, want := range []string{"pathfind", "mine", "craft"} {
		if plan[i].Name() != want {
			t.Errorf("plan[%d] = %s, want %s", i, plan[i].Name(), want)
		}
	}
}

func TestPlanner_NilInputs(t *testing.T) {
	p := NewPlanner(CreateDefault())
	task := mustBuildTask(t, Compound("gather_wood"))

	tests := []struct {
		name  string
		task  *Task
		state *WorldState
	}{
		{"nil task", nil, NewState()},
		{"nil state", task, nil},
		{"both nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Decompose(tt.task, tt.state); got != nil {
				t.Errorf("Decompose() = %v, want nil", got)
			}
		})
	}
}

func TestPlanner_UnknownTaskFails(t *testing.T) {
	p := NewPlanner(NewDomain("empty"))
	plan := p.Decompose(mustBuildTask(t, Compound("summon_dragon")), NewState())
	if plan != nil {
		t.Errorf("Decompose(unknown compound) = %v, want nil", plan)
	}
}

func TestPlanner_NoApplicableMethodFails(t *testing.T) {
	d := NewDomain("test")
	d.AddMethod(mustBuildMethod(t, NewMethod("gated", "task").
		Precondition(func(*WorldState) bool { return false }).
		Subtask(mustBuildTask(t, Primitive("x")))))
	p := NewPlanner(d)

	if plan := p.Decompose(mustBuildTask(t, Compound("task")), NewState()); plan != nil {
		t.Errorf("Decompose() = %v, want nil when no precondition holds", plan)
	}
}

func TestPlanner_PriorityLaw(t *testing.T) {
	d := NewDomain("test")
	d.AddMethod(mustBuildMethod(t, NewMethod("with_axe", "gather_wood").
		Priority(100).
		Precondition(func(s *WorldState) bool { return s.GetBool("hasAxe", false) }).
		Subtask(mustBuildTask(t, Primitive("chop")))))
	d.AddMethod(mustBuildMethod(t, NewMethod("by_hand", "gather_wood").
		Priority(50).
		Subtask(mustBuildTask(t, Primitive("punch")))))
	p := NewPlanner(d)
	goal := mustBuildTask(t, Compound("gather_wood"))

	tests := []struct {
		name      string
		hasAxe    bool
		firstStep string
	}{
		{"axe available uses high priority method", true, "chop"},
		{"no axe falls back", false, "punch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewState()
			_ = state.Set("hasAxe", tt.hasAxe)
			plan := p.Decompose(goal, state)
			if len(plan) == 0 {
				t.Fatal("Decompose() failed, want a plan")
			}
			if plan[0].Name() != tt.firstStep {
				t.Errorf("plan starts with %s, want %s", plan[0].Name(), tt.firstStep)
			}
		})
	}
}

// chainDomain registers a linear chain: level0 -> level1 -> ... level(n-1)
// whose final method expands to a single primitive.
func chainDomain(t *testing.T, levels int) *Domain {
	t.Helper()
	d := NewDomain("chain")
	for i := 0; i < levels; i++ {
		var sub *Task
		if i == levels-1 {
			sub = mustBuildTask(t, Primitive("work"))
		} else {
			sub = mustBuildTask(t, Compound(fmt.Sprintf("level%d", i+1)))
		}
		d.AddMethod(mustBuildMethod(t,
			NewMethod(fmt.Sprintf("expand%d", i), fmt.Sprintf("level%d", i)).
				Subtask(sub)))
	}
	return d
}

func TestPlanner_DepthLaw(t *testing.T) {
	d := chainDomain(t, 10)
	root := mustBuildTask(t, Compound("level0"))

	deep := NewPlannerLimits(d, 50, DefaultMaxIterations)
	if plan := deep.Decompose(root, NewState()); len(plan) != 1 {
		t.Errorf("maxDepth=50: plan = %v, want single primitive", plan)
	}

	shallow := NewPlannerLimits(d, 2, DefaultMaxIterations)
	if plan := shallow.Decompose(root, NewState()); plan != nil {
		t.Errorf("maxDepth=2: plan = %v, want nil", plan)
	}
}

func TestPlanner_DecomposeDepthOverride(t *testing.T) {
	d := chainDomain(t, 10)
	p := NewPlannerLimits(d, 2, DefaultMaxIterations)
	root := mustBuildTask(t, Compound("level0"))

	if plan := p.DecomposeDepth(root, NewState(), 50); len(plan) != 1 {
		t.Errorf("DecomposeDepth(50) = %v, want single primitive", plan)
	}
	if plan := p.DecomposeDepth(root, NewState(), 2); plan != nil {
		t.Errorf("DecomposeDepth(2) = %v, want nil", plan)
	}
}

func TestPlanner_IterationBudget(t *testing.T) {
	d := chainDomain(t, 20)
	p := NewPlannerLimits(d, 50, 5)
	root := mustBuildTask(t, Compound("level0"))

	plan, stats := p.DecomposeWithStats(root, NewState())
	if plan != nil {
		t.Errorf("plan = %v, want nil once the iteration budget is spent", plan)
	}
	if stats.Iterations <= 5 {
		t.Errorf("Iterations = %d, want the counter to have hit the budget", stats.Iterations)
	}
}

func TestPlanner_BacktrackingLaw(t *testing.T) {
	d := NewDomain("test")
	// Highest priority method references a compound with no methods, so
	// its decomposition fails partway.
	d.AddMethod(mustBuildMethod(t, NewMethod("broken", "goal").
		Priority(100).
		Subtask(mustBuildTask(t, Primitive("first_step"))).
		Subtask(mustBuildTask(t, Compound("unregistered")))))
	d.AddMethod(mustBuildMethod(t, NewMethod("working", "goal").
		Priority(50).
		Subtask(mustBuildTask(t, Primitive("fallback_step")))))
	p := NewPlanner(d)

	plan := p.Decompose(mustBuildTask(t, Compound("goal")), NewState())
	if len(plan) != 1 {
		t.Fatalf("plan = %v, want the fallback method's single step", plan)
	}
	if plan[0].Name() != "fallback_step" {
		t.Errorf("plan[0] = %s, want fallback_step (backtracked)", plan[0].Name())
	}
}

func TestPlanner_ParameterInheritance(t *testing.T) {
	d := NewDomain("test")
	d.AddMethod(mustBuildMethod(t, NewMethod("build", "place_blocks").
		Subtask(mustBuildTask(t, Primitive("place").Parameter("blockType", "stone"))).
		Subtask(mustBuildTask(t, Primitive("place")))))
	p := NewPlanner(d)

	goal := mustBuildTask(t, Compound("place_blocks").Parameter("blockType", "oak_planks"))
	plan := p.Decompose(goal, NewState())
	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2", len(plan))
	}
	if got := plan[0].StringParameter("blockType", ""); got != "stone" {
		t.Errorf("explicit subtask parameter lost: blockType = %q, want stone", got)
	}
	if got := plan[1].StringParameter("blockType", ""); got != "oak_planks" {
		t.Errorf("parent parameter not inherited: blockType = %q, want oak_planks", got)
	}
}

func TestPlanner_ParameterInheritanceAcrossLevels(t *testing.T) {
	d := NewDomain("test")
	d.AddMethod(mustBuildMethod(t, NewMethod("outer", "build_house").
		Subtask(mustBuildTask(t, Compound("construct_walls")))))
	d.AddMethod(mustBuildMethod(t, NewMethod("inner", "construct_walls").
		Subtask(mustBuildTask(t, Primitive("build")))))
	p := NewPlanner(d)

	goal := mustBuildTask(t, Compound("build_house").Parameter("material", "oak_planks"))
	plan := p.Decompose(goal, NewState())
	if len(plan) != 1 {
		t.Fatalf("plan length = %d, want 1", len(plan))
	}
	if got := plan[0].StringParameter("material", ""); got != "oak_planks" {
		t.Errorf("parameter did not flow through nested decomposition: %q", got)
	}
}

func TestPlanner_StateMutationDuringCallIsInvisible(t *testing.T) {
	d := NewDomain("test")
	// Precondition that would flip if the planner read the live state
	// instead of its snapshot.
	d.AddMethod(mustBuildMethod(t, NewMethod("gated", "goal").
		Precondition(func(s *WorldState) bool { return s.GetBool("open", false) }).
		Subtask(mustBuildTask(t, Primitive("enter")))))
	p := NewPlanner(d)

	state := NewState()
	_ = state.Set("open", true)
	plan := p.Decompose(mustBuildTask(t, Compound("goal")), state)
	if len(plan) != 1 {
		t.Fatalf("plan = %v, want single step", plan)
	}
}

func TestPlanner_CanDecompose(t *testing.T) {
	d := CreateDefault()
	p := NewPlanner(d)

	prim := mustBuildTask(t, Primitive("anything"))
	known := mustBuildTask(t, Compound("gather_wood"))
	unknown := mustBuildTask(t, Compound("summon_dragon"))

	tests := []struct {
		name  string
		task  *Task
		state *WorldState
		want  bool
	}{
		{"primitive always", prim, NewState(), true},
		{"compound with applicable method", known, NewState(), true},
		{"unknown compound", unknown, NewState(), false},
		{"nil task", nil, NewState(), false},
		{"nil state", known, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.CanDecompose(tt.task, tt.state); got != tt.want {
				t.Errorf("CanDecompose() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanner_ApplicableMethods(t *testing.T) {
	d := CreateDefault()
	p := NewPlanner(d)

	prim := mustBuildTask(t, Primitive("mine"))
	if got := p.ApplicableMethods(prim, NewState()); len(got) != 0 {
		t.Errorf("ApplicableMethods(primitive) = %v, want empty", got)
	}
	if got := p.ApplicableMethods(nil, NewState()); len(got) != 0 {
		t.Errorf("ApplicableMethods(nil task) = %v, want empty", got)
	}

	goal := mustBuildTask(t, Compound("gather_wood"))
	state := NewState()
	_ = state.Set("hasAxe", true)
	got := p.ApplicableMethods(goal, state)
	if len(got) != 2 {
		t.Fatalf("ApplicableMethods(gather_wood) len = %d, want 2", len(got))
	}
	if got[0].Name() != "gather_wood_with_tool" {
		t.Errorf("first method = %s, want gather_wood_with_tool", got[0].Name())
	}
}

func TestPlanner_DecomposeWithStats(t *testing.T) {
	d := NewDomain("test")
	d.AddMethod(mustBuildMethod(t, NewMethod("m", "goal").
		Subtask(mustBuildTask(t, Primitive("a"))).
		Subtask(mustBuildTask(t, Primitive("b")))))
	p := NewPlanner(d)

	plan, stats := p.DecomposeWithStats(mustBuildTask(t, Compound("goal")), NewState())
	if len(plan) != 2 {
		t.Fatalf("plan length = %d, want 2", len(plan))
	}
	if stats.PlanLength != 2 {
		t.Errorf("Stats.PlanLength = %d, want 2", stats.PlanLength)
	}
	// Root + two subtasks = three decompose invocations.
	if stats.Iterations != 3 {
		t.Errorf("Stats.Iterations = %d, want 3", stats.Iterations)
	}
	if stats.MaxDepth != 1 {
		t.Errorf("Stats.MaxDepth = %d, want 1", stats.MaxDepth)
	}
}

func TestPlanner_NilDomain(t *testing.T) {
	p := NewPlanner(nil)
	task := mustBuildTask(t, Compound("goal"))
	if plan := p.Decompose(task, NewState()); plan != nil {
		t.Errorf("Decompose() with nil domain = %v, want nil", plan)
	}
	if p.CanDecompose(task, NewState()) {
		t.Error("CanDecompose() with nil domain = true, want false")
	}
}

func TestPlanner_DebugLogReceivesOutput(t *testing.T) {
	d := CreateDefault()
	p := NewPlanner(d)

	var lines []string
	p.SetDebugLog(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	state := NewState()
	_ = state.Set("hasAxe", true)
	if plan := p.Decompose(mustBuildTask(t, Compound("gather_wood")), state); plan == nil {
		t.Fatal("Decompose() failed, want success")
	}
	if len(lines) == 0 {
		t.Error("debug log received no output")
	}
}
