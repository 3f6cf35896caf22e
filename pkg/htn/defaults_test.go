package htn

import "testing"

func TestCreateDefault_Content(t *testing.T) {
	d := CreateDefault()

	if d.Name() != "voxel_default" {
		t.Errorf("Name() = %q, want voxel_default", d.Name())
	}

	wantTasks := []string{
		"build_house", "construct_walls",
		"gather_wood", "craft_planks", "craft_sticks", "mine_resource",
	}
	for _, task := range wantTasks {
		if !d.HasMethodsFor(task) {
			t.Errorf("default domain missing methods for %q", task)
		}
	}
	if got := d.TaskCount(); got != len(wantTasks) {
		t.Errorf("TaskCount() = %d, want %d", got, len(wantTasks))
	}
}

func TestCreateDefault_BuildHousePlans(t *testing.T) {
	p := NewPlanner(CreateDefault())
	goal, err := Compound("build_house").Parameter("material", "oak_planks").Build()
	if err != nil {
		t.Fatalf("build goal: %v", err)
	}

	t.Run("with materials", func(t *testing.T) {
		state := NewState()
		_ = state.Set("hasMaterials", true)
		plan := p.Decompose(goal, state)
		if plan == nil {
			t.Fatal("Decompose() failed with materials on hand")
		}
		// The high-priority method skips gathering entirely.
		for _, step := range plan {
			if step.Name() == "mine" {
				t.Error("plan includes gathering despite hasMaterials=true")
			}
		}
	})

	t.Run("without materials", func(t *testing.T) {
		state := NewState()
		_ = state.Set("hasMaterials", false)
		_ = state.Set("hasAxe", true)
		_ = state.Set("logCount", 8)
		plan := p.Decompose(goal, state)
		if plan == nil {
			t.Fatal("Decompose() failed via the gathering fallback")
		}
		found := false
		for _, step := range plan {
			if step.Name() == "mine" {
				found = true
			}
			if step.IsCompound() {
				t.Errorf("plan contains compound step %q", step.Name())
			}
		}
		if !found {
			t.Error("fallback plan should include a mine step")
		}
	})
}

func TestCreateDefault_GatherWoodRespectsAxe(t *testing.T) {
	p := NewPlanner(CreateDefault())
	goal, err := Compound("gather_wood").Parameter("count", 64).Build()
	if err != nil {
		t.Fatalf("build goal: %v", err)
	}

	withAxe := NewState()
	_ = withAxe.Set("hasAxe", true)
	plan := p.Decompose(goal, withAxe)
	if plan == nil {
		t.Fatal("Decompose() failed with axe")
	}
	for _, step := range plan {
		if step.Name() == "mine" && step.BoolParameter("byHand", false) {
			t.Error("with an axe the plan should not mine by hand")
		}
	}

	noAxe := NewState()
	plan = p.Decompose(goal, noAxe)
	if plan == nil {
		t.Fatal("Decompose() failed without axe")
	}
	byHand := false
	for _, step := range plan {
		if step.Name() == "mine" && step.BoolParameter("byHand", false) {
			byHand = true
		}
	}
	if !byHand {
		t.Error("without an axe the plan should mine by hand")
	}
}
