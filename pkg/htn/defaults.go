package htn

// CreateDefault returns a ready-to-use domain seeded with methods for
// common voxel-game compound tasks: building, gathering, crafting, and
// mining. The content is configuration, not algorithm; callers are free
// to extend or replace it, or load a domain from a data file instead.
func CreateDefault() *Domain {
	d := NewDomain("voxel_default")
	loadBuildingMethods(d)
	loadGatheringMethods(d)
	loadCraftingMethods(d)
	loadMiningMethods(d)
	return d
}

func loadBuildingMethods(d *Domain) {
	// Build house when materials are already on hand.
	d.AddMethod(mustMethod(NewMethod("build_house_with_materials", "build_house").
		Description("Build house when materials are already available").
		Precondition(func(s *WorldState) bool {
			return s.Has("hasMaterials") && s.GetBool("hasMaterials", false)
		}).
		Subtask(mustTask(Primitive("pathfind").
			Parameter("target", "build_site").Build())).
		Subtask(mustTask(Primitive("clear_area").
			Parameter("width", 5).
			Parameter("depth", 5).
			Parameter("height", 3).Build())).
		Subtask(mustTask(Compound("construct_walls").
			Parameter("height", 3).Build())).
		Subtask(mustTask(Primitive("place").
			Parameter("blockType", "oak_planks").
			Parameter("layer", "roof").Build())).
		Priority(100).
		Build()))

	// Fallback: gather and craft the materials first.
	d.AddMethod(mustMethod(NewMethod("build_house_with_gathering", "build_house").
		Description("Build house including material gathering").
		Subtask(mustTask(Compound("gather_wood").
			Parameter("count", 64).Build())).
		Subtask(mustTask(Compound("craft_planks").
			Parameter("count", 192).Build())).
		Subtask(mustTask(Primitive("pathfind").
			Parameter("target", "build_site").Build())).
		Subtask(mustTask(Primitive("clear_area").
			Parameter("width", 5).
			Parameter("depth", 5).
			Parameter("height", 3).Build())).
		Subtask(mustTask(Compound("construct_walls").
			Parameter("height", 3).Build())).
		Subtask(mustTask(Primitive("place").
			Parameter("blockType", "oak_planks").
			Parameter("layer", "roof").Build())).
		Priority(50).
		Build()))

	d.AddMethod(mustMethod(NewMethod("construct_walls_standard", "construct_walls").
		Description("Standard wall construction").
		Subtask(mustTask(Primitive("build").
			Parameter("structure", "walls").
			Parameter("height", 3).Build())).
		Priority(100).
		Build()))
}

func loadGatheringMethods(d *Domain) {
	d.AddMethod(mustMethod(NewMethod("gather_wood_with_tool", "gather_wood").
		Description("Gather wood when an axe is available").
		Precondition(func(s *WorldState) bool { return s.GetBool("hasAxe", false) }).
		Subtask(mustTask(Primitive("pathfind").
			Parameter("targetType", "tree").Build())).
		Subtask(mustTask(Primitive("mine").
			Parameter("blockType", "oak_log").
			Parameter("count", 16).Build())).
		Subtask(mustTask(Primitive("pathfind").
			Parameter("target", "base").Build())).
		Priority(100).
		Build()))

	d.AddMethod(mustMethod(NewMethod("gather_wood_without_tool", "gather_wood").
		Description("Gather wood by hand (slower)").
		Subtask(mustTask(Primitive("pathfind").
			Parameter("targetType", "tree").Build())).
		Subtask(mustTask(Primitive("mine").
			Parameter("blockType", "oak_log").
			Parameter("count", 16).
			Parameter("byHand", true).Build())).
		Subtask(mustTask(Primitive("pathfind").
			Parameter("target", "base").Build())).
		Priority(50).
		Build()))
}

func loadCraftingMethods(d *Domain) {
	// One log yields four planks.
	d.AddMethod(mustMethod(NewMethod("craft_planks_from_logs", "craft_planks").
		Description("Craft wooden planks from logs").
		Precondition(func(s *WorldState) bool { return s.GetInt("logCount", 0) >= 1 }).
		Subtask(mustTask(Primitive("pathfind").
			Parameter("target", "crafting_table").Build())).
		Subtask(mustTask(Primitive("craft").
			Parameter("output", "oak_planks").
			Parameter("count", 4).Build())).
		Priority(100).
		Build()))

	// Two planks yield four sticks.
	d.AddMethod(mustMethod(NewMethod("craft_sticks_from_planks", "craft_sticks").
		Description("Craft sticks from wooden planks").
		Precondition(func(s *WorldState) bool { return s.GetInt("plankCount", 0) >= 2 }).
		Subtask(mustTask(Primitive("pathfind").
			Parameter("target", "crafting_table").Build())).
		Subtask(mustTask(Primitive("craft").
			Parameter("output", "stick").
			Parameter("count", 4).Build())).
		Priority(100).
		Build()))
}

func loadMiningMethods(d *Domain) {
	d.AddMethod(mustMethod(NewMethod("mine_with_tool", "mine_resource").
		Description("Mine resource with an equipped tool").
		Precondition(func(s *WorldState) bool {
			return s.Has("toolType") && s.GetString("toolType", "") != ""
		}).
		Subtask(mustTask(Primitive("pathfind").
			Parameter("targetType", "ore").Build())).
		Subtask(mustTask(Primitive("mine").
			Parameter("useTool", true).Build())).
		Priority(100).
		Build()))

	d.AddMethod(mustMethod(NewMethod("mine_by_hand", "mine_resource").
		Description("Mine resource by hand").
		Subtask(mustTask(Primitive("pathfind").
			Parameter("targetType", "ore").Build())).
		Subtask(mustTask(Primitive("mine").
			Parameter("useTool", false).Build())).
		Priority(50).
		Build()))
}

// mustTask panics on builder errors. The default domain is static data;
// a failure here is a bug in this file.
func mustTask(t *Task, err error) *Task {
	if err != nil {
		panic(err)
	}
	return t
}

func mustMethod(m *Method, err error) *Method {
	if err != nil {
		panic(err)
	}
	return m
}
