package htn

// Default safety bounds for a single top-level decomposition call.
const (
	// DefaultMaxDepth is the recursion ceiling per branch.
	DefaultMaxDepth = 50
	// DefaultMaxIterations is the global work ceiling across the whole
	// call tree, bounding search blow-up from method fan-out.
	DefaultMaxIterations = 1000
)

// Planner decomposes compound tasks into ordered primitive plans using
// methods from its domain. It holds no per-call state: every Decompose
// call builds its own planning context, so a single Planner is safe to
// share across goroutines as long as the domain is not mutated mid-call.
//
// All planning-time failures (nil inputs, unknown tasks, failed
// preconditions, exhausted depth or iteration budgets) yield a nil plan,
// never an error.
type Planner struct {
	domain        *Domain
	maxDepth      int
	maxIterations int
	// debugLog is an optional logging function.
	debugLog func(format string, args ...any)
}

// Stats summarizes one decomposition call.
type Stats struct {
	// Iterations is the number of recursive decompose invocations.
	Iterations int
	// MaxDepth is the deepest recursion level reached.
	MaxDepth int
	// PlanLength is the number of primitive tasks produced, 0 on failure.
	PlanLength int
}

// NewPlanner creates a planner over a domain with the default depth and
// iteration bounds.
func NewPlanner(domain *Domain) *Planner {
	return NewPlannerLimits(domain, DefaultMaxDepth, DefaultMaxIterations)
}

// NewPlannerLimits creates a planner with custom safety bounds.
func NewPlannerLimits(domain *Domain, maxDepth, maxIterations int) *Planner {
	return &Planner{
		domain:        domain,
		maxDepth:      maxDepth,
		maxIterations: maxIterations,
		debugLog:      func(string, ...any) {},
	}
}

// SetDebugLog sets the debug logging function.
func (p *Planner) SetDebugLog(fn func(format string, args ...any)) {
	if fn != nil {
		p.debugLog = fn
	}
}

// Domain returns the domain this planner consults.
func (p *Planner) Domain() *Domain {
	return p.domain
}

// MaxDepth returns the recursion ceiling.
func (p *Planner) MaxDepth() int { return p.maxDepth }

// MaxIterations returns the global iteration ceiling.
func (p *Planner) MaxIterations() int { return p.maxIterations }

// planContext tracks shared state across one top-level decomposition
// call tree. The iteration counter is cumulative across sibling
// branches, not just per-path depth.
type planContext struct {
	state           *WorldState
	iterations      int
	maxDepthReached int
}

// Decompose turns a root task into an ordered plan of primitive tasks,
// or nil when no full decomposition exists under the current world
// facts. Nil task or state also yield nil.
func (p *Planner) Decompose(task *Task, state *WorldState) []*Task {
	plan, _ := p.DecomposeWithStats(task, state)
	return plan
}

// DecomposeDepth decomposes with a custom depth budget for this call,
// overriding the planner's MaxDepth.
func (p *Planner) DecomposeDepth(task *Task, state *WorldState, depthBudget int) []*Task {
	plan, _ := p.decompose(task, state, depthBudget)
	return plan
}

// DecomposeWithStats decomposes and additionally reports how much work
// the search did. The stats are valid for failed searches too.
func (p *Planner) DecomposeWithStats(task *Task, state *WorldState) ([]*Task, Stats) {
	return p.decompose(task, state, p.maxDepth)
}

func (p *Planner) decompose(task *Task, state *WorldState, depthBudget int) ([]*Task, Stats) {
	if task == nil {
		p.debugLog("[planner] cannot decompose nil task")
		return nil, Stats{}
	}
	if state == nil {
		p.debugLog("[planner] cannot decompose with nil world state")
		return nil, Stats{}
	}
	if p.domain == nil {
		p.debugLog("[planner] no domain configured")
		return nil, Stats{}
	}

	// Freeze the incoming facts so a shared mutable state cannot shift
	// under the search.
	ctx := &planContext{state: state.Snapshot()}

	p.debugLog("[planner] decompose start: task=%q depthBudget=%d domain=%q",
		task.Name(), depthBudget, p.domain.Name())

	plan := p.decomposeRecursive(task, ctx, depthBudget, 0)

	stats := Stats{
		Iterations: ctx.iterations,
		MaxDepth:   ctx.maxDepthReached,
		PlanLength: len(plan),
	}
	if plan != nil {
		p.debugLog("[planner] decompose success: task=%q steps=%d iterations=%d depth=%d",
			task.Name(), len(plan), stats.Iterations, stats.MaxDepth)
	} else {
		p.debugLog("[planner] decompose failed: task=%q iterations=%d depth=%d",
			task.Name(), stats.Iterations, stats.MaxDepth)
	}
	return plan, stats
}

// decomposeRecursive is the core search. One iteration is one invocation
// of this function, counted across the entire call tree; once the budget
// is exhausted every further attempt in this call fails.
func (p *Planner) decomposeRecursive(task *Task, ctx *planContext, depthBudget, depth int) []*Task {
	ctx.iterations++
	if ctx.iterations > p.maxIterations {
		p.debugLog("[planner] iteration budget exhausted at task=%q (max=%d)",
			task.Name(), p.maxIterations)
		return nil
	}
	if depth > ctx.maxDepthReached {
		ctx.maxDepthReached = depth
	}

	// Primitive tasks are the base case: a one-step plan, no search.
	if task.IsPrimitive() {
		return []*Task{task}
	}

	if depthBudget <= 0 {
		p.debugLog("[planner] depth budget exhausted at task=%q (depth=%d)", task.Name(), depth)
		return nil
	}

	methods := p.domain.ApplicableMethods(task.Name(), ctx.state)
	if len(methods) == 0 {
		p.debugLog("[planner] no applicable methods for task=%q", task.Name())
		return nil
	}

	// Greedy, first-success search: highest priority first, and the
	// first method whose every subtask decomposes wins.
	for _, method := range methods {
		plan := p.tryMethod(method, task, ctx, depthBudget, depth)
		if plan != nil {
			p.debugLog("[planner] method %q succeeded for task=%q (%d steps)",
				method.Name(), task.Name(), len(plan))
			return plan
		}
		p.debugLog("[planner] method %q failed for task=%q, trying next",
			method.Name(), task.Name())
	}
	return nil
}

// tryMethod attempts a full decomposition of every subtask in the
// method's declared order. Any subtask failure abandons the method;
// the caller then backtracks to the next candidate.
func (p *Planner) tryMethod(method *Method, parent *Task, ctx *planContext, depthBudget, depth int) []*Task {
	plan := make([]*Task, 0, method.SubtaskCount())
	for _, subtask := range method.Subtasks() {
		merged := mergeParentParams(subtask, parent)
		subPlan := p.decomposeRecursive(merged, ctx, depthBudget-1, depth+1)
		if subPlan == nil {
			return nil
		}
		plan = append(plan, subPlan...)
	}
	return plan
}

// mergeParentParams binds a parent task's arguments to a subtask
// template. The template's own parameters win; any parent parameter
// absent on the template is inherited. Templates that inherit nothing
// are returned as-is, without minting a new ID.
func mergeParentParams(subtask, parent *Task) *Task {
	var inherited map[string]any
	for k, v := range parent.Parameters() {
		if !subtask.HasParameter(k) {
			if inherited == nil {
				inherited = make(map[string]any)
			}
			inherited[k] = v
		}
	}
	if inherited == nil {
		return subtask
	}
	return subtask.withInherited(inherited)
}

// withInherited returns a copy whose parameter bag gains the inherited
// entries without overriding existing keys.
func (t *Task) withInherited(inherited map[string]any) *Task {
	merged := copyProps(inherited)
	for k, v := range t.params {
		merged[k] = v
	}
	return &Task{
		name:   t.name,
		kind:   t.kind,
		params: merged,
		id:     newTaskID(),
	}
}

// CanDecompose reports whether a task could decompose under the current
// facts without running the full search: primitive tasks always can,
// compound tasks can when at least one applicable method exists.
func (p *Planner) CanDecompose(task *Task, state *WorldState) bool {
	if task == nil || state == nil || p.domain == nil {
		return false
	}
	if task.IsPrimitive() {
		return true
	}
	return len(p.domain.ApplicableMethods(task.Name(), state)) > 0
}

// ApplicableMethods returns the domain's applicable methods for a
// compound task. Primitive tasks and nil inputs yield an empty slice.
func (p *Planner) ApplicableMethods(task *Task, state *WorldState) []*Method {
	if task == nil || state == nil || p.domain == nil || task.IsPrimitive() {
		return []*Method{}
	}
	return p.domain.ApplicableMethods(task.Name(), state)
}
