package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tverens/craftplan/internal/config"
	"github.com/tverens/craftplan/internal/planstore"
	"github.com/tverens/craftplan/pkg/htn"
)

var (
	planParams        []string
	planPrimitive     bool
	planMaxDepth      int
	planMaxIterations int
	planJSON          bool
	planVerbose       bool
	planNoHistory     bool
)

var planCmd = &cobra.Command{
	Use:   "plan <task>",
	Short: "Decompose a goal task into primitive actions",
	Long: `Decompose a goal task into an ordered sequence of primitive actions.

The task name must have methods registered in the domain, or be a
primitive itself. Parameters given with --param are attached to the
goal and inherited by subtasks that do not set the same key.

Examples:
  craftplan plan gather_wood
  craftplan plan build_house --param material=stone
  craftplan plan mine_stone --state world.yaml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringArrayVar(&planParams, "param", nil, "Goal parameter as key=value (repeatable)")
	planCmd.Flags().BoolVar(&planPrimitive, "primitive", false, "Treat the goal as a primitive action")
	planCmd.Flags().IntVar(&planMaxDepth, "max-depth", 0, "Override recursion depth budget")
	planCmd.Flags().IntVar(&planMaxIterations, "max-iterations", 0, "Override search iteration budget")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Emit the plan as JSON")
	planCmd.Flags().BoolVarP(&planVerbose, "verbose", "v", false, "Print decomposition trace")
	planCmd.Flags().BoolVar(&planNoHistory, "no-history", false, "Skip recording the run")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if planMaxDepth > 0 {
		cfg.Planner.MaxDepth = planMaxDepth
	}
	if planMaxIterations > 0 {
		cfg.Planner.MaxIterations = planMaxIterations
	}

	domain, err := loadDomain(cfg)
	if err != nil {
		return err
	}
	state, err := loadState(cfg)
	if err != nil {
		return err
	}

	params, err := parseParams(planParams)
	if err != nil {
		return err
	}
	builder := htn.NewTask(args[0])
	if planPrimitive {
		builder = htn.Primitive(args[0])
	}
	goal, err := builder.Parameters(params).Build()
	if err != nil {
		return fmt.Errorf("build goal: %w", err)
	}

	planner := htn.NewPlannerLimits(domain, cfg.Planner.MaxDepth, cfg.Planner.MaxIterations)
	if planVerbose {
		planner.SetDebugLog(func(format string, a ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		})
	}

	start := time.Now()
	plan, stats := planner.DecomposeWithStats(goal, state)
	elapsed := time.Since(start)

	recordRun(cfg, domain, goal, plan, stats, elapsed)

	if plan == nil {
		return fmt.Errorf("no plan found for %q (%d iterations)", goal.Name(), stats.Iterations)
	}

	if planJSON {
		return printPlanJSON(plan, stats, elapsed)
	}
	printPlan(goal, plan, stats, elapsed)
	return nil
}

func printPlan(goal *htn.Task, plan []*htn.Task, stats htn.Stats, elapsed time.Duration) {
	fmt.Printf("%s plan for %s (%d steps)\n\n",
		color.GreenString("✓"), color.CyanString(goal.Name()), len(plan))

	for i, step := range plan {
		fmt.Printf("  %2d. %s", i+1, step.Name())
		if params := step.Parameters(); len(params) > 0 {
			fmt.Printf("  %s", color.New(color.Faint).Sprint(formatParams(params)))
		}
		fmt.Println()
	}

	fmt.Printf("\n%s\n", color.New(color.Faint).Sprintf(
		"%d iterations, depth %d, %s", stats.Iterations, stats.MaxDepth, elapsed.Round(time.Microsecond)))
}

func printPlanJSON(plan []*htn.Task, stats htn.Stats, elapsed time.Duration) error {
	actions, err := htn.Actions(plan)
	if err != nil {
		return fmt.Errorf("convert plan: %w", err)
	}

	out := struct {
		Plan       []*htn.Action `json:"plan"`
		Iterations int           `json:"iterations"`
		MaxDepth   int           `json:"max_depth"`
		DurationMS int64         `json:"duration_ms"`
	}{actions, stats.Iterations, stats.MaxDepth, elapsed.Milliseconds()}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatParams(params map[string]any) string {
	b, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	return string(b)
}

// recordRun appends the run to history. History failures never fail
// the plan command.
func recordRun(cfg *config.Config, domain *htn.Domain, goal *htn.Task, plan []*htn.Task, stats htn.Stats, elapsed time.Duration) {
	if planNoHistory || !cfg.History.Enabled {
		return
	}

	path := cfg.History.Path
	if path == "" {
		path = planstore.DefaultPath()
	}
	store, err := planstore.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: open history: %v\n", err)
		return
	}
	defer store.Close()

	run := planstore.Run{
		Goal:       goal.Name(),
		Domain:     domain.Name(),
		Success:    plan != nil,
		Steps:      len(plan),
		Iterations: stats.Iterations,
		MaxDepth:   stats.MaxDepth,
		Duration:   elapsed,
	}
	if err := store.Record(run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record run: %v\n", err)
	}
}
