package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tverens/craftplan/internal/domainfile"
	"github.com/tverens/craftplan/pkg/htn"
)

var watchParams []string

var watchCmd = &cobra.Command{
	Use:   "watch <task>",
	Short: "Replan whenever the domain file changes",
	Long: `Watch the domain file and re-decompose the goal task on every
change. Useful while iterating on a method library.

Requires --domain (or domain.path in config); the built-in domain
cannot be watched.

Example:
  craftplan watch gather_wood --domain domains/voxel.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringArrayVar(&watchParams, "param", nil, "Goal parameter as key=value (repeatable)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Domain.Path == "" {
		return fmt.Errorf("watch requires a domain file (--domain)")
	}

	state, err := loadState(cfg)
	if err != nil {
		return err
	}
	params, err := parseParams(watchParams)
	if err != nil {
		return err
	}
	goal, err := htn.NewTask(args[0]).Parameters(params).Build()
	if err != nil {
		return fmt.Errorf("build goal: %w", err)
	}

	replan := func(domain *htn.Domain) {
		planner := htn.NewPlannerLimits(domain, cfg.Planner.MaxDepth, cfg.Planner.MaxIterations)
		start := time.Now()
		plan, stats := planner.DecomposeWithStats(goal, state)
		elapsed := time.Since(start)

		fmt.Printf("%s reloaded %s\n", color.New(color.Faint).Sprint(time.Now().Format("15:04:05")), cfg.Domain.Path)
		if plan == nil {
			fmt.Printf("  %s no plan for %q (%d iterations)\n\n",
				color.RedString("✗"), goal.Name(), stats.Iterations)
			return
		}
		fmt.Printf("  %s %d steps (%d iterations, %s)\n",
			color.GreenString("✓"), len(plan), stats.Iterations, elapsed.Round(time.Microsecond))
		for i, step := range plan {
			fmt.Printf("    %2d. %s\n", i+1, step.Name())
		}
		fmt.Println()
	}

	// Plan once up front so the first result does not wait for an edit.
	domain, err := loadDomain(cfg)
	if err != nil {
		return err
	}
	replan(domain)

	watcher, err := domainfile.NewWatcher(cfg.Domain.Path, replan, func(err error) {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("✗"), err)
	})
	if err != nil {
		return fmt.Errorf("watch domain: %w", err)
	}
	defer watcher.Close()

	fmt.Println(color.New(color.Faint).Sprint("watching for changes, ctrl+c to stop"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("\nstopping")
	return nil
}
