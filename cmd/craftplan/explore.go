package main

import (
	"github.com/spf13/cobra"

	"github.com/tverens/craftplan/internal/tui"
	"github.com/tverens/craftplan/pkg/htn"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse the domain interactively",
	Long: `Open an interactive browser over the active domain.

Navigate tasks with the arrow keys, press enter to preview the plan
for the selected task against the active world state, and / to filter.`,
	RunE: runExplore,
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	domain, err := loadDomain(cfg)
	if err != nil {
		return err
	}
	state, err := loadState(cfg)
	if err != nil {
		return err
	}

	planner := htn.NewPlannerLimits(domain, cfg.Planner.MaxDepth, cfg.Planner.MaxIterations)
	return tui.Run(domain, state, planner)
}
