package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tverens/craftplan/internal/config"
	"github.com/tverens/craftplan/internal/domainfile"
	"github.com/tverens/craftplan/pkg/htn"
)

var (
	flagDomain string
	flagState  string
)

var rootCmd = &cobra.Command{
	Use:   "craftplan",
	Short: "Hierarchical task network planner",
	Long: `Craftplan decomposes high-level goals into ordered sequences of
primitive actions using a hierarchical task network.

A domain file defines compound tasks and the methods that break them
down; a world state file supplies the facts preconditions are checked
against. With neither, the built-in voxel domain is used.

Core capabilities:
- Decomposes goals via prioritized, precondition-gated methods
- Backtracks across alternative methods on dead ends
- Inherits task parameters down the decomposition tree
- Records run history for later inspection`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDomain, "domain", "", "Domain YAML file (default: built-in voxel domain)")
	rootCmd.PersistentFlags().StringVar(&flagState, "state", "", "World state YAML file")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(domainCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration, folding persistent flag overrides in.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagDomain != "" {
		cfg.Domain.Path = flagDomain
	}
	if flagState != "" {
		cfg.Domain.StatePath = flagState
	}
	return cfg, nil
}

// loadDomain returns the configured domain, falling back to the
// built-in voxel domain when no path is set.
func loadDomain(cfg *config.Config) (*htn.Domain, error) {
	if cfg.Domain.Path == "" {
		return htn.CreateDefault(), nil
	}
	domain, err := domainfile.Load(cfg.Domain.Path)
	if err != nil {
		return nil, fmt.Errorf("load domain: %w", err)
	}
	return domain, nil
}

// loadState returns the configured world state, empty when no path is set.
func loadState(cfg *config.Config) (*htn.WorldState, error) {
	if cfg.Domain.StatePath == "" {
		return htn.NewState(), nil
	}
	state, err := domainfile.LoadState(cfg.Domain.StatePath)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return state, nil
}

// parseParams parses key=value pairs into task parameters, coercing
// values to bool or number where they parse as one.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}
		params[strings.TrimSpace(key)] = coerceParamValue(raw)
	}
	return params, nil
}

// coerceParamValue tries numbers before bools so "1" stays an int.
func coerceParamValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
