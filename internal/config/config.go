// Package config handles configuration loading and management for craftplan.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for craftplan.
type Config struct {
	Planner PlannerConfig `mapstructure:"planner"`
	Domain  DomainConfig  `mapstructure:"domain"`
	History HistoryConfig `mapstructure:"history"`
}

// PlannerConfig holds decomposition search limits.
type PlannerConfig struct {
	// MaxDepth is the recursion depth budget for decomposition.
	MaxDepth int `mapstructure:"max_depth"`
	// MaxIterations is the global search budget across a whole plan.
	MaxIterations int `mapstructure:"max_iterations"`
}

// DomainConfig holds method library file settings.
type DomainConfig struct {
	// Path is the domain YAML file. Empty means the built-in default domain.
	Path string `mapstructure:"path"`
	// StatePath is an optional world state YAML file.
	StatePath string `mapstructure:"state_path"`
}

// HistoryConfig holds plan run recording settings.
type HistoryConfig struct {
	// Enabled toggles recording runs to the history database.
	Enabled bool `mapstructure:"enabled"`
	// Path is the SQLite database file. Empty means the XDG data default.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (CRAFTPLAN_*)
// 2. Project config (.craftplan.yaml in current directory or parent)
// 3. User config (~/.config/craftplan/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("planner.max_depth", "CRAFTPLAN_MAX_DEPTH")
	v.BindEnv("planner.max_iterations", "CRAFTPLAN_MAX_ITERATIONS")
	v.BindEnv("domain.path", "CRAFTPLAN_DOMAIN")
	v.BindEnv("domain.state_path", "CRAFTPLAN_STATE")
	v.BindEnv("history.path", "CRAFTPLAN_HISTORY_PATH")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Domain.Path = os.ExpandEnv(cfg.Domain.Path)
	cfg.Domain.StatePath = os.ExpandEnv(cfg.Domain.StatePath)
	cfg.History.Path = os.ExpandEnv(cfg.History.Path)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("planner.max_depth", cfg.Planner.MaxDepth)
	v.Set("planner.max_iterations", cfg.Planner.MaxIterations)
	v.Set("domain.path", cfg.Domain.Path)
	v.Set("domain.state_path", cfg.Domain.StatePath)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.path", cfg.History.Path)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("planner.max_depth", 50)
	v.SetDefault("planner.max_iterations", 1000)
	v.SetDefault("domain.path", "")
	v.SetDefault("domain.state_path", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
}

// getUserConfigDir returns the XDG config directory for craftplan.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "craftplan")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "craftplan")
	}
	return filepath.Join(home, ".config", "craftplan")
}

// findProjectConfig searches for .craftplan.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".craftplan.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			MaxDepth:      50,
			MaxIterations: 1000,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}
