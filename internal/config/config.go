// Package config holds devflow's own settings, read through viper from
// $XDG_CONFIG_HOME/devflow/config.yaml and DEVFLOW_* environment variables.
// The list of projects lives in a separate projects file named here.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete devflow configuration
type Config struct {
	// ProjectsFile is the JSON or YAML file listing projects
	// (default: <config dir>/projects.json)
	ProjectsFile string            `mapstructure:"projects_file"`
	Logging      LoggingConfig     `mapstructure:"logging"`
	Reports      ReportsConfig     `mapstructure:"reports"`
	Build        BuildConfig       `mapstructure:"build"`
	Stash        StashConfig       `mapstructure:"stash"`
	Interaction  InteractionConfig `mapstructure:"interaction"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled writes JSON logs to Dir; when false logging is discarded
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Dir is where devflow.log is written (default: <config dir>/logs)
	Dir string `mapstructure:"dir"`
}

// ReportsConfig controls build and test failure reports
type ReportsConfig struct {
	// Dir is where reports are written (default: <config dir>/reports)
	Dir string `mapstructure:"dir"`
}

// BuildConfig controls the build toolchain
type BuildConfig struct {
	// FallbackSimulator is the destination name used when no run target is
	// chosen, and for test runs (default: "iPhone 15")
	FallbackSimulator string `mapstructure:"fallback_simulator"`
}

// StashConfig controls named stashes
type StashConfig struct {
	// Namespace prefixes named stash descriptions: "<namespace>: <name>"
	Namespace string `mapstructure:"namespace"`
}

// InteractionConfig controls prompting
type InteractionConfig struct {
	// AssumeYes answers every confirmation with yes and never prompts
	AssumeYes bool `mapstructure:"assume_yes"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		ProjectsFile: "", // Empty means <config dir>/projects.json
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
		Reports: ReportsConfig{
			Dir: "",
		},
		Build: BuildConfig{
			FallbackSimulator: "iPhone 15",
		},
		Stash: StashConfig{
			Namespace: "devflow",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("projects_file", defaults.ProjectsFile)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	viper.SetDefault("reports.dir", defaults.Reports.Dir)

	viper.SetDefault("build.fallback_simulator", defaults.Build.FallbackSimulator)

	viper.SetDefault("stash.namespace", defaults.Stash.Namespace)

	viper.SetDefault("interaction.assume_yes", defaults.Interaction.AssumeYes)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ProjectsPath returns the projects file to load.
func (c *Config) ProjectsPath() string {
	return resolvePath(c.ProjectsFile, filepath.Join(ConfigDir(), "projects.json"))
}

// LogDir returns the directory devflow.log is written to.
func (c *Config) LogDir() string {
	return resolvePath(c.Logging.Dir, filepath.Join(ConfigDir(), "logs"))
}

// ReportDir returns the directory failure reports are written to.
func (c *Config) ReportDir() string {
	return resolvePath(c.Reports.Dir, filepath.Join(ConfigDir(), "reports"))
}

// resolvePath expands a leading ~ and falls back to def when path is empty.
func resolvePath(path, def string) string {
	if path == "" {
		return def
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return filepath.Clean(path)
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "devflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".devflow"
	}
	return filepath.Join(home, ".config", "devflow")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
