package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "logging.level")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateBuild()...)
	errs = append(errs, c.validateStash()...)
	return errs
}

func (c *Config) validateLogging() []ValidationError {
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		return []ValidationError{{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		}}
	}
	return nil
}

func (c *Config) validateBuild() []ValidationError {
	if strings.TrimSpace(c.Build.FallbackSimulator) == "" {
		return []ValidationError{{
			Field:   "build.fallback_simulator",
			Value:   c.Build.FallbackSimulator,
			Message: "must not be empty",
		}}
	}
	return nil
}

func (c *Config) validateStash() []ValidationError {
	ns := c.Stash.Namespace
	switch {
	case strings.TrimSpace(ns) == "":
		return []ValidationError{{Field: "stash.namespace", Value: ns, Message: "must not be empty"}}
	case strings.ContainsAny(ns, ":\n"):
		return []ValidationError{{Field: "stash.namespace", Value: ns, Message: "must not contain ':' or newlines"}}
	}
	return nil
}
