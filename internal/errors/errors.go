// Package errors provides the error taxonomy for devflow. It defines the
// sentinel errors callers branch on, typed errors that carry the context of
// a failed external tool invocation, and classification helpers used by the
// command layer to decide how a failure is presented.
//
// # Error Types
//
// Sentinel errors name the precondition failures the engine distinguishes:
//   - ErrProjectNotFound, ErrCustomCommandNotFound, ErrChangesetNotFound
//   - ErrInvalidWorkingDirectory, ErrNoBuildUnitFound, ErrNoSchemesFound
//   - ErrNoCandidatesAvailable
//   - ErrProjectsFileNotFound, ErrInvalidProjectsFile
//
// Typed errors carry context:
//   - ToolError: a non-zero exit from git, xcodebuild, simctl or a package manager
//   - GitError: a version-control step that failed, usually wrapping a ToolError
//   - NotFoundError: a named resource that does not exist
//   - ValidationError: invalid input such as an unknown sequence letter
//
// # Usage
//
//	err := errors.NewGitError("failed to pull", toolErr).WithBranch("main")
//
//	if errors.Is(err, errors.ErrToolInvocationFailed) { ... }
//
//	var toolErr *errors.ToolError
//	if errors.As(err, &toolErr) { fmt.Println(toolErr.Output) }
//
// None of these errors is ever retried by the engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Lookup and precondition errors. These abort the current operation before
// any side effect happens.
var (
	// ErrProjectNotFound indicates no project with the requested name is configured.
	ErrProjectNotFound = New("project not found")
	// ErrInvalidWorkingDirectory indicates a project path that is empty or not a directory.
	ErrInvalidWorkingDirectory = New("invalid working directory")
	// ErrNoBuildUnitFound indicates neither a workspace nor a project exists in the directory.
	ErrNoBuildUnitFound = New("no workspace or project found")
	// ErrNoSchemesFound indicates the build unit lists no schemes.
	ErrNoSchemesFound = New("no schemes found")
	// ErrNoCandidatesAvailable indicates a resolver was given nothing to choose from.
	ErrNoCandidatesAvailable = New("no candidates available")
	// ErrChangesetNotFound indicates the changeset branch does not exist.
	ErrChangesetNotFound = New("changeset not found")
	// ErrCustomCommandNotFound indicates no custom command has the requested alias.
	ErrCustomCommandNotFound = New("custom command not found")
)

// Configuration loader errors.
var (
	// ErrProjectsFileNotFound indicates the projects file does not exist.
	ErrProjectsFileNotFound = New("projects file not found")
	// ErrInvalidProjectsFile indicates the projects file could not be read or validated.
	ErrInvalidProjectsFile = New("invalid projects file")
)

// ErrToolInvocationFailed matches any ToolError via errors.Is.
var ErrToolInvocationFailed = New("tool invocation failed")

// ErrInvalidInput indicates malformed user input.
var ErrInvalidInput = New("invalid input")

// IsPrecondition reports whether err is one of the existence/precondition
// failures that abort an operation without side effects.
func IsPrecondition(err error) bool {
	for _, target := range []error{
		ErrProjectNotFound,
		ErrInvalidWorkingDirectory,
		ErrNoBuildUnitFound,
		ErrNoSchemesFound,
		ErrChangesetNotFound,
		ErrCustomCommandNotFound,
	} {
		if Is(err, target) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message string
	cause   error
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// -----------------------------------------------------------------------------
// Tool Errors
// -----------------------------------------------------------------------------

// ToolError represents a failed external command. ExitCode is -1 when the
// process could not be started at all.
//
// Example:
//
//	err := errors.NewToolError("xcodebuild", []string{"build"}, 65, out, cause)
//	fmt.Println(err) // "xcodebuild build exited with status 65: ..."
type ToolError struct {
	baseError
	Tool     string
	Args     []string
	ExitCode int
	Output   string
}

// NewToolError creates a new ToolError.
func NewToolError(tool string, args []string, exitCode int, output string, cause error) *ToolError {
	return &ToolError{
		baseError: baseError{
			message: "tool invocation failed",
			cause:   cause,
		},
		Tool:     tool,
		Args:     args,
		ExitCode: exitCode,
		Output:   output,
	}
}

// CommandLine returns the invoked command as a single string.
func (e *ToolError) CommandLine() string {
	if len(e.Args) == 0 {
		return e.Tool
	}
	return e.Tool + " " + strings.Join(e.Args, " ")
}

// Error returns the formatted error message.
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.CommandLine(), e.ExitCode)
	if e.ExitCode < 0 {
		msg = fmt.Sprintf("%s could not be started", e.CommandLine())
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Is matches other ToolErrors and ErrToolInvocationFailed.
func (e *ToolError) Is(target error) bool {
	if target == ErrToolInvocationFailed {
		return true
	}
	if _, ok := target.(*ToolError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// CapturedOutput returns the output of the first ToolError in err's chain.
func CapturedOutput(err error) (string, bool) {
	var toolErr *ToolError
	if As(err, &toolErr) {
		return toolErr.Output, true
	}
	return "", false
}

// ExitCode returns the exit status of the first ToolError in err's chain.
func ExitCode(err error) (int, bool) {
	var toolErr *ToolError
	if As(err, &toolErr) {
		return toolErr.ExitCode, true
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Git Errors
// -----------------------------------------------------------------------------

// GitError represents errors related to git operations.
//
// Example:
//
//	err := errors.NewGitError("failed to switch branch", toolErr)
//	err = err.WithBranch("feature-x").WithRepository("/path/to/repo")
type GitError struct {
	baseError
	Branch     string
	Repository string
	GitOutput  string // Captured git command output
}

// NewGitError creates a new GitError.
func NewGitError(message string, cause error) *GitError {
	return &GitError{
		baseError: baseError{
			message: message,
			cause:   cause,
		},
	}
}

// WithBranch adds a branch name to the error context.
func (e *GitError) WithBranch(branch string) *GitError {
	e.Branch = branch
	return e
}

// WithRepository adds a repository path to the error context.
func (e *GitError) WithRepository(path string) *GitError {
	e.Repository = path
	return e
}

// WithGitOutput adds git command output to the error context.
func (e *GitError) WithGitOutput(output string) *GitError {
	e.GitOutput = output
	return e
}

// Error returns the formatted error message.
func (e *GitError) Error() string {
	var parts []string
	if e.Branch != "" {
		parts = append(parts, fmt.Sprintf("branch=%s", e.Branch))
	}
	if e.Repository != "" {
		parts = append(parts, fmt.Sprintf("repo=%s", e.Repository))
	}

	prefix := "git error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("git error [%s]", strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.GitOutput != "" {
		msg = fmt.Sprintf("%s\ngit output: %s", msg, strings.TrimSpace(e.GitOutput))
	}

	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *GitError) Is(target error) bool {
	if _, ok := target.(*GitError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a named resource that could not be found. The
// sentinel passed as kind lets errors.Is match the taxonomy entry.
//
// Example:
//
//	err := errors.NewNotFoundError(errors.ErrProjectNotFound, "project", "App")
//	fmt.Println(err) // "project 'App' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind error, resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message: fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			cause:   kind,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	return e.message
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("sequence", "cbx", "unknown operation letter 'x'")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message: message,
			cause:   ErrInvalidInput,
		},
		Field: field,
		Value: value,
	}
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, fmt.Sprint(e.Value), e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}
