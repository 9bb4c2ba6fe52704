// Package execx runs external command-line tools in a working directory and
// converts non-zero exits into errors.ToolError values carrying the exit
// status and the captured output.
package execx

import (
	"bytes"
	"io"
	"os/exec"

	"github.com/Iron-Ham/devflow/internal/errors"
)

// Executor abstracts command execution for testability.
// This allows tests to script tool responses without executing them.
type Executor interface {
	// Run executes a command and returns combined output.
	Run(dir string, name string, args ...string) ([]byte, error)

	// Stream executes a command, copying combined output to w as it is
	// produced, and also returns it.
	Stream(dir string, w io.Writer, name string, args ...string) ([]byte, error)
}

// CLIExecutor executes commands using os/exec. No timeout is applied;
// commands run to their own completion.
type CLIExecutor struct {
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// NewCLIExecutor creates a new CLI command executor.
func NewCLIExecutor() *CLIExecutor {
	return &CLIExecutor{}
}

// Run executes a command and returns combined output.
func (e *CLIExecutor) Run(dir string, name string, args ...string) ([]byte, error) {
	return e.Stream(dir, nil, name, args...)
}

// Stream executes a command and tees combined output into w when w is non-nil.
func (e *CLIExecutor) Stream(dir string, w io.Writer, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if e.Env != nil {
		cmd.Env = e.Env
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if w != nil {
		out = io.MultiWriter(&buf, w)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		return buf.Bytes(), toolError(name, args, buf.Bytes(), err)
	}
	return buf.Bytes(), nil
}

func toolError(name string, args []string, output []byte, err error) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return errors.NewToolError(name, args, exitCode, string(output), err)
}
