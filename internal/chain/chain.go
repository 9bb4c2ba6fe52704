// Package chain runs ordered lists of operations against one project, either
// from compact letter notation ("cbtr") or from a project's custom commands.
package chain

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/devflow/internal/errors"
	"github.com/Iron-Ham/devflow/internal/logging"
	"github.com/Iron-Ham/devflow/internal/operation"
	"github.com/Iron-Ham/devflow/internal/project"
)

// Executor runs a single operation.
type Executor interface {
	Execute(ws project.Workspace, op project.Operation) operation.Result
}

// Step is one executed operation and its result.
type Step struct {
	Operation project.Operation
	Result    operation.Result
}

// ParseSequence expands letter notation into operations, e.g. "cbtr" into
// CleanSlate, Build, Test, Run. Whitespace is ignored.
func ParseSequence(sequence string) ([]project.Operation, error) {
	var ops []project.Operation
	for _, r := range strings.ToLower(sequence) {
		if r == ' ' || r == '\t' || r == ',' {
			continue
		}
		kind, ok := project.KindForLetter(r)
		if !ok {
			return nil, errors.NewValidationError("sequence", sequence, fmt.Sprintf("unknown operation letter %q (valid: %s)", r, Letters()))
		}
		ops = append(ops, project.NewOperation(kind, nil))
	}
	if len(ops) == 0 {
		return nil, errors.NewValidationError("sequence", sequence, "no operations given")
	}
	return ops, nil
}

// Letters returns every valid sequence letter in kind order.
func Letters() string {
	var b strings.Builder
	for _, k := range project.Kinds() {
		b.WriteRune(k.Letter())
	}
	return b.String()
}

// Runner executes chains.
type Runner struct {
	executor Executor
	logger   *logging.Logger
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(executor Executor, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Runner{executor: executor, logger: logger}
}

// Run executes ops in order and returns every step that ran. It stops after
// the first Failure; Cancelled steps do not stop the chain.
func (r *Runner) Run(ws project.Workspace, ops []project.Operation) []Step {
	logger := r.logger.WithProject(ws.Project.Name)
	steps := make([]Step, 0, len(ops))
	for i, op := range ops {
		result := r.executor.Execute(ws, op)
		steps = append(steps, Step{Operation: op, Result: result})
		if result.Failed() {
			logger.Warn("chain halted", "step", i+1, "of", len(ops), "operation", op.String())
			break
		}
	}
	return steps
}

// RunCustom looks up alias in the workspace project and runs its operations.
func (r *Runner) RunCustom(ws project.Workspace, alias string) ([]Step, error) {
	cc, err := ws.Project.CustomCommand(alias)
	if err != nil {
		return nil, err
	}
	r.logger.WithProject(ws.Project.Name).Info("running custom command", "alias", alias, "steps", len(cc.Operations))
	return r.Run(ws, cc.Operations), nil
}

// Failed reports whether any step failed.
func Failed(steps []Step) bool {
	for _, s := range steps {
		if s.Result.Failed() {
			return true
		}
	}
	return false
}
