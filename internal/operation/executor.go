// Package operation executes single operations against a project's working
// directory. Each kind inspects repository or toolchain state, asks the
// interaction port when it cannot decide alone, and reports a Result.
//
// No operation retries. A declined confirmation yields Cancelled; any error
// yields Failure.
package operation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/devflow/internal/buildtool"
	"github.com/Iron-Ham/devflow/internal/errors"
	"github.com/Iron-Ham/devflow/internal/interaction"
	"github.com/Iron-Ham/devflow/internal/logging"
	"github.com/Iron-Ham/devflow/internal/project"
	"github.com/Iron-Ham/devflow/internal/report"
	"github.com/Iron-Ham/devflow/internal/resolve"
	"github.com/Iron-Ham/devflow/internal/vcs"
)

// Executor runs operations using injected collaborators.
type Executor struct {
	vcs     vcs.Client
	build   buildtool.Client
	port    interaction.Port
	reports report.Writer
	logger  *logging.Logger
	now     func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReports sets where Build and Test failure reports are written. Without
// one no reports are written.
func WithReports(w report.Writer) Option {
	return func(e *Executor) {
		e.reports = w
	}
}

// WithClock overrides the time source used for generated branch names.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// NewExecutor creates an Executor.
func NewExecutor(v vcs.Client, b buildtool.Client, port interaction.Port, opts ...Option) *Executor {
	e := &Executor{
		vcs:    v,
		build:  b,
		port:   port,
		logger: logging.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs op against ws and returns its outcome.
func (e *Executor) Execute(ws project.Workspace, op project.Operation) Result {
	logger := e.logger.WithProject(ws.Project.Name).WithOperation(op.Kind.String())
	logger.Info("operation started", "dir", ws.Dir, "parameters", op.Parameters)

	var result Result
	switch op.Kind {
	case project.CleanSlate:
		result = e.cleanSlate(ws)
	case project.Save:
		result = e.save(ws)
	case project.Update:
		result = e.update(ws)
	case project.Build:
		result = e.buildOp(ws, op, logger)
	case project.Test:
		result = e.test(ws, op, logger)
	case project.Run:
		result = e.run(ws, op, logger)
	case project.Reset:
		result = e.reset(ws, logger)
	default:
		result = Failure(errors.NewValidationError("operation", op.Kind.String(), "unsupported operation"))
	}

	switch result.Status {
	case StatusFailure:
		logger.Error("operation failed", "error", result.Err, "report", result.ReportPath)
	default:
		logger.Info("operation finished", "status", result.Status.String(), "message", result.Message)
	}
	return result
}

func (e *Executor) cleanSlate(ws project.Workspace) Result {
	clean, err := e.vcs.IsClean(ws.Dir)
	if err != nil {
		return Failure(err)
	}
	if clean {
		return Success("Working tree already clean")
	}

	ok, err := e.port.Confirm(fmt.Sprintf("Discard all uncommitted changes in %s? This cannot be undone.", ws.Project.Name))
	if err != nil {
		return Failure(err)
	}
	if !ok {
		return Cancelled()
	}
	if err := e.vcs.DiscardAll(ws.Dir); err != nil {
		return Failure(err)
	}
	return Success("Discarded all uncommitted changes")
}

func (e *Executor) save(ws project.Workspace) Result {
	clean, err := e.vcs.IsClean(ws.Dir)
	if err != nil {
		return Failure(err)
	}
	if clean {
		return Success("Nothing to save")
	}

	if ws.Project.Configuration.EffectiveSavePreference() == project.SaveBranch {
		return e.saveToBranch(ws)
	}

	message, err := e.port.AskText("Stash message (optional)")
	if err != nil {
		return Failure(err)
	}
	if err := e.vcs.Stash(ws.Dir, strings.TrimSpace(message)); err != nil {
		return Failure(err)
	}
	return Success("Stashed uncommitted changes")
}

func (e *Executor) saveToBranch(ws project.Workspace) Result {
	original, err := e.vcs.CurrentBranch(ws.Dir)
	if err != nil {
		return Failure(err)
	}

	name, err := e.port.AskText("Branch name for saved changes (blank for a generated name)")
	if err != nil {
		return Failure(err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "wip/" + e.now().Format("20060102-150405")
	}

	if err := e.vcs.CreateBranch(ws.Dir, name, true); err != nil {
		return Failure(err)
	}
	if err := e.vcs.SwitchBranch(ws.Dir, original); err != nil {
		return Failure(fmt.Errorf("saved to %s but could not switch back to %s: %w", name, original, err))
	}
	return Success(fmt.Sprintf("Saved changes to branch %s", name))
}

func (e *Executor) update(ws project.Workspace) Result {
	clean, err := e.vcs.IsClean(ws.Dir)
	if err != nil {
		return Failure(err)
	}
	if !clean {
		saveFirst, err := e.port.Confirm("You have uncommitted changes. Save them before updating?")
		if err != nil {
			return Failure(err)
		}
		// Declining still updates the dirty tree.
		if saveFirst {
			if r := e.save(ws); r.Failed() {
				return r
			}
		}
	}

	branch := ws.Project.Configuration.DefaultBranch
	if err := e.vcs.Pull(ws.Dir, branch); err != nil {
		return Failure(err)
	}
	return Success(fmt.Sprintf("Updated %s", branch))
}

// targets discovers the build unit and lists its schemes.
func (e *Executor) targets(ws project.Workspace) ([]string, error) {
	if _, err := e.build.DiscoverBuildUnit(ws.Dir); err != nil {
		return nil, err
	}
	schemes, err := e.build.ListTargets(ws.Dir)
	if err != nil {
		return nil, err
	}
	if len(schemes) == 0 {
		return nil, errors.ErrNoSchemesFound
	}
	return schemes, nil
}

func (e *Executor) buildTarget(ws project.Workspace, op project.Operation) (string, error) {
	schemes, err := e.targets(ws)
	if err != nil {
		return "", err
	}
	param, _ := op.Param(project.ParamScheme)
	return resolve.Target(resolve.Request{
		Prompt:     "Select a scheme",
		Param:      param,
		Default:    ws.Project.Configuration.DefaultScheme,
		Candidates: schemes,
	}, e.port)
}

func (e *Executor) buildOp(ws project.Workspace, op project.Operation, logger *logging.Logger) Result {
	target, err := e.buildTarget(ws, op)
	if err != nil {
		return Failure(err)
	}
	verbose, err := e.port.Confirm("Show full build output?")
	if err != nil {
		return Failure(err)
	}

	logger.Info("building", "scheme", target, "verbose", verbose)
	output, err := e.build.Build(ws.Dir, target, verbose)
	if err != nil {
		return e.reportFailure(ws, project.Build, fmt.Errorf("build %s: %w", target, err), output, logger)
	}
	return Success(fmt.Sprintf("Built %s", target))
}

func (e *Executor) test(ws project.Workspace, op project.Operation, logger *logging.Logger) Result {
	schemes, err := e.targets(ws)
	if err != nil {
		return Failure(err)
	}

	cfg := ws.Project.Configuration
	def := cfg.DefaultTestScheme
	if def == "" {
		def = cfg.DefaultScheme
	}
	param, _ := op.Param(project.ParamScheme)
	target, err := resolve.TestTarget(resolve.Request{
		Prompt:     "Select a test scheme",
		Param:      param,
		Default:    def,
		Candidates: schemes,
	}, e.port)
	if err != nil {
		return Failure(err)
	}

	logger.Info("testing", "scheme", target)
	output, err := e.build.Test(ws.Dir, target)
	if err != nil {
		return e.reportFailure(ws, project.Test, fmt.Errorf("test %s: %w", target, err), output, logger)
	}
	return Success(fmt.Sprintf("Tests passed for %s", target))
}

// reportFailure writes a report for a failed build or test. A report that
// cannot be written is logged and the original failure returned unchanged.
func (e *Executor) reportFailure(ws project.Workspace, kind project.Kind, cause error, output string, logger *logging.Logger) Result {
	result := Failure(cause)
	if e.reports == nil {
		return result
	}

	path, err := e.reports.Write(report.Entry{
		Operation: kind.String(),
		Project:   ws.Project.Name,
		Err:       cause,
		Output:    output,
	})
	if err != nil {
		logger.Warn("failed to write report", "error", err)
		return result
	}
	result.ReportPath = path
	return result
}

func (e *Executor) run(ws project.Workspace, op project.Operation, logger *logging.Logger) Result {
	target, err := e.buildTarget(ws, op)
	if err != nil {
		return Failure(err)
	}

	available, err := e.build.ListRunTargets()
	if err != nil {
		return Failure(err)
	}
	param, _ := op.Param(project.ParamSimulator)
	rt, err := resolve.RunTarget(param, ws.Project.Configuration.DefaultSimulator, available, e.port)
	if err != nil && !errors.Is(err, errors.ErrNoCandidatesAvailable) {
		return Failure(err)
	}

	var id, on string
	if rt != nil {
		id, on = rt.ID, rt.Name
	} else {
		on = "the fallback simulator"
	}

	logger.Info("running", "scheme", target, "run_target", id)
	if err := e.build.Run(ws.Dir, target, id); err != nil {
		return Failure(fmt.Errorf("run %s: %w", target, err))
	}
	return Success(fmt.Sprintf("Launched %s on %s", target, on))
}

func (e *Executor) reset(ws project.Workspace, logger *logging.Logger) Result {
	ok, err := e.port.Confirm(fmt.Sprintf(
		"Reset %s? This cleans build products, deletes Xcode's DerivedData for every project, and reinstalls dependencies.",
		ws.Project.Name))
	if err != nil {
		return Failure(err)
	}
	if !ok {
		return Cancelled()
	}

	if err := e.build.Clean(ws.Dir); err != nil {
		return Failure(err)
	}
	if err := e.build.PurgeCaches(); err != nil {
		return Failure(err)
	}
	installs, err := e.build.InstallDependencies(ws.Dir)
	if err != nil {
		return Failure(err)
	}

	tools := make([]string, len(installs))
	for i, in := range installs {
		tools[i] = in.Tool
	}
	logger.Info("dependencies reinstalled", "tools", tools)
	if len(tools) == 0 {
		return Success("Reset complete")
	}
	return Success(fmt.Sprintf("Reset complete; reinstalled dependencies with %s", strings.Join(tools, ", ")))
}
