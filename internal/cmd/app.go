package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Iron-Ham/devflow/internal/buildtool"
	"github.com/Iron-Ham/devflow/internal/chain"
	"github.com/Iron-Ham/devflow/internal/changeset"
	"github.com/Iron-Ham/devflow/internal/config"
	"github.com/Iron-Ham/devflow/internal/errors"
	"github.com/Iron-Ham/devflow/internal/interaction"
	"github.com/Iron-Ham/devflow/internal/logging"
	"github.com/Iron-Ham/devflow/internal/operation"
	"github.com/Iron-Ham/devflow/internal/project"
	"github.com/Iron-Ham/devflow/internal/report"
	"github.com/Iron-Ham/devflow/internal/vcs"
	"github.com/spf13/cobra"
)

// app is the wiring shared by every command for one invocation.
type app struct {
	loader  project.Loader
	env     project.PathEnv
	vcs     vcs.Client
	build   buildtool.Client
	port    interaction.Port
	reports report.Writer
	logger  *logging.Logger
	out     io.Writer
}

// newApp builds the wiring from the loaded configuration. Tests replace it.
var newApp = defaultApp

func defaultApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(cfg.LogDir(), cfg.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	env, err := project.CurrentPathEnv()
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &app{
		loader: project.NewFileLoader(cfg.ProjectsPath()),
		env:    env,
		vcs:    vcs.NewGit(vcs.WithStashNamespace(cfg.Stash.Namespace)),
		build: buildtool.NewXcode(
			buildtool.WithFallbackSimulator(cfg.Build.FallbackSimulator),
			buildtool.WithOutput(out),
		),
		port:    interaction.Detect(os.Stdin, cmd.ErrOrStderr(), cfg.Interaction.AssumeYes),
		reports: report.NewFileWriter(cfg.ReportDir()),
		logger:  logger.WithCommand(cmd.CommandPath()),
		out:     out,
	}, nil
}

// withApp builds the wiring, runs fn and closes the logger.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Close() }()

	if err := fn(a); err != nil {
		if errors.IsPrecondition(err) {
			a.logger.Warn("precondition not met", "error", err)
		} else {
			a.logger.Error("command failed", "error", err)
		}
		return err
	}
	return nil
}

func (a *app) findProject(name string) (project.Project, error) {
	projects, err := a.loader.Load()
	if err != nil {
		return project.Project{}, err
	}
	return project.Find(projects, name)
}

// workspace loads the named project and resolves its working directory.
func (a *app) workspace(name string) (project.Workspace, error) {
	p, err := a.findProject(name)
	if err != nil {
		return project.Workspace{}, err
	}
	return project.Open(p, a.env)
}

func (a *app) executor() *operation.Executor {
	return operation.NewExecutor(a.vcs, a.build, a.port,
		operation.WithLogger(a.logger),
		operation.WithReports(a.reports),
	)
}

func (a *app) runner() *chain.Runner {
	return chain.NewRunner(a.executor(), a.logger)
}

func (a *app) changesets() *changeset.Manager {
	return changeset.NewManager(a.vcs, a.logger)
}
