package cmd

import (
	"fmt"

	"github.com/Iron-Ham/devflow/internal/chain"
	"github.com/Iron-Ham/devflow/internal/project"
	"github.com/spf13/cobra"
)

var operationHelp = map[project.Kind]string{
	project.CleanSlate: "Discard all uncommitted changes after confirmation",
	project.Save:       "Preserve uncommitted work as a stash or a branch",
	project.Update:     "Pull the default branch, offering to save local changes first",
	project.Build:      "Build a scheme",
	project.Test:       "Run a test scheme",
	project.Run:        "Build and launch the app on a simulator",
	project.Reset:      "Clean build products, purge caches and reinstall dependencies",
}

// commandName is the subcommand used for kind; cleanSlate is shortened.
func commandName(kind project.Kind) string {
	if kind == project.CleanSlate {
		return "clean"
	}
	return kind.String()
}

func newOperationCmd(kind project.Kind) *cobra.Command {
	var scheme, simulator string

	c := &cobra.Command{
		Use:   commandName(kind) + " <project>",
		Short: operationHelp[kind],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]string{}
			if scheme != "" {
				params[project.ParamScheme] = scheme
			}
			if simulator != "" {
				params[project.ParamSimulator] = simulator
			}
			op := project.NewOperation(kind, params)

			return withApp(cmd, func(a *app) error {
				ws, err := a.workspace(args[0])
				if err != nil {
					return err
				}
				result := a.executor().Execute(ws, op)
				renderResult(a.out, op, result)
				if result.Failed() {
					return fmt.Errorf("%s failed for %s", kind, ws.Project.Name)
				}
				return nil
			})
		},
	}
	if kind == project.CleanSlate {
		c.Aliases = []string{kind.String()}
	}

	switch kind {
	case project.Build, project.Test, project.Run:
		c.Flags().StringVarP(&scheme, "scheme", "s", "", "scheme to use instead of the project default")
	}
	if kind == project.Run {
		c.Flags().StringVar(&simulator, "simulator", "", "simulator name to run on")
	}
	return c
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <project> <sequence>",
		Short: "Run a sequence of operations given as letters",
		Long: fmt.Sprintf(`Run operations in order, one letter each (%s):

  c  clean slate    s  save     u  update    b  build
  t  test           r  run      e  reset

The sequence stops at the first failed operation. A cancelled operation
does not stop it. Example: devflow exec MyApp cbtr`, chain.Letters()),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := chain.ParseSequence(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app) error {
				ws, err := a.workspace(args[0])
				if err != nil {
					return err
				}
				steps := a.runner().Run(ws, ops)
				renderSteps(a.out, steps, len(ops))
				if chain.Failed(steps) {
					return fmt.Errorf("sequence %q failed for %s", args[1], ws.Project.Name)
				}
				return nil
			})
		},
	}
}

func newDoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "do <project> <alias>",
		Short: "Run one of a project's custom commands",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				ws, err := a.workspace(args[0])
				if err != nil {
					return err
				}
				cc, err := ws.Project.CustomCommand(args[1])
				if err != nil {
					return err
				}
				steps, err := a.runner().RunCustom(ws, cc.Alias)
				if err != nil {
					return err
				}
				renderSteps(a.out, steps, len(cc.Operations))
				if chain.Failed(steps) {
					return fmt.Errorf("custom command %q failed for %s", cc.Alias, ws.Project.Name)
				}
				return nil
			})
		},
	}
}
