package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List configured projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				projects, err := a.loader.Load()
				if err != nil {
					return err
				}
				if len(projects) == 0 {
					fmt.Fprintln(a.out, "No projects configured")
					return nil
				}
				for _, p := range projects {
					renderProject(a.out, p)
				}
				return nil
			})
		},
	}
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands <project>",
		Short: "List a project's custom commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				p, err := a.findProject(args[0])
				if err != nil {
					return err
				}
				if len(p.CustomCommands) == 0 {
					fmt.Fprintf(a.out, "No custom commands for %s\n", p.Name)
					return nil
				}
				for _, cc := range p.CustomCommands {
					renderCustomCommand(a.out, cc)
				}
				return nil
			})
		},
	}
}
