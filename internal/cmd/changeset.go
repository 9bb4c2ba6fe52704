package cmd

import (
	"fmt"
	"io"

	"github.com/Iron-Ham/devflow/internal/changeset"
	"github.com/spf13/cobra"
)

func newChangesetCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "changeset",
		Short: "Park and resume units of work on changeset branches",
		Long: `Each changeset lives on a branch named changeset/<id>. Switching stashes
uncommitted work under the name of the branch it was made on, and resuming a
changeset restores the work stashed from its branch.`,
	}

	c.AddCommand(&cobra.Command{
		Use:   "start <project> <id>",
		Short: "Switch to a changeset, creating its branch if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				ws, err := a.workspace(args[0])
				if err != nil {
					return err
				}
				out, err := a.changesets().StartFresh(ws.Dir, args[1])
				if err != nil {
					return err
				}
				renderOutcome(a.out, out)
				return nil
			})
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "resume <project> <id>",
		Short: "Switch to an existing changeset and restore its stashed work",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				ws, err := a.workspace(args[0])
				if err != nil {
					return err
				}
				out, err := a.changesets().Resume(ws.Dir, args[1])
				if err != nil {
					// The tree is stashed before the changeset is looked up.
					if out.StashedFrom != "" {
						fmt.Fprintln(a.out, mutedStyle.Render("stashed uncommitted work from "+out.StashedFrom))
					}
					return err
				}
				renderOutcome(a.out, out)
				return nil
			})
		},
	})
	return c
}

func renderOutcome(w io.Writer, out changeset.Outcome) {
	verb := "Switched to"
	if out.Created {
		verb = "Created"
	}
	fmt.Fprintf(w, "%s %s %s\n", successStyle.Render("✓"), verb, titleStyle.Render(out.Branch))
	if out.StashedFrom != "" {
		fmt.Fprintln(w, detailStyle.Render(mutedStyle.Render("stashed uncommitted work from "+out.StashedFrom)))
	}
	if out.Restored {
		fmt.Fprintln(w, detailStyle.Render("restored stashed work"))
	}
}
