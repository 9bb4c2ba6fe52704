package cmd

import (
	"fmt"
	"io"

	"github.com/Iron-Ham/devflow/internal/chain"
	"github.com/Iron-Ham/devflow/internal/operation"
	"github.com/Iron-Ham/devflow/internal/project"
	"github.com/charmbracelet/lipgloss"
)

var (
	successColor = lipgloss.Color("#10B981") // Green
	failureColor = lipgloss.Color("#F87171") // Red
	cancelColor  = lipgloss.Color("#F59E0B") // Amber
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	accentColor  = lipgloss.Color("#A78BFA") // Purple

	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(failureColor).Bold(true)
	cancelStyle  = lipgloss.NewStyle().Foreground(cancelColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	titleStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	detailStyle  = lipgloss.NewStyle().PaddingLeft(4)
)

func statusMark(r operation.Result) string {
	switch r.Status {
	case operation.StatusSuccess:
		return successStyle.Render("✓")
	case operation.StatusFailure:
		return failureStyle.Render("✗")
	default:
		return cancelStyle.Render("-")
	}
}

func renderResult(w io.Writer, op project.Operation, r operation.Result) {
	label := titleStyle.Render(op.Kind.Title())
	switch r.Status {
	case operation.StatusSuccess:
		fmt.Fprintf(w, "%s %s: %s\n", statusMark(r), label, r.Message)
	case operation.StatusFailure:
		fmt.Fprintf(w, "%s %s: %s\n", statusMark(r), label, r.String())
		if r.ReportPath != "" {
			fmt.Fprintln(w, detailStyle.Render(mutedStyle.Render("report: "+r.ReportPath)))
		}
	default:
		fmt.Fprintf(w, "%s %s: %s\n", statusMark(r), label, cancelStyle.Render("cancelled"))
	}
}

// renderSteps prints each step and notes the operations a failure skipped.
func renderSteps(w io.Writer, steps []chain.Step, planned int) {
	for _, s := range steps {
		renderResult(w, s.Operation, s.Result)
	}
	if skipped := planned - len(steps); skipped > 0 && chain.Failed(steps) {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("skipped %d remaining operation(s)", skipped)))
	}
}

func renderProject(w io.Writer, p project.Project) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(p.Name), mutedStyle.Render(p.Path))
	cfg := p.Configuration
	details := []struct{ label, value string }{
		{"branch", cfg.DefaultBranch},
		{"scheme", cfg.DefaultScheme},
		{"test scheme", cfg.DefaultTestScheme},
		{"simulator", cfg.DefaultSimulator},
		{"save", string(cfg.EffectiveSavePreference())},
	}
	for _, d := range details {
		if d.value == "" {
			continue
		}
		fmt.Fprintln(w, detailStyle.Render(mutedStyle.Render(d.label+":")+" "+d.value))
	}
	if n := len(p.CustomCommands); n > 0 {
		fmt.Fprintln(w, detailStyle.Render(mutedStyle.Render("commands:")+fmt.Sprintf(" %d", n)))
	}
}

func renderCustomCommand(w io.Writer, cc project.CustomCommand) {
	var letters []rune
	for _, op := range cc.Operations {
		letters = append(letters, op.Kind.Letter())
	}
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(cc.Alias), mutedStyle.Render("("+string(letters)+")"))
	if cc.Description != "" {
		fmt.Fprintln(w, detailStyle.Render(cc.Description))
	}
	for _, op := range cc.Operations {
		fmt.Fprintln(w, detailStyle.Render(op.String()))
	}
}
