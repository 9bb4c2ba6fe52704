// Package resolve picks a concrete build target, test target or run target
// when the caller has not named one unambiguously.
//
// The precedence is always the same: an explicit parameter, then the
// project's configured default, then an interactive choice, then a
// deterministic fallback.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/devflow/internal/buildtool"
	"github.com/Iron-Ham/devflow/internal/errors"
	"github.com/Iron-Ham/devflow/internal/interaction"
)

// Request describes one target resolution.
type Request struct {
	// Prompt is shown when the user has to choose.
	Prompt string
	// Param is the explicit operation parameter, empty when unset.
	Param string
	// Default is the project's configured default, empty when unset.
	Default string
	// Candidates are the valid target names in tool order.
	Candidates []string
}

// Target resolves a build target. With no usable parameter or default it
// asks the port, and falls back to the first candidate when no choice is
// made.
func Target(req Request, port interaction.Port) (string, error) {
	return resolve(req, req.Candidates, port)
}

// TestTarget resolves a test target among the candidates whose name contains
// "test" in any case, or among all of them when none do. A parameter or
// default outside that set is ignored.
func TestTarget(req Request, port interaction.Port) (string, error) {
	return resolve(req, testCandidates(req.Candidates), port)
}

func testCandidates(candidates []string) []string {
	var filtered []string
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), "test") {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

func resolve(req Request, choices []string, port interaction.Port) (string, error) {
	if len(req.Candidates) == 0 {
		return "", errors.ErrNoCandidatesAvailable
	}
	if req.Param != "" && slices.Contains(choices, req.Param) {
		return req.Param, nil
	}
	if req.Default != "" && slices.Contains(choices, req.Default) {
		return req.Default, nil
	}
	if len(choices) == 1 {
		return choices[0], nil
	}

	choice, err := port.ChooseOne(req.Prompt, interaction.Options(choices...))
	if err != nil {
		return "", fmt.Errorf("choose target: %w", err)
	}
	if slices.Contains(choices, choice) {
		return choice, nil
	}
	return choices[0], nil
}

// RunTarget resolves the simulator to launch on. An explicit parameter must
// match a target name exactly; the default matches the first target whose
// name contains it. Otherwise the user chooses among booted or shutdown
// targets. A nil target with a nil error means "no run target".
func RunTarget(param, def string, targets []buildtool.RunTarget, port interaction.Port) (*buildtool.RunTarget, error) {
	if len(targets) == 0 {
		return nil, errors.ErrNoCandidatesAvailable
	}
	if param != "" {
		if i := slices.IndexFunc(targets, func(rt buildtool.RunTarget) bool { return rt.Name == param }); i >= 0 {
			return &targets[i], nil
		}
	}
	if def != "" {
		if i := slices.IndexFunc(targets, func(rt buildtool.RunTarget) bool { return strings.Contains(rt.Name, def) }); i >= 0 {
			return &targets[i], nil
		}
	}

	var usable []buildtool.RunTarget
	for _, rt := range targets {
		if rt.Usable() {
			usable = append(usable, rt)
		}
	}
	if len(usable) == 0 {
		return nil, nil
	}

	options := make([]interaction.Option, len(usable))
	for i, rt := range usable {
		options[i] = interaction.Option{Label: runTargetLabel(rt), Value: rt.ID}
	}
	id, err := port.ChooseOne("Select a simulator", options)
	if err != nil {
		return nil, fmt.Errorf("choose run target: %w", err)
	}
	for i := range usable {
		if usable[i].ID == id {
			return &usable[i], nil
		}
	}
	return nil, nil
}

func runTargetLabel(rt buildtool.RunTarget) string {
	if rt.Platform == "" {
		return fmt.Sprintf("%s (%s)", rt.Name, rt.State)
	}
	return fmt.Sprintf("%s (%s, %s)", rt.Name, rt.Platform, rt.State)
}
