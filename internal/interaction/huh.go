package interaction

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

var runConfirmPrompt = func(title string, confirmed *bool) error {
	return huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(confirmed).
		Run()
}

var runInputPrompt = func(title string, input *string) error {
	return huh.NewInput().
		Title(title).
		Value(input).
		Run()
}

var runSelectPrompt = func(title string, options []huh.Option[string], selected *string) error {
	return huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(selected).
		Run()
}

// HuhPort implements Port with the huh terminal form library. Aborting a
// prompt (ctrl+c) counts as declining, not as an error.
type HuhPort struct{}

// Confirm asks a yes/no question.
func (HuhPort) Confirm(question string) (bool, error) {
	var confirmed bool
	if err := runConfirmPrompt(question, &confirmed); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("prompt confirm: %w", err)
	}
	return confirmed, nil
}

// AskText asks for free text; an aborted prompt yields "".
func (HuhPort) AskText(prompt string) (string, error) {
	var input string
	if err := runInputPrompt(prompt, &input); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("prompt input: %w", err)
	}
	return input, nil
}

// ChooseOne shows a selection menu; an aborted prompt yields "".
func (HuhPort) ChooseOne(prompt string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", nil
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt.Label, opt.Value)
	}

	var selected string
	if err := runSelectPrompt(prompt, huhOptions, &selected); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("prompt select: %w", err)
	}
	return selected, nil
}
