// Package interaction defines the Port the engine uses to ask a human (or a
// script) for confirmations, free text and single choices, along with the
// front ends that implement it.
package interaction

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Option is a single choice offered by ChooseOne.
type Option struct {
	Label string // Display text
	Value string // Return value
}

// Options builds options whose label and value are the same string.
func Options(values ...string) []Option {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Label: v, Value: v}
	}
	return opts
}

// Port is the capability the engine calls whenever a decision cannot be made
// automatically. Every method may block until a response arrives. A false
// confirmation, an empty answer and an empty choice are all valid outcomes.
type Port interface {
	Confirm(question string) (bool, error)
	AskText(prompt string) (string, error)
	ChooseOne(prompt string, options []Option) (string, error)
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Detect picks the front end for the current process: AutoPort when
// assumeYes is set, HuhPort on a terminal, LinePort otherwise.
func Detect(in *os.File, out io.Writer, assumeYes bool) Port {
	if assumeYes {
		return AutoPort{AssumeYes: true}
	}
	if IsTerminal(in) {
		return HuhPort{}
	}
	return NewLinePort(in, out)
}
