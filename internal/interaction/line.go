package interaction

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LinePort implements Port with plain line-oriented prompts. It is used
// when stdin is not a terminal, e.g. piped answers in CI.
type LinePort struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewLinePort creates a LinePort reading answers from in and writing prompts to out.
func NewLinePort(in io.Reader, out io.Writer) *LinePort {
	return &LinePort{reader: bufio.NewReader(in), out: out}
}

func (p *LinePort) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm accepts "y" or "yes", case-insensitively. Anything else, including
// end of input, declines.
func (p *LinePort) Confirm(question string) (bool, error) {
	_, _ = fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(line)
	return answer == "y" || answer == "yes", nil
}

// AskText returns the trimmed line, or "" at end of input.
func (p *LinePort) AskText(prompt string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "%s: ", prompt)
	return p.readLine()
}

// ChooseOne prints a numbered menu and accepts a number or an exact label.
// A blank or unrecognized answer is no choice.
func (p *LinePort) ChooseOne(prompt string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", nil
	}

	_, _ = fmt.Fprintln(p.out, prompt)
	for i, opt := range options {
		_, _ = fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt.Label)
	}
	_, _ = fmt.Fprint(p.out, "> ")

	line, err := p.readLine()
	if err != nil || line == "" {
		return "", err
	}
	if n, err := strconv.Atoi(line); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1].Value, nil
		}
		return "", nil
	}
	for _, opt := range options {
		if opt.Label == line || opt.Value == line {
			return opt.Value, nil
		}
	}
	return "", nil
}
