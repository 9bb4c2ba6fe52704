// Package report writes diagnostic reports for failed builds and test runs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/devflow/internal/errors"
)

// Entry is the failure being reported.
type Entry struct {
	Operation string
	Project   string
	Err       error
	// Output is the captured tool output. When empty, output attached to
	// Err as a ToolError is used instead.
	Output string
}

// Writer persists a report and returns where it was written.
type Writer interface {
	Write(entry Entry) (string, error)
}

// FileWriter writes each report as a Markdown file with YAML front matter
// into Dir.
type FileWriter struct {
	Dir string
	now func() time.Time
}

// NewFileWriter creates a FileWriter rooted at dir.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{Dir: dir, now: time.Now}
}

// frontMatter is the machine-readable header of a report.
type frontMatter struct {
	Operation string `yaml:"operation"`
	Project   string `yaml:"project"`
	Time      string `yaml:"time"`
	Command   string `yaml:"command,omitempty"`
	ExitCode  *int   `yaml:"exit_code,omitempty"`
}

// Write renders entry to <Dir>/<project>-<operation>-<timestamp>.md.
func (w *FileWriter) Write(entry Entry) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	at := w.now()
	content, err := render(entry, at)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s-%s-%s", sanitize(entry.Project), sanitize(entry.Operation), at.Format("20060102-150405"))
	for attempt := 0; ; attempt++ {
		name := base + ".md"
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d.md", base, attempt)
		}
		path := filepath.Join(w.Dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create report: %w", err)
		}
		if _, err := f.Write(content); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		return path, nil
	}
}

func render(entry Entry, at time.Time) ([]byte, error) {
	fm := frontMatter{
		Operation: entry.Operation,
		Project:   entry.Project,
		Time:      at.Format(time.RFC3339),
	}
	var toolErr *errors.ToolError
	if errors.As(entry.Err, &toolErr) {
		fm.Command = toolErr.CommandLine()
		code := toolErr.ExitCode
		fm.ExitCode = &code
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report header: %w", err)
	}

	output := entry.Output
	if output == "" {
		output, _ = errors.CapturedOutput(entry.Err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s failed for %s\n\n", entry.Operation, entry.Project)
	b.WriteString("## Error\n\n")
	writeBlock(&b, errorText(entry.Err))
	if strings.TrimSpace(output) != "" {
		b.WriteString("\n## Output\n\n")
		writeBlock(&b, output)
	}
	return []byte(b.String()), nil
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func writeBlock(b *strings.Builder, text string) {
	b.WriteString("```\n")
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n```\n")
}

// sanitize keeps file names portable.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
