// Package project holds the static description of the projects devflow
// operates on: their working directories, defaults, and custom command
// chains, plus the loader that reads them from the projects file.
//
// Everything in this package is immutable once loaded and read-only for the
// life of a command invocation.
package project

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/devflow/internal/errors"
)

// Kind is the closed set of operations the engine knows how to execute.
type Kind int

const (
	CleanSlate Kind = iota
	Save
	Update
	Build
	Test
	Run
	Reset
)

type kindInfo struct {
	name   string
	letter rune
	title  string
}

var kinds = []kindInfo{
	CleanSlate: {name: "cleanSlate", letter: 'c', title: "Clean Slate"},
	Save:       {name: "save", letter: 's', title: "Save"},
	Update:     {name: "update", letter: 'u', title: "Update"},
	Build:      {name: "build", letter: 'b', title: "Build"},
	Test:       {name: "test", letter: 't', title: "Test"},
	Run:        {name: "run", letter: 'r', title: "Run"},
	Reset:      {name: "reset", letter: 'e', title: "Reset"},
}

// Kinds returns every operation kind in declaration order.
func Kinds() []Kind {
	all := make([]Kind, len(kinds))
	for i := range kinds {
		all[i] = Kind(i)
	}
	return all
}

func (k Kind) valid() bool {
	return k >= 0 && int(k) < len(kinds)
}

// String returns the name used in the projects file.
func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// Letter returns the one-letter shorthand used in sequence notation.
func (k Kind) Letter() rune {
	if !k.valid() {
		return '?'
	}
	return kinds[k].letter
}

// Title returns a human-readable name.
func (k Kind) Title() string {
	if !k.valid() {
		return k.String()
	}
	return kinds[k].title
}

// ParseKind converts a projects-file name (case-insensitive) to a Kind.
func ParseKind(name string) (Kind, error) {
	for i, info := range kinds {
		if strings.EqualFold(info.name, name) {
			return Kind(i), nil
		}
	}
	return 0, errors.NewValidationError("operation type", name, "unknown operation")
}

// KindForLetter maps a sequence letter to its Kind.
func KindForLetter(letter rune) (Kind, bool) {
	for i, info := range kinds {
		if info.letter == letter {
			return Kind(i), true
		}
	}
	return 0, false
}

// Recognized operation parameter names.
const (
	ParamScheme    = "scheme"
	ParamSimulator = "simulator"
)

// Operation is one step: a kind plus optional string parameters. Parameters
// is nil rather than empty when no parameters are set.
type Operation struct {
	Kind       Kind
	Parameters map[string]string
}

// NewOperation creates an Operation, normalizing an empty map to nil.
func NewOperation(kind Kind, params map[string]string) Operation {
	if len(params) == 0 {
		params = nil
	}
	return Operation{Kind: kind, Parameters: params}
}

// Param returns the named parameter and whether it was set.
func (o Operation) Param(name string) (string, bool) {
	v, ok := o.Parameters[name]
	return v, ok
}

// String renders the operation for logs, e.g. "build(scheme=App)".
func (o Operation) String() string {
	if len(o.Parameters) == 0 {
		return o.Kind.String()
	}
	parts := make([]string, 0, len(o.Parameters))
	for _, key := range []string{ParamScheme, ParamSimulator} {
		if v, ok := o.Parameters[key]; ok {
			parts = append(parts, key+"="+v)
		}
	}
	var extra []string
	for key := range o.Parameters {
		if key != ParamScheme && key != ParamSimulator {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	for _, key := range extra {
		parts = append(parts, key+"="+o.Parameters[key])
	}
	return fmt.Sprintf("%s(%s)", o.Kind, strings.Join(parts, ","))
}

// SavePreference decides how uncommitted work is preserved by Save.
type SavePreference string

const (
	SaveStash  SavePreference = "stash"
	SaveBranch SavePreference = "branch"
)

// Configuration is a project's defaults.
type Configuration struct {
	DefaultBranch     string
	DefaultScheme     string
	DefaultTestScheme string
	DefaultSimulator  string
	SavePreference    SavePreference
}

// EffectiveSavePreference returns the configured preference, stash when unset.
func (c Configuration) EffectiveSavePreference() SavePreference {
	if c.SavePreference == "" {
		return SaveStash
	}
	return c.SavePreference
}

// CustomCommand is a named, non-empty chain of operations.
type CustomCommand struct {
	Alias       string
	Description string
	Operations  []Operation
}

// Project is a named working directory with its configuration.
type Project struct {
	Name           string
	Path           string
	RepositoryURL  string
	Configuration  Configuration
	CustomCommands []CustomCommand
}

// CustomCommand looks up a custom command by alias.
func (p Project) CustomCommand(alias string) (CustomCommand, error) {
	for _, cc := range p.CustomCommands {
		if cc.Alias == alias {
			return cc, nil
		}
	}
	return CustomCommand{}, errors.NewNotFoundError(errors.ErrCustomCommandNotFound, "custom command", alias)
}

// Find returns the project with the given name.
func Find(projects []Project, name string) (Project, error) {
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}
	return Project{}, errors.NewNotFoundError(errors.ErrProjectNotFound, "project", name)
}
