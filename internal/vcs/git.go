// Package vcs provides the version-control hygiene operations devflow runs
// against a project's working directory.
//
// This file provides the git CLI implementation of the Client interface
// defined in client.go. Every method takes the working directory explicitly
// so one Git value can serve any number of projects.
package vcs

import (
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/devflow/internal/errors"
	"github.com/Iron-Ham/devflow/internal/execx"
)

const (
	// DefaultStashNamespace prefixes named stashes: "<namespace>: <name>".
	DefaultStashNamespace = "devflow"

	// SaveCommitMessage marks commits created when saving work to a branch.
	SaveCommitMessage = "WIP: saved by devflow"
)

// Git implements Client using git CLI commands.
type Git struct {
	executor  execx.Executor
	namespace string
	now       func() time.Time
}

// Option configures a Git client.
type Option func(*Git)

// WithExecutor replaces the command executor.
// This is primarily useful for testing.
func WithExecutor(executor execx.Executor) Option {
	return func(g *Git) { g.executor = executor }
}

// WithStashNamespace sets the prefix used for named stashes.
func WithStashNamespace(namespace string) Option {
	return func(g *Git) {
		if namespace != "" {
			g.namespace = namespace
		}
	}
}

// WithClock replaces the time source used for generated stash messages.
func WithClock(now func() time.Time) Option {
	return func(g *Git) { g.now = now }
}

// NewGit creates a git client.
func NewGit(opts ...Option) *Git {
	g := &Git{
		executor:  execx.NewCLIExecutor(),
		namespace: DefaultStashNamespace,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Git) git(path string, args ...string) (string, error) {
	output, err := g.executor.Run(path, "git", args...)
	return string(output), err
}

// IsClean returns true if there are no staged, unstaged or untracked changes.
func (g *Git) IsClean(path string) (bool, error) {
	output, err := g.git(path, "status", "--porcelain")
	if err != nil {
		return false, errors.NewGitError("failed to check git status", err).
			WithRepository(path).
			WithGitOutput(output)
	}
	return strings.TrimSpace(output) == "", nil
}

// DiscardAll hard-resets tracked files and removes untracked files and
// directories. Callers are responsible for confirming first.
func (g *Git) DiscardAll(path string) error {
	if output, err := g.git(path, "reset", "--hard", "HEAD"); err != nil {
		return errors.NewGitError("failed to reset working tree", err).
			WithRepository(path).
			WithGitOutput(output)
	}
	if output, err := g.git(path, "clean", "-fd"); err != nil {
		return errors.NewGitError("failed to remove untracked files", err).
			WithRepository(path).
			WithGitOutput(output)
	}
	return nil
}

// Stash stashes all changes including untracked files. A blank message is
// replaced with a timestamped one.
func (g *Git) Stash(path, message string) error {
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("%s stash %s", g.namespace, g.now().Format(time.RFC3339))
	}
	output, err := g.git(path, "stash", "push", "--include-untracked", "-m", message)
	if err != nil {
		return errors.NewGitError("failed to stash changes", err).
			WithRepository(path).
			WithGitOutput(output)
	}
	return nil
}

// StashTag returns the description a named stash is created with.
func (g *Git) StashTag(name string) string {
	return fmt.Sprintf("%s: %s", g.namespace, name)
}

// StashNamed stashes all changes under a tag that PopStashNamed can find.
func (g *Git) StashNamed(path, name string) error {
	return g.Stash(path, g.StashTag(name))
}

// ListStashes returns stash descriptions, most recent first.
func (g *Git) ListStashes(path string) ([]string, error) {
	output, err := g.git(path, "stash", "list", "--format=%gs")
	if err != nil {
		return nil, errors.NewGitError("failed to list stashes", err).
			WithRepository(path).
			WithGitOutput(output)
	}

	trimmed := strings.TrimRight(output, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return []string{}, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// PopStashNamed pops the most recent stash whose description contains the
// tag for name. It returns false, without error, when no stash matches.
func (g *Git) PopStashNamed(path, name string) (bool, error) {
	stashes, err := g.ListStashes(path)
	if err != nil {
		return false, err
	}

	tag := g.StashTag(name)
	for i, description := range stashes {
		if !strings.Contains(description, tag) {
			continue
		}
		ref := fmt.Sprintf("stash@{%d}", i)
		if output, err := g.git(path, "stash", "pop", ref); err != nil {
			return false, errors.NewGitError("failed to pop stash "+ref, err).
				WithRepository(path).
				WithGitOutput(output)
		}
		return true, nil
	}
	return false, nil
}

// CreateBranch creates and checks out a new branch. When commitFirst is set,
// pending changes are committed before branching so they travel with it.
func (g *Git) CreateBranch(path, name string, commitFirst bool) error {
	if commitFirst {
		if output, err := g.git(path, "add", "-A"); err != nil {
			return errors.NewGitError("failed to stage changes", err).
				WithRepository(path).
				WithGitOutput(output)
		}
		if output, err := g.git(path, "commit", "-m", SaveCommitMessage); err != nil {
			if !strings.Contains(output, "nothing to commit") {
				return errors.NewGitError("failed to commit changes", err).
					WithRepository(path).
					WithGitOutput(output)
			}
		}
	}

	if output, err := g.git(path, "checkout", "-b", name); err != nil {
		return errors.NewGitError("failed to create branch", err).
			WithRepository(path).
			WithBranch(name).
			WithGitOutput(output)
	}
	return nil
}

// BranchExists reports whether a local branch exists. Any failure is
// treated as the branch not existing.
func (g *Git) BranchExists(path, name string) bool {
	_, err := g.git(path, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// CurrentBranch returns the checked-out branch name.
func (g *Git) CurrentBranch(path string) (string, error) {
	output, err := g.git(path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.NewGitError("failed to get current branch", err).
			WithRepository(path).
			WithGitOutput(output)
	}
	return strings.TrimSpace(output), nil
}

// SwitchBranch checks out an existing branch.
func (g *Git) SwitchBranch(path, name string) error {
	if output, err := g.git(path, "checkout", name); err != nil {
		return errors.NewGitError("failed to switch branch", err).
			WithRepository(path).
			WithBranch(name).
			WithGitOutput(output)
	}
	return nil
}

// Pull checks out branch if it is not current, then fast-forwards it from
// its origin counterpart.
func (g *Git) Pull(path, branch string) error {
	current, err := g.CurrentBranch(path)
	if err != nil {
		return err
	}
	if current != branch {
		if err := g.SwitchBranch(path, branch); err != nil {
			return err
		}
	}

	if output, err := g.git(path, "pull", "--ff-only", "origin", branch); err != nil {
		return errors.NewGitError("failed to pull", err).
			WithRepository(path).
			WithBranch(branch).
			WithGitOutput(output)
	}
	return nil
}
