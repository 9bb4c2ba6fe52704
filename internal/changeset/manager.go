// Package changeset parks and resumes independent units of work. Each
// changeset owns a branch named changeset/<id>; uncommitted work found when
// switching is stashed under a name tag.
package changeset

import (
	"strings"

	"github.com/Iron-Ham/devflow/internal/errors"
	"github.com/Iron-Ham/devflow/internal/logging"
	"github.com/Iron-Ham/devflow/internal/vcs"
)

// BranchPrefix is prepended to changeset ids to form branch names.
const BranchPrefix = "changeset/"

// BranchName returns the branch for id.
func BranchName(id string) string {
	return BranchPrefix + id
}

// Manager switches between changesets in one repository.
type Manager struct {
	vcs    vcs.Client
	logger *logging.Logger
}

// NewManager creates a Manager. A nil logger discards output.
func NewManager(client vcs.Client, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Manager{vcs: client, logger: logger}
}

// Outcome describes what a transition did.
type Outcome struct {
	Branch string
	// StashedFrom is the branch whose dirty tree was stashed, empty when the
	// tree was clean.
	StashedFrom string
	// Created is set when StartFresh created the branch.
	Created bool
	// Restored is set when Resume popped a stash for the changeset.
	Restored bool
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, " \t\r\n~^:?*[\\") {
		return errors.NewValidationError("changeset id", id, "must be a non-empty branch-safe name")
	}
	return nil
}

// stashIfDirty stashes uncommitted work tagged with the current branch name.
func (m *Manager) stashIfDirty(dir string) (string, error) {
	clean, err := m.vcs.IsClean(dir)
	if err != nil {
		return "", err
	}
	if clean {
		return "", nil
	}
	current, err := m.vcs.CurrentBranch(dir)
	if err != nil {
		return "", err
	}
	if err := m.vcs.StashNamed(dir, current); err != nil {
		return "", err
	}
	m.logger.Info("stashed uncommitted work", "branch", current)
	return current, nil
}

// StartFresh parks any uncommitted work and checks out the changeset branch,
// creating it from the current commit when it does not exist yet.
func (m *Manager) StartFresh(dir, id string) (Outcome, error) {
	if err := validateID(id); err != nil {
		return Outcome{}, err
	}
	branch := BranchName(id)

	stashedFrom, err := m.stashIfDirty(dir)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Branch: branch, StashedFrom: stashedFrom}

	if m.vcs.BranchExists(dir, branch) {
		if err := m.vcs.SwitchBranch(dir, branch); err != nil {
			return out, err
		}
		m.logger.Info("switched to changeset", "branch", branch)
		return out, nil
	}

	if err := m.vcs.CreateBranch(dir, branch, false); err != nil {
		return out, err
	}
	out.Created = true
	m.logger.Info("created changeset", "branch", branch)
	return out, nil
}

// Resume parks any uncommitted work, switches to an existing changeset
// branch and restores the stash tagged with that branch name, if any.
//
// Uncommitted work is stashed before the branch is checked, so it is stashed
// even when the changeset does not exist.
func (m *Manager) Resume(dir, id string) (Outcome, error) {
	if err := validateID(id); err != nil {
		return Outcome{}, err
	}
	branch := BranchName(id)

	stashedFrom, err := m.stashIfDirty(dir)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Branch: branch, StashedFrom: stashedFrom}

	if !m.vcs.BranchExists(dir, branch) {
		return out, errors.NewNotFoundError(errors.ErrChangesetNotFound, "changeset", id)
	}
	if err := m.vcs.SwitchBranch(dir, branch); err != nil {
		return out, err
	}

	restored, err := m.vcs.PopStashNamed(dir, branch)
	if err != nil {
		return out, err
	}
	out.Restored = restored
	m.logger.Info("resumed changeset", "branch", branch, "restored_stash", restored)
	return out, nil
}
