package vcs

// Client defines the repository hygiene operations the engine relies on.
// This interface abstracts the git CLI, enabling fake implementations for
// testing without actual repositories.
type Client interface {
	// IsClean reports whether the tree has no uncommitted or untracked changes.
	IsClean(path string) (bool, error)

	// DiscardAll irreversibly drops tracked changes and untracked files.
	DiscardAll(path string) error

	// Stash creates a stash entry; a blank message is replaced by a timestamped one.
	Stash(path, message string) error

	// StashNamed creates a stash tagged "<namespace>: <name>".
	StashNamed(path, name string) error

	// ListStashes returns stash descriptions, most recent first.
	ListStashes(path string) ([]string, error)

	// PopStashNamed restores the stash tagged with name. Absence is not an error.
	PopStashNamed(path, name string) (bool, error)

	// CreateBranch creates and checks out name, optionally committing first.
	CreateBranch(path, name string, commitFirst bool) error

	// BranchExists never fails; errors mean "does not exist".
	BranchExists(path, name string) bool

	CurrentBranch(path string) (string, error)
	SwitchBranch(path, name string) error

	// Pull ensures branch is checked out and syncs it with its remote.
	Pull(path, branch string) error
}

// Ensure Git implements Client at compile time.
var _ Client = (*Git)(nil)
