// Package buildtool discovers build units in a project directory and drives
// the toolchain that builds, tests, runs and cleans them.
package buildtool

import "path/filepath"

// UnitKind distinguishes the two kinds of buildable unit.
type UnitKind int

const (
	// KindWorkspace is an .xcworkspace; it takes priority when both exist.
	KindWorkspace UnitKind = iota
	// KindProject is a bare .xcodeproj.
	KindProject
)

// String returns the xcodebuild flag name for the kind.
func (k UnitKind) String() string {
	if k == KindWorkspace {
		return "workspace"
	}
	return "project"
}

// BuildUnit references the single buildable unit of a directory.
type BuildUnit struct {
	Kind UnitKind
	Path string
}

// Name returns the unit's file name.
func (u BuildUnit) Name() string {
	return filepath.Base(u.Path)
}

// Args returns the xcodebuild arguments selecting this unit.
func (u BuildUnit) Args() []string {
	return []string{"-" + u.Kind.String(), u.Path}
}

// RunTarget is a simulator the built app can be launched on.
type RunTarget struct {
	Name     string
	ID       string
	State    string
	Platform string
}

// Simulator states in which a run target can be selected interactively.
const (
	StateBooted   = "Booted"
	StateShutdown = "Shutdown"
)

// Usable reports whether the target is booted or can be booted.
func (r RunTarget) Usable() bool {
	return r.State == StateBooted || r.State == StateShutdown
}

// Install is a dependency-manager reinstall command triggered by a manifest.
type Install struct {
	Manifest string
	Tool     string
	Args     []string
}

// Client defines the toolchain operations the engine relies on.
type Client interface {
	// DiscoverBuildUnit finds the workspace, or failing that the project, in path.
	DiscoverBuildUnit(path string) (BuildUnit, error)

	// ListTargets returns the scheme names of the discovered unit.
	ListTargets(path string) ([]string, error)

	// Build builds target and returns the captured output.
	Build(path, target string, verbose bool) (string, error)

	// Test runs target's tests and returns the captured output.
	Test(path, target string) (string, error)

	// Run builds and launches target on runTargetID, or on the fallback
	// simulator when runTargetID is empty.
	Run(path, target, runTargetID string) error

	// Clean removes build intermediates of the discovered unit.
	Clean(path string) error

	// PurgeCaches deletes the machine-wide derived data directory.
	PurgeCaches() error

	// ListRunTargets returns available simulators sorted by name.
	ListRunTargets() ([]RunTarget, error)

	// DependencyInstalls lists one reinstall per manifest present in path.
	DependencyInstalls(path string) []Install

	// InstallDependencies runs every reinstall from DependencyInstalls.
	InstallDependencies(path string) ([]Install, error)
}

// Ensure Xcode implements Client at compile time.
var _ Client = (*Xcode)(nil)
