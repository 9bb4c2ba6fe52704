package operation

import (
	"errors"

	"github.com/Iron-Ham/devflow/internal/buildtool"
	"github.com/Iron-Ham/devflow/internal/report"
)

// fakeVCS records calls and simulates a single working tree.
type fakeVCS struct {
	clean    bool
	branch   string
	branches map[string]bool
	stashes  []string

	isCleanErr  error
	stashErr    error
	pullErr     error
	createErr   error
	discardErr  error
	switchErr   error
	branchErr   error
	calls       []string
	pulled      string
	committedOn string
}

func newFakeVCS(clean bool) *fakeVCS {
	return &fakeVCS{clean: clean, branch: "main", branches: map[string]bool{"main": true}}
}

func (f *fakeVCS) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeVCS) IsClean(string) (bool, error) {
	f.record("IsClean")
	return f.clean, f.isCleanErr
}

func (f *fakeVCS) DiscardAll(string) error {
	f.record("DiscardAll")
	if f.discardErr != nil {
		return f.discardErr
	}
	f.clean = true
	return nil
}

func (f *fakeVCS) Stash(_ string, message string) error {
	f.record("Stash")
	if f.stashErr != nil {
		return f.stashErr
	}
	f.stashes = append([]string{message}, f.stashes...)
	f.clean = true
	return nil
}

func (f *fakeVCS) StashNamed(_ string, name string) error {
	f.record("StashNamed")
	f.stashes = append([]string{"devflow: " + name}, f.stashes...)
	f.clean = true
	return nil
}

func (f *fakeVCS) ListStashes(string) ([]string, error) {
	f.record("ListStashes")
	return f.stashes, nil
}

func (f *fakeVCS) PopStashNamed(string, string) (bool, error) {
	f.record("PopStashNamed")
	return false, nil
}

func (f *fakeVCS) CreateBranch(_ string, name string, commitFirst bool) error {
	f.record("CreateBranch")
	if f.createErr != nil {
		return f.createErr
	}
	if commitFirst && !f.clean {
		f.committedOn = name
		f.clean = true
	}
	f.branches[name] = true
	f.branch = name
	return nil
}

func (f *fakeVCS) BranchExists(_ string, name string) bool {
	f.record("BranchExists")
	return f.branches[name]
}

func (f *fakeVCS) CurrentBranch(string) (string, error) {
	f.record("CurrentBranch")
	return f.branch, f.branchErr
}

func (f *fakeVCS) SwitchBranch(_ string, name string) error {
	f.record("SwitchBranch")
	if f.switchErr != nil {
		return f.switchErr
	}
	f.branch = name
	return nil
}

func (f *fakeVCS) Pull(_ string, branch string) error {
	f.record("Pull")
	if f.pullErr != nil {
		return f.pullErr
	}
	f.branch = branch
	f.pulled = branch
	return nil
}

// fakeBuild is a scriptable buildtool.Client.
type fakeBuild struct {
	unitErr    error
	schemes    []string
	runTargets []buildtool.RunTarget
	installs   []buildtool.Install

	buildErr   error
	testErr    error
	runErr     error
	cleanErr   error
	purgeErr   error
	installErr error
	output     string

	calls       []string
	built       string
	verbose     bool
	tested      string
	ran         string
	ranOn       string
	purgedCache bool
}

func (f *fakeBuild) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeBuild) DiscoverBuildUnit(string) (buildtool.BuildUnit, error) {
	f.record("DiscoverBuildUnit")
	if f.unitErr != nil {
		return buildtool.BuildUnit{}, f.unitErr
	}
	return buildtool.BuildUnit{Kind: buildtool.KindProject, Path: "/src/App.xcodeproj"}, nil
}

func (f *fakeBuild) ListTargets(string) ([]string, error) {
	f.record("ListTargets")
	return f.schemes, nil
}

func (f *fakeBuild) Build(_, target string, verbose bool) (string, error) {
	f.record("Build")
	f.built, f.verbose = target, verbose
	return f.output, f.buildErr
}

func (f *fakeBuild) Test(_, target string) (string, error) {
	f.record("Test")
	f.tested = target
	return f.output, f.testErr
}

func (f *fakeBuild) Run(_, target, runTargetID string) error {
	f.record("Run")
	f.ran, f.ranOn = target, runTargetID
	return f.runErr
}

func (f *fakeBuild) Clean(string) error {
	f.record("Clean")
	return f.cleanErr
}

func (f *fakeBuild) PurgeCaches() error {
	f.record("PurgeCaches")
	if f.purgeErr == nil {
		f.purgedCache = true
	}
	return f.purgeErr
}

func (f *fakeBuild) ListRunTargets() ([]buildtool.RunTarget, error) {
	f.record("ListRunTargets")
	return f.runTargets, nil
}

func (f *fakeBuild) DependencyInstalls(string) []buildtool.Install {
	return f.installs
}

func (f *fakeBuild) InstallDependencies(string) ([]buildtool.Install, error) {
	f.record("InstallDependencies")
	if f.installErr != nil {
		return nil, f.installErr
	}
	return f.installs, nil
}

// fakeReports captures report entries.
type fakeReports struct {
	entries []report.Entry
	err     error
}

func (f *fakeReports) Write(entry report.Entry) (string, error) {
	f.entries = append(f.entries, entry)
	if f.err != nil {
		return "", f.err
	}
	return "/reports/" + entry.Project + "-" + entry.Operation + ".md", nil
}

var errBoom = errors.New("boom")
