package buildtool

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Iron-Ham/devflow/internal/errors"
	"github.com/Iron-Ham/devflow/internal/execx"
)

// DefaultFallbackSimulator is the device name used when no run target was resolved.
const DefaultFallbackSimulator = "iPhone 15"

// derivedDataDir is the toolchain's global intermediate cache, relative to $HOME.
var derivedDataDir = filepath.Join("Library", "Developer", "Xcode", "DerivedData")

// dependencyManagers maps manifest files to their reinstall commands. Every
// manifest present triggers its own install.
var dependencyManagers = []Install{
	{Manifest: "Podfile", Tool: "pod", Args: []string{"install"}},
	{Manifest: "Cartfile", Tool: "carthage", Args: []string{"bootstrap", "--use-xcframeworks"}},
	{Manifest: "Package.swift", Tool: "swift", Args: []string{"package", "resolve"}},
	{Manifest: "package.json", Tool: "npm", Args: []string{"install"}},
	{Manifest: "Gemfile", Tool: "bundle", Args: []string{"install"}},
}

// Xcode implements Client with xcodebuild and xcrun simctl.
type Xcode struct {
	executor          execx.Executor
	home              string
	fallbackSimulator string
	output            io.Writer
}

// Option configures an Xcode client.
type Option func(*Xcode)

// WithExecutor replaces the command executor.
func WithExecutor(executor execx.Executor) Option {
	return func(x *Xcode) { x.executor = executor }
}

// WithHomeDir sets the home directory the derived data path is resolved against.
func WithHomeDir(home string) Option {
	return func(x *Xcode) { x.home = home }
}

// WithFallbackSimulator sets the device name used when no run target is given.
func WithFallbackSimulator(name string) Option {
	return func(x *Xcode) {
		if name != "" {
			x.fallbackSimulator = name
		}
	}
}

// WithOutput sets where verbose build output is streamed.
func WithOutput(w io.Writer) Option {
	return func(x *Xcode) { x.output = w }
}

// NewXcode creates an Xcode client.
func NewXcode(opts ...Option) *Xcode {
	x := &Xcode{
		executor:          execx.NewCLIExecutor(),
		fallbackSimulator: DefaultFallbackSimulator,
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.home == "" {
		x.home, _ = os.UserHomeDir()
	}
	return x
}

// DiscoverBuildUnit returns the first .xcworkspace in path, or the first
// .xcodeproj if there is no workspace.
func (x *Xcode) DiscoverBuildUnit(path string) (BuildUnit, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return BuildUnit{}, fmt.Errorf("%w: %s: %v", errors.ErrInvalidWorkingDirectory, path, err)
	}

	var project string
	for _, entry := range entries {
		name := entry.Name()
		switch filepath.Ext(name) {
		case ".xcworkspace":
			return BuildUnit{Kind: KindWorkspace, Path: filepath.Join(path, name)}, nil
		case ".xcodeproj":
			if project == "" {
				project = filepath.Join(path, name)
			}
		}
	}
	if project != "" {
		return BuildUnit{Kind: KindProject, Path: project}, nil
	}
	return BuildUnit{}, fmt.Errorf("%w in %s", errors.ErrNoBuildUnitFound, path)
}

// listOutput mirrors `xcodebuild -list -json`.
type listOutput struct {
	Workspace *struct {
		Schemes []string `json:"schemes"`
	} `json:"workspace"`
	Project *struct {
		Schemes []string `json:"schemes"`
	} `json:"project"`
}

// ListTargets returns the schemes of the discovered build unit.
func (x *Xcode) ListTargets(path string) ([]string, error) {
	unit, err := x.DiscoverBuildUnit(path)
	if err != nil {
		return nil, err
	}
	return x.listSchemes(path, unit)
}

func (x *Xcode) listSchemes(path string, unit BuildUnit) ([]string, error) {
	args := append(unit.Args(), "-list", "-json")
	output, err := x.executor.Run(path, "xcodebuild", args...)
	if err != nil {
		return nil, err
	}

	var list listOutput
	if err := json.Unmarshal(jsonPayload(output), &list); err != nil {
		return nil, fmt.Errorf("failed to parse scheme list: %w", err)
	}
	switch {
	case list.Workspace != nil:
		return list.Workspace.Schemes, nil
	case list.Project != nil:
		return list.Project.Schemes, nil
	}
	return nil, nil
}

// Build builds target. Unless verbose, xcodebuild runs with -quiet and
// nothing is streamed.
func (x *Xcode) Build(path, target string, verbose bool) (string, error) {
	unit, err := x.DiscoverBuildUnit(path)
	if err != nil {
		return "", err
	}

	args := append(unit.Args(), "-scheme", target, "build")
	if !verbose {
		args = append(args, "-quiet")
		output, err := x.executor.Run(path, "xcodebuild", args...)
		return string(output), err
	}
	output, err := x.executor.Stream(path, x.output, "xcodebuild", args...)
	return string(output), err
}

// Test runs target's test action on the fallback simulator.
func (x *Xcode) Test(path, target string) (string, error) {
	unit, err := x.DiscoverBuildUnit(path)
	if err != nil {
		return "", err
	}

	args := append(unit.Args(), "-scheme", target, "-destination", x.fallbackDestination(), "test")
	output, err := x.executor.Run(path, "xcodebuild", args...)
	return string(output), err
}

func (x *Xcode) fallbackDestination() string {
	return "platform=iOS Simulator,name=" + x.fallbackSimulator
}

// buildSettings mirrors one entry of `xcodebuild -showBuildSettings -json`.
type buildSettings struct {
	Target   string            `json:"target"`
	Settings map[string]string `json:"buildSettings"`
}

// Run boots the run target, builds for it, installs the app and launches it.
func (x *Xcode) Run(path, target, runTargetID string) error {
	unit, err := x.DiscoverBuildUnit(path)
	if err != nil {
		return err
	}

	destination := x.fallbackDestination()
	device := "booted"
	if runTargetID != "" {
		destination = "id=" + runTargetID
		device = runTargetID
		if output, err := x.executor.Run(path, "xcrun", "simctl", "boot", runTargetID); err != nil {
			if !strings.Contains(string(output), "current state: Booted") {
				return err
			}
		}
	}

	buildArgs := append(unit.Args(), "-scheme", target, "-destination", destination, "-quiet", "build")
	if _, err := x.executor.Run(path, "xcodebuild", buildArgs...); err != nil {
		return err
	}

	appPath, bundleID, err := x.productInfo(path, unit, target, destination)
	if err != nil {
		return err
	}
	if _, err := x.executor.Run(path, "xcrun", "simctl", "install", device, appPath); err != nil {
		return err
	}
	if _, err := x.executor.Run(path, "xcrun", "simctl", "launch", device, bundleID); err != nil {
		return err
	}
	return nil
}

func (x *Xcode) productInfo(path string, unit BuildUnit, target, destination string) (appPath, bundleID string, err error) {
	args := append(unit.Args(), "-scheme", target, "-destination", destination, "-showBuildSettings", "-json")
	output, err := x.executor.Run(path, "xcodebuild", args...)
	if err != nil {
		return "", "", err
	}

	var entries []buildSettings
	if err := json.Unmarshal(jsonPayload(output), &entries); err != nil {
		return "", "", fmt.Errorf("failed to parse build settings: %w", err)
	}
	for _, entry := range entries {
		product := entry.Settings["FULL_PRODUCT_NAME"]
		if !strings.HasSuffix(product, ".app") {
			continue
		}
		return filepath.Join(entry.Settings["TARGET_BUILD_DIR"], product), entry.Settings["PRODUCT_BUNDLE_IDENTIFIER"], nil
	}
	return "", "", fmt.Errorf("scheme %s does not produce an application", target)
}

// Clean removes build intermediates. Workspaces are cleaned per scheme since
// xcodebuild requires a scheme for them.
func (x *Xcode) Clean(path string) error {
	unit, err := x.DiscoverBuildUnit(path)
	if err != nil {
		return err
	}

	if unit.Kind == KindProject {
		_, err := x.executor.Run(path, "xcodebuild", append(unit.Args(), "-alltargets", "clean")...)
		return err
	}

	schemes, err := x.listSchemes(path, unit)
	if err != nil {
		return err
	}
	for _, scheme := range schemes {
		if _, err := x.executor.Run(path, "xcodebuild", append(unit.Args(), "-scheme", scheme, "clean")...); err != nil {
			return err
		}
	}
	return nil
}

// PurgeCaches deletes the global DerivedData directory. This affects every
// project on the machine and cannot be undone.
func (x *Xcode) PurgeCaches() error {
	if x.home == "" {
		return fmt.Errorf("cannot locate derived data: home directory unknown")
	}
	dir := filepath.Join(x.home, derivedDataDir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}

// simctlDevices mirrors `xcrun simctl list devices -j`.
type simctlDevices struct {
	Devices map[string][]struct {
		Name        string `json:"name"`
		UDID        string `json:"udid"`
		State       string `json:"state"`
		IsAvailable bool   `json:"isAvailable"`
	} `json:"devices"`
}

// ListRunTargets returns available simulators sorted by name, platform and
// UDID.
func (x *Xcode) ListRunTargets() ([]RunTarget, error) {
	output, err := x.executor.Run("", "xcrun", "simctl", "list", "devices", "available", "-j")
	if err != nil {
		return nil, err
	}

	var list simctlDevices
	if err := json.Unmarshal(jsonPayload(output), &list); err != nil {
		return nil, fmt.Errorf("failed to parse simulator list: %w", err)
	}

	var targets []RunTarget
	for runtime, devices := range list.Devices {
		platform := runtimePlatform(runtime)
		for _, d := range devices {
			if !d.IsAvailable {
				continue
			}
			targets = append(targets, RunTarget{Name: d.Name, ID: d.UDID, State: d.State, Platform: platform})
		}
	}
	sort.Slice(targets, func(i, j int) bool {
		a, b := targets[i], targets[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Platform != b.Platform {
			return a.Platform < b.Platform
		}
		return a.ID < b.ID
	})
	return targets, nil
}

// runtimePlatform turns "com.apple.CoreSimulator.SimRuntime.iOS-17-2" into "iOS 17.2".
func runtimePlatform(runtime string) string {
	name := runtime[strings.LastIndex(runtime, ".")+1:]
	family, version, found := strings.Cut(name, "-")
	if !found {
		return name
	}
	return family + " " + strings.ReplaceAll(version, "-", ".")
}

// DependencyInstalls returns one install per manifest found in path.
func (x *Xcode) DependencyInstalls(path string) []Install {
	var installs []Install
	for _, dm := range dependencyManagers {
		if _, err := os.Stat(filepath.Join(path, dm.Manifest)); err == nil {
			installs = append(installs, dm)
		}
	}
	return installs
}

// InstallDependencies runs each install in turn and stops at the first failure.
func (x *Xcode) InstallDependencies(path string) ([]Install, error) {
	var done []Install
	for _, install := range x.DependencyInstalls(path) {
		if _, err := x.executor.Run(path, install.Tool, install.Args...); err != nil {
			return done, err
		}
		done = append(done, install)
	}
	return done, nil
}

// jsonPayload drops any log lines the tool printed before its JSON document.
func jsonPayload(output []byte) []byte {
	for i, b := range output {
		if (b == '{' || b == '[') && (i == 0 || output[i-1] == '\n') {
			return output[i:]
		}
	}
	return output
}
