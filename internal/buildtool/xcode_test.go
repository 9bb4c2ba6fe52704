package buildtool

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Iron-Ham/devflow/internal/errors"
)

// mockCall records a single command invocation
type mockCall struct {
	dir      string
	name     string
	args     []string
	streamed bool
}

// mockExecutor is a test double for execx.Executor that replays responses in order
type mockExecutor struct {
	calls     []mockCall
	outputs   []string
	errs      []error
	callIndex int
}

func (m *mockExecutor) addResponse(output string, err error) {
	m.outputs = append(m.outputs, output)
	m.errs = append(m.errs, err)
}

func (m *mockExecutor) Run(dir string, name string, args ...string) ([]byte, error) {
	return m.record(mockCall{dir: dir, name: name, args: args})
}

func (m *mockExecutor) Stream(dir string, w io.Writer, name string, args ...string) ([]byte, error) {
	out, err := m.record(mockCall{dir: dir, name: name, args: args, streamed: true})
	if w != nil {
		_, _ = w.Write(out)
	}
	return out, err
}

func (m *mockExecutor) record(call mockCall) ([]byte, error) {
	m.calls = append(m.calls, call)
	idx := m.callIndex
	m.callIndex++
	if idx < len(m.outputs) {
		return []byte(m.outputs[idx]), m.errs[idx]
	}
	return nil, nil
}

func (m *mockExecutor) commandAt(i int) string {
	if i >= len(m.calls) {
		return ""
	}
	return m.calls[i].name + " " + strings.Join(m.calls[i].args, " ")
}

// projectDir creates a directory containing the named entries as directories.
func projectDir(t *testing.T, entries ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, e := range entries {
		if err := os.MkdirAll(filepath.Join(dir, e), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", e, err)
		}
	}
	return dir
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("\n"), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestXcode_DiscoverBuildUnit(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		wantKind UnitKind
		wantName string
		wantErr  error
	}{
		{name: "workspace wins", entries: []string{"App.xcodeproj", "App.xcworkspace"}, wantKind: KindWorkspace, wantName: "App.xcworkspace"},
		{name: "project only", entries: []string{"App.xcodeproj", "Sources"}, wantKind: KindProject, wantName: "App.xcodeproj"},
		{name: "nothing", entries: []string{"Sources"}, wantErr: errors.ErrNoBuildUnitFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := projectDir(t, tt.entries...)
			unit, err := NewXcode(WithExecutor(&mockExecutor{})).DiscoverBuildUnit(dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DiscoverBuildUnit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DiscoverBuildUnit() error = %v", err)
			}
			if unit.Kind != tt.wantKind || unit.Name() != tt.wantName {
				t.Errorf("unit = %+v, want %v %s", unit, tt.wantKind, tt.wantName)
			}
		})
	}
}

func TestXcode_DiscoverBuildUnitMissingDir(t *testing.T) {
	_, err := NewXcode().DiscoverBuildUnit(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, errors.ErrInvalidWorkingDirectory) {
		t.Errorf("error = %v, want ErrInvalidWorkingDirectory", err)
	}
}

func TestXcode_ListTargets(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		output  string
		want    []string
	}{
		{
			name:    "workspace",
			entries: []string{"App.xcworkspace"},
			output:  `{"workspace":{"name":"App","schemes":["App","AppTests"]}}`,
			want:    []string{"App", "AppTests"},
		},
		{
			name:    "project with log noise",
			entries: []string{"App.xcodeproj"},
			output:  "Command line invocation:\n    xcodebuild -list\n{\"project\":{\"name\":\"App\",\"schemes\":[\"App\"],\"targets\":[\"App\",\"AppUITests\"]}}",
			want:    []string{"App"},
		},
		{
			name:    "no schemes",
			entries: []string{"App.xcodeproj"},
			output:  `{"project":{"name":"App","schemes":[]}}`,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := projectDir(t, tt.entries...)
			m := &mockExecutor{}
			m.addResponse(tt.output, nil)

			got, err := NewXcode(WithExecutor(m)).ListTargets(dir)
			if err != nil {
				t.Fatalf("ListTargets() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ListTargets() = %#v, want %#v", got, tt.want)
			}
			if !strings.HasSuffix(m.commandAt(0), "-list -json") {
				t.Errorf("command = %q", m.commandAt(0))
			}
		})
	}
}

func TestXcode_Build(t *testing.T) {
	dir := projectDir(t, "App.xcworkspace")
	unit := filepath.Join(dir, "App.xcworkspace")

	t.Run("quiet", func(t *testing.T) {
		m := &mockExecutor{}
		if _, err := NewXcode(WithExecutor(m)).Build(dir, "App", false); err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		want := "xcodebuild -workspace " + unit + " -scheme App build -quiet"
		if got := m.commandAt(0); got != want {
			t.Errorf("command = %q, want %q", got, want)
		}
		if m.calls[0].streamed {
			t.Error("quiet builds should not stream")
		}
	})

	t.Run("verbose streams", func(t *testing.T) {
		m := &mockExecutor{}
		m.addResponse("Compiling App.swift\n", nil)
		var buf bytes.Buffer
		out, err := NewXcode(WithExecutor(m), WithOutput(&buf)).Build(dir, "App", true)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !m.calls[0].streamed || buf.String() != out {
			t.Errorf("streamed = %v, buf = %q, out = %q", m.calls[0].streamed, buf.String(), out)
		}
		if strings.Contains(m.commandAt(0), "-quiet") {
			t.Error("verbose builds should not pass -quiet")
		}
	})

	t.Run("failure returns output", func(t *testing.T) {
		m := &mockExecutor{}
		m.addResponse("error: no such module", errors.NewToolError("xcodebuild", nil, 65, "error: no such module", nil))
		out, err := NewXcode(WithExecutor(m)).Build(dir, "App", false)
		if code, ok := errors.ExitCode(err); !ok || code != 65 {
			t.Errorf("Build() error = %v", err)
		}
		if out != "error: no such module" {
			t.Errorf("output = %q", out)
		}
	})
}

func TestXcode_TestUsesFallbackDestination(t *testing.T) {
	dir := projectDir(t, "App.xcodeproj")
	m := &mockExecutor{}
	if _, err := NewXcode(WithExecutor(m), WithFallbackSimulator("iPhone SE")).Test(dir, "AppTests"); err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	args := m.calls[0].args
	if !reflect.DeepEqual(args[2:], []string{"-scheme", "AppTests", "-destination", "platform=iOS Simulator,name=iPhone SE", "test"}) {
		t.Errorf("args = %v", args)
	}
}

func TestXcode_Run(t *testing.T) {
	dir := projectDir(t, "App.xcodeproj")
	settings := `[{"target":"App","buildSettings":{"FULL_PRODUCT_NAME":"App.app","TARGET_BUILD_DIR":"/dd/Build/Products/Debug-iphonesimulator","PRODUCT_BUNDLE_IDENTIFIER":"com.example.App"}}]`

	t.Run("with run target", func(t *testing.T) {
		m := &mockExecutor{}
		m.addResponse("Unable to boot device in current state: Booted", errors.NewToolError("xcrun", nil, 149, "", nil))
		m.addResponse("", nil)
		m.addResponse(settings, nil)
		m.addResponse("", nil)
		m.addResponse("com.example.App: 4242", nil)

		if err := NewXcode(WithExecutor(m)).Run(dir, "App", "UDID-1"); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		want := []string{
			"xcrun simctl boot UDID-1",
			"xcodebuild -project " + filepath.Join(dir, "App.xcodeproj") + " -scheme App -destination id=UDID-1 -quiet build",
			"xcodebuild -project " + filepath.Join(dir, "App.xcodeproj") + " -scheme App -destination id=UDID-1 -showBuildSettings -json",
			"xcrun simctl install UDID-1 /dd/Build/Products/Debug-iphonesimulator/App.app",
			"xcrun simctl launch UDID-1 com.example.App",
		}
		for i, w := range want {
			if got := m.commandAt(i); got != w {
				t.Errorf("call %d = %q, want %q", i, got, w)
			}
		}
	})

	t.Run("fallback device", func(t *testing.T) {
		m := &mockExecutor{}
		m.addResponse("", nil)
		m.addResponse(settings, nil)
		if err := NewXcode(WithExecutor(m)).Run(dir, "App", ""); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(m.commandAt(0), "-destination platform=iOS Simulator,name=iPhone 15") {
			t.Errorf("build = %q", m.commandAt(0))
		}
		if got := m.commandAt(3); got != "xcrun simctl launch booted com.example.App" {
			t.Errorf("launch = %q", got)
		}
	})

	t.Run("boot failure", func(t *testing.T) {
		m := &mockExecutor{}
		m.addResponse("Invalid device", errors.NewToolError("xcrun", nil, 148, "Invalid device", nil))
		if err := NewXcode(WithExecutor(m)).Run(dir, "App", "BAD"); err == nil {
			t.Fatal("Run() error = nil, want boot failure")
		}
		if len(m.calls) != 1 {
			t.Errorf("calls = %d, want 1", len(m.calls))
		}
	})
}

func TestXcode_Clean(t *testing.T) {
	t.Run("project cleans all targets", func(t *testing.T) {
		dir := projectDir(t, "App.xcodeproj")
		m := &mockExecutor{}
		if err := NewXcode(WithExecutor(m)).Clean(dir); err != nil {
			t.Fatalf("Clean() error = %v", err)
		}
		if !strings.HasSuffix(m.commandAt(0), "-alltargets clean") {
			t.Errorf("command = %q", m.commandAt(0))
		}
	})

	t.Run("workspace cleans each scheme", func(t *testing.T) {
		dir := projectDir(t, "App.xcworkspace")
		m := &mockExecutor{}
		m.addResponse(`{"workspace":{"schemes":["App","Widgets"]}}`, nil)
		if err := NewXcode(WithExecutor(m)).Clean(dir); err != nil {
			t.Fatalf("Clean() error = %v", err)
		}
		if len(m.calls) != 3 {
			t.Fatalf("calls = %d, want 3", len(m.calls))
		}
		if !strings.HasSuffix(m.commandAt(2), "-scheme Widgets clean") {
			t.Errorf("command = %q", m.commandAt(2))
		}
	})
}

func TestXcode_PurgeCaches(t *testing.T) {
	home := t.TempDir()
	derived := filepath.Join(home, "Library", "Developer", "Xcode", "DerivedData", "App-abc")
	if err := os.MkdirAll(derived, 0755); err != nil {
		t.Fatal(err)
	}

	if err := NewXcode(WithHomeDir(home)).PurgeCaches(); err != nil {
		t.Fatalf("PurgeCaches() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(derived)); !os.IsNotExist(err) {
		t.Error("DerivedData should be removed")
	}
	// Purging twice is harmless.
	if err := NewXcode(WithHomeDir(home)).PurgeCaches(); err != nil {
		t.Errorf("second PurgeCaches() error = %v", err)
	}
}

func TestXcode_ListRunTargets(t *testing.T) {
	m := &mockExecutor{}
	m.addResponse(`{"devices":{
		"com.apple.CoreSimulator.SimRuntime.iOS-17-2":[
			{"name":"iPhone 15 Pro","udid":"B","state":"Booted","isAvailable":true},
			{"name":"iPad Air","udid":"A","state":"Shutdown","isAvailable":true},
			{"name":"iPhone 8","udid":"X","state":"Shutdown","isAvailable":false}
		],
		"com.apple.CoreSimulator.SimRuntime.watchOS-10-0":[
			{"name":"Apple Watch","udid":"W","state":"Creating","isAvailable":true}
		]}}`, nil)

	got, err := NewXcode(WithExecutor(m)).ListRunTargets()
	if err != nil {
		t.Fatalf("ListRunTargets() error = %v", err)
	}
	want := []RunTarget{
		{Name: "Apple Watch", ID: "W", State: "Creating", Platform: "watchOS 10.0"},
		{Name: "iPad Air", ID: "A", State: StateShutdown, Platform: "iOS 17.2"},
		{Name: "iPhone 15 Pro", ID: "B", State: StateBooted, Platform: "iOS 17.2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListRunTargets() = %+v, want %+v", got, want)
	}
	if got := m.commandAt(0); got != "xcrun simctl list devices available -j" {
		t.Errorf("command = %q", got)
	}
}

func TestXcode_ListRunTargetsOrdersDuplicates(t *testing.T) {
	payload := `{"devices":{
		"com.apple.CoreSimulator.SimRuntime.iOS-17-2":[
			{"name":"iPhone 15","udid":"C","state":"Shutdown","isAvailable":true},
			{"name":"iPhone 15","udid":"A","state":"Shutdown","isAvailable":true}
		],
		"com.apple.CoreSimulator.SimRuntime.iOS-18-0":[
			{"name":"iPhone 15","udid":"B","state":"Booted","isAvailable":true}
		]}}`

	for range 20 {
		m := &mockExecutor{}
		m.addResponse(payload, nil)
		got, err := NewXcode(WithExecutor(m)).ListRunTargets()
		if err != nil {
			t.Fatalf("ListRunTargets() error = %v", err)
		}
		var ids []string
		for _, rt := range got {
			ids = append(ids, rt.Platform+"/"+rt.ID)
		}
		want := []string{"iOS 17.2/A", "iOS 17.2/C", "iOS 18.0/B"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestRunTarget_Usable(t *testing.T) {
	for state, want := range map[string]bool{StateBooted: true, StateShutdown: true, "Creating": false, "": false} {
		if got := (RunTarget{State: state}).Usable(); got != want {
			t.Errorf("Usable(%q) = %v, want %v", state, got, want)
		}
	}
}

func TestXcode_InstallDependencies(t *testing.T) {
	dir := projectDir(t, "App.xcodeproj")
	touch(t, dir, "Podfile")
	touch(t, dir, "Package.swift")

	m := &mockExecutor{}
	done, err := NewXcode(WithExecutor(m)).InstallDependencies(dir)
	if err != nil {
		t.Fatalf("InstallDependencies() error = %v", err)
	}
	if len(done) != 2 {
		t.Fatalf("installs = %+v, want 2", done)
	}
	if m.commandAt(0) != "pod install" || m.commandAt(1) != "swift package resolve" {
		t.Errorf("commands = %q, %q", m.commandAt(0), m.commandAt(1))
	}
}

func TestXcode_InstallDependenciesStopsOnFailure(t *testing.T) {
	dir := projectDir(t)
	touch(t, dir, "Podfile")
	touch(t, dir, "package.json")

	m := &mockExecutor{}
	m.addResponse("", errors.NewToolError("pod", []string{"install"}, 1, "", nil))

	done, err := NewXcode(WithExecutor(m)).InstallDependencies(dir)
	if err == nil {
		t.Fatal("InstallDependencies() error = nil")
	}
	if len(done) != 0 || len(m.calls) != 1 {
		t.Errorf("done = %v, calls = %d", done, len(m.calls))
	}
}

func TestXcode_DependencyInstallsNone(t *testing.T) {
	if got := NewXcode().DependencyInstalls(projectDir(t)); len(got) != 0 {
		t.Errorf("DependencyInstalls() = %v, want none", got)
	}
}
