package vcs

import (
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/devflow/internal/errors"
)

// -----------------------------------------------------------------------------
// Mock Command Executor for Unit Tests
// -----------------------------------------------------------------------------

// mockCall records a single command invocation
type mockCall struct {
	dir  string
	name string
	args []string
}

// mockExecutor is a test double for execx.Executor that replays responses in order
type mockExecutor struct {
	calls      []mockCall
	runOutputs [][]byte
	runErrors  []error
	callIndex  int
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{}
}

func (m *mockExecutor) addResponse(output string, err error) {
	m.runOutputs = append(m.runOutputs, []byte(output))
	m.runErrors = append(m.runErrors, err)
}

func (m *mockExecutor) Run(dir string, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, mockCall{dir: dir, name: name, args: args})
	idx := m.callIndex
	m.callIndex++
	if idx < len(m.runOutputs) {
		return m.runOutputs[idx], m.runErrors[idx]
	}
	return nil, nil
}

func (m *mockExecutor) Stream(dir string, _ io.Writer, name string, args ...string) ([]byte, error) {
	return m.Run(dir, name, args...)
}

func (m *mockExecutor) argsAt(i int) string {
	if i >= len(m.calls) {
		return ""
	}
	return strings.Join(m.calls[i].args, " ")
}

func toolFailure(args string, output string) error {
	return errors.NewToolError("git", strings.Fields(args), 1, output, nil)
}

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestGit(m *mockExecutor) *Git {
	return NewGit(WithExecutor(m), WithClock(func() time.Time { return fixedTime }))
}

// -----------------------------------------------------------------------------
// Git Unit Tests
// -----------------------------------------------------------------------------

func TestGit_IsClean(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "clean repo", output: "", want: true},
		{name: "modified file", output: " M file.txt\n", want: false},
		{name: "untracked file", output: "?? newfile.txt\n", want: false},
		{name: "status error", err: toolFailure("status", "fatal"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockExecutor()
			m.addResponse(tt.output, tt.err)

			got, err := newTestGit(m).IsClean("/repo")
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsClean() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsClean() = %v, want %v", got, tt.want)
			}
			if m.calls[0].dir != "/repo" || m.argsAt(0) != "status --porcelain" {
				t.Errorf("unexpected call %+v", m.calls[0])
			}
		})
	}
}

func TestGit_IsCleanWrapsGitError(t *testing.T) {
	m := newMockExecutor()
	m.addResponse("fatal: not a git repository", toolFailure("status --porcelain", "fatal: not a git repository"))

	_, err := newTestGit(m).IsClean("/repo")
	var gitErr *errors.GitError
	if !errors.As(err, &gitErr) {
		t.Fatalf("error = %T, want *errors.GitError", err)
	}
	if gitErr.Repository != "/repo" {
		t.Errorf("Repository = %q", gitErr.Repository)
	}
	if !errors.Is(err, errors.ErrToolInvocationFailed) {
		t.Error("error should match ErrToolInvocationFailed")
	}
}

func TestGit_DiscardAll(t *testing.T) {
	m := newMockExecutor()
	if err := newTestGit(m).DiscardAll("/repo"); err != nil {
		t.Fatalf("DiscardAll() error = %v", err)
	}
	want := []string{"reset --hard HEAD", "clean -fd"}
	for i, w := range want {
		if got := m.argsAt(i); got != w {
			t.Errorf("call %d = %q, want %q", i, got, w)
		}
	}
}

func TestGit_DiscardAllStopsOnResetFailure(t *testing.T) {
	m := newMockExecutor()
	m.addResponse("", toolFailure("reset", "boom"))

	if err := newTestGit(m).DiscardAll("/repo"); err == nil {
		t.Fatal("DiscardAll() error = nil, want error")
	}
	if len(m.calls) != 1 {
		t.Errorf("calls = %d, want 1 (clean must not run)", len(m.calls))
	}
}

func TestGit_Stash(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "explicit message", message: "before refactor", want: "before refactor"},
		{name: "blank message gets timestamp", message: "  ", want: "devflow stash 2024-03-01T09:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockExecutor()
			if err := newTestGit(m).Stash("/repo", tt.message); err != nil {
				t.Fatalf("Stash() error = %v", err)
			}
			args := m.calls[0].args
			if got := args[len(args)-1]; got != tt.want {
				t.Errorf("stash message = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(args[:4], []string{"stash", "push", "--include-untracked", "-m"}) {
				t.Errorf("args = %v", args)
			}
		})
	}
}

func TestGit_StashNamed(t *testing.T) {
	m := newMockExecutor()
	g := NewGit(WithExecutor(m), WithStashNamespace("flow"))
	if err := g.StashNamed("/repo", "changeset/X-1"); err != nil {
		t.Fatalf("StashNamed() error = %v", err)
	}
	args := m.calls[0].args
	if got := args[len(args)-1]; got != "flow: changeset/X-1" {
		t.Errorf("stash message = %q", got)
	}
}

func TestGit_ListStashes(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{name: "none", output: "", want: []string{}},
		{
			name:   "two entries",
			output: "On main: devflow: main\nOn feature: wip\n",
			want:   []string{"On main: devflow: main", "On feature: wip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockExecutor()
			m.addResponse(tt.output, nil)
			got, err := newTestGit(m).ListStashes("/repo")
			if err != nil {
				t.Fatalf("ListStashes() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ListStashes() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestGit_PopStashNamed(t *testing.T) {
	t.Run("pops matching index", func(t *testing.T) {
		m := newMockExecutor()
		m.addResponse("On main: other\nOn changeset/X-1: devflow: changeset/X-1\n", nil)
		m.addResponse("", nil)

		found, err := newTestGit(m).PopStashNamed("/repo", "changeset/X-1")
		if err != nil {
			t.Fatalf("PopStashNamed() error = %v", err)
		}
		if !found {
			t.Fatal("PopStashNamed() = false, want true")
		}
		if got := m.argsAt(1); got != "stash pop stash@{1}" {
			t.Errorf("pop call = %q", got)
		}
	})

	t.Run("no match is not an error", func(t *testing.T) {
		m := newMockExecutor()
		m.addResponse("On main: devflow: main\n", nil)

		found, err := newTestGit(m).PopStashNamed("/repo", "changeset/X-1")
		if err != nil {
			t.Fatalf("PopStashNamed() error = %v", err)
		}
		if found {
			t.Error("PopStashNamed() = true, want false")
		}
		if len(m.calls) != 1 {
			t.Errorf("calls = %d, want 1", len(m.calls))
		}
	})

	t.Run("empty stash list", func(t *testing.T) {
		m := newMockExecutor()
		m.addResponse("", nil)

		found, err := newTestGit(m).PopStashNamed("/repo", "anything")
		if err != nil || found {
			t.Errorf("PopStashNamed() = %v, %v; want false, nil", found, err)
		}
	})
}

func TestGit_CreateBranch(t *testing.T) {
	t.Run("commit first", func(t *testing.T) {
		m := newMockExecutor()
		if err := newTestGit(m).CreateBranch("/repo", "feature", true); err != nil {
			t.Fatalf("CreateBranch() error = %v", err)
		}
		want := []string{"add -A", "commit -m " + SaveCommitMessage, "checkout -b feature"}
		for i, w := range want {
			if got := m.argsAt(i); got != w {
				t.Errorf("call %d = %q, want %q", i, got, w)
			}
		}
	})

	t.Run("without commit", func(t *testing.T) {
		m := newMockExecutor()
		if err := newTestGit(m).CreateBranch("/repo", "feature", false); err != nil {
			t.Fatalf("CreateBranch() error = %v", err)
		}
		if len(m.calls) != 1 || m.argsAt(0) != "checkout -b feature" {
			t.Errorf("calls = %+v", m.calls)
		}
	})

	t.Run("nothing to commit is tolerated", func(t *testing.T) {
		m := newMockExecutor()
		m.addResponse("", nil)
		m.addResponse("nothing to commit, working tree clean", toolFailure("commit", ""))
		m.addResponse("", nil)
		if err := newTestGit(m).CreateBranch("/repo", "feature", true); err != nil {
			t.Fatalf("CreateBranch() error = %v", err)
		}
	})

	t.Run("checkout failure", func(t *testing.T) {
		m := newMockExecutor()
		m.addResponse("fatal: a branch named 'feature' already exists", toolFailure("checkout -b feature", ""))
		err := newTestGit(m).CreateBranch("/repo", "feature", false)
		var gitErr *errors.GitError
		if !errors.As(err, &gitErr) || gitErr.Branch != "feature" {
			t.Errorf("error = %v, want GitError for branch feature", err)
		}
	})
}

func TestGit_BranchExists(t *testing.T) {
	m := newMockExecutor()
	m.addResponse("abc123\n", nil)
	m.addResponse("", toolFailure("rev-parse", ""))

	g := newTestGit(m)
	if !g.BranchExists("/repo", "main") {
		t.Error("BranchExists(main) = false, want true")
	}
	if g.BranchExists("/repo", "missing") {
		t.Error("BranchExists(missing) = true, want false")
	}
	if got := m.argsAt(0); got != "rev-parse --verify --quiet refs/heads/main" {
		t.Errorf("call = %q", got)
	}
}

func TestGit_Pull(t *testing.T) {
	t.Run("already on branch", func(t *testing.T) {
		m := newMockExecutor()
		m.addResponse("main\n", nil)
		m.addResponse("", nil)
		if err := newTestGit(m).Pull("/repo", "main"); err != nil {
			t.Fatalf("Pull() error = %v", err)
		}
		if len(m.calls) != 2 || m.argsAt(1) != "pull --ff-only origin main" {
			t.Errorf("calls = %+v", m.calls)
		}
	})

	t.Run("switches first", func(t *testing.T) {
		m := newMockExecutor()
		m.addResponse("feature\n", nil)
		m.addResponse("", nil)
		m.addResponse("", nil)
		if err := newTestGit(m).Pull("/repo", "main"); err != nil {
			t.Fatalf("Pull() error = %v", err)
		}
		if m.argsAt(1) != "checkout main" || m.argsAt(2) != "pull --ff-only origin main" {
			t.Errorf("calls = %+v", m.calls)
		}
	})

	t.Run("pull failure surfaces", func(t *testing.T) {
		m := newMockExecutor()
		m.addResponse("main\n", nil)
		m.addResponse("fatal: Not possible to fast-forward", toolFailure("pull", ""))
		err := newTestGit(m).Pull("/repo", "main")
		if !errors.Is(err, errors.ErrToolInvocationFailed) {
			t.Errorf("Pull() error = %v, want tool failure", err)
		}
	})
}
