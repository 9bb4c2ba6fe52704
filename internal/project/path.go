package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/devflow/internal/errors"
)

// PathEnv is the pair of directories relative project paths resolve against.
type PathEnv struct {
	Home string
	Cwd  string
}

// CurrentPathEnv returns the process's home and working directories.
func CurrentPathEnv() (PathEnv, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return PathEnv{}, fmt.Errorf("failed to get home directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return PathEnv{}, fmt.Errorf("failed to get current directory: %w", err)
	}
	return PathEnv{Home: home, Cwd: cwd}, nil
}

// ResolveWorkingDir turns a configured path into an absolute one: absolute
// paths are cleaned, "~" and "~/..." are joined onto env.Home, anything
// else onto env.Cwd. It does not touch the file system.
func ResolveWorkingDir(raw string, env PathEnv) (string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "", fmt.Errorf("%w: empty path", errors.ErrInvalidWorkingDirectory)
	case filepath.IsAbs(raw):
		return filepath.Clean(raw), nil
	case raw == "~":
		return requireAbs(env.Home, raw)
	case strings.HasPrefix(raw, "~/"):
		return requireAbs(filepath.Join(env.Home, raw[2:]), raw)
	default:
		return requireAbs(filepath.Join(env.Cwd, raw), raw)
	}
}

func requireAbs(path, raw string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: cannot resolve %q", errors.ErrInvalidWorkingDirectory, raw)
	}
	return filepath.Clean(path), nil
}

// Workspace is a project whose working directory has been resolved. It is
// created once per invocation and shared by every operation in it.
type Workspace struct {
	Project Project
	Dir     string
}

// Open resolves p's working directory against env and checks that it is an
// existing directory.
func Open(p Project, env PathEnv) (Workspace, error) {
	dir, err := ResolveWorkingDir(p.Path, env)
	if err != nil {
		return Workspace{}, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return Workspace{}, fmt.Errorf("%w: %s: %v", errors.ErrInvalidWorkingDirectory, dir, err)
	}
	if !info.IsDir() {
		return Workspace{}, fmt.Errorf("%w: %s is not a directory", errors.ErrInvalidWorkingDirectory, dir)
	}
	return Workspace{Project: p, Dir: dir}, nil
}
