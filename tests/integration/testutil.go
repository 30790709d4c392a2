// Package integration provides shared helpers for end-to-end tests that
// drive the built peniche binary.
package integration

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	penicheBin string
	buildErr   error
)

// SetPenicheBin records the path of the binary built by TestMain.
func SetPenicheBin(path string) { penicheBin = path }

// SetBuildErr records a build failure so every test can report it.
func SetBuildErr(err error) { buildErr = err }

// FindProjectRoot walks up from the working directory to the go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above working directory")
		}
		dir = parent
	}
}

// Result captures one binary invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// TestEnv is an isolated home for one test: its own config directory and
// a scratch directory the binary runs in.
type TestEnv struct {
	t         *testing.T
	Dir       string
	ConfigDir string
}

// NewTestEnv creates an isolated environment and fails the test if the
// binary never built.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("peniche binary build failed: %v", buildErr)
	}
	return &TestEnv{
		t:         t,
		Dir:       t.TempDir(),
		ConfigDir: t.TempDir(),
	}
}

// Run invokes the binary in dir and returns its output and exit code.
func (e *TestEnv) Run(dir string, args ...string) Result {
	e.t.Helper()

	cmd := exec.Command(penicheBin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "PENICHE_CONFIG_DIR="+e.ConfigDir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		e.t.Fatalf("run peniche %v: %v", args, err)
	}
	return res
}

// MustRun invokes the binary and fails the test on a nonzero exit.
func (e *TestEnv) MustRun(dir string, args ...string) Result {
	e.t.Helper()
	res := e.Run(dir, args...)
	if res.ExitCode != 0 {
		e.t.Fatalf("peniche %v: exit %d\nstdout: %s\nstderr: %s",
			args, res.ExitCode, res.Stdout, res.Stderr)
	}
	return res
}
