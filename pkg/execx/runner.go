// Package execx provides the subprocess seam used by every component that
// shells out to host tooling. Components depend on the Runner interface so
// tests can substitute a recording fake.
package execx

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner abstracts subprocess execution and executable lookup.
type Runner interface {
	// Run executes a command, streaming its output to the runner's writers.
	Run(ctx context.Context, name string, args ...string) error

	// RunIn behaves like Run but executes with the given working directory.
	RunIn(ctx context.Context, dir, name string, args ...string) error

	// Output executes a command and returns its combined stdout, trimmed.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// LookPath reports the resolved path of an executable, or an error if
	// it is not on the search path.
	LookPath(name string) (string, error)
}

// System is the Runner backed by os/exec against the local host.
type System struct {
	// Stdout and Stderr receive subprocess output. Defaults to the
	// process's own streams when nil.
	Stdout io.Writer
	Stderr io.Writer
}

// NewSystem creates a Runner that executes against the local host.
func NewSystem() *System {
	return &System{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes a command in the current directory.
func (s *System) Run(ctx context.Context, name string, args ...string) error {
	return s.RunIn(ctx, "", name, args...)
}

// RunIn executes a command with dir as the working directory.
func (s *System) RunIn(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = s.stdout()
	cmd.Stderr = s.stderr()
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Output executes a command and captures stdout. Interpreter version
// probes write to stderr on some releases, so stderr is captured too and
// used when stdout is empty.
func (s *System) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		out = strings.TrimSpace(stderr.String())
	}
	return out, nil
}

// LookPath resolves an executable on the current search path.
func (s *System) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (s *System) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}

func (s *System) stderr() io.Writer {
	if s.Stderr != nil {
		return s.Stderr
	}
	return os.Stderr
}
