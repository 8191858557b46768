// Package sysdeps installs the native build dependencies a CPython source
// build needs, through the host's apt package manager.
package sysdeps

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pyvers/pyvers/pkg/execx"
)

// buildPackages is the fixed set of build-time packages required to
// compile CPython with all standard-library extension modules enabled.
var buildPackages = []string{
	"build-essential",
	"pkg-config",
	"zlib1g-dev",
	"libbz2-dev",
	"liblzma-dev",
	"libssl-dev",
	"libreadline-dev",
	"libncurses-dev",
	"libsqlite3-dev",
	"libffi-dev",
	"libexpat1-dev",
	"libgdbm-dev",
	"libgdbm-compat-dev",
	"uuid-dev",
	"tk-dev",
	"curl",
	"ca-certificates",
}

// DependencyError reports a failed package-manager invocation. It is fatal
// to the whole run: no source build can succeed with headers missing.
type DependencyError struct {
	Step string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency install failed during %s: %v", e.Step, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// Installer drives apt to satisfy the build dependency set.
type Installer struct {
	runner execx.Runner
}

// NewInstaller creates a dependency installer backed by the given runner.
func NewInstaller(runner execx.Runner) *Installer {
	return &Installer{runner: runner}
}

// Install refreshes the package index and installs the build package set.
// Safe to re-run: apt skips packages that are already satisfied.
func (i *Installer) Install(ctx context.Context) error {
	log.Info().Int("packages", len(buildPackages)).Msg("Installing build dependencies")

	if err := i.runner.Run(ctx, "sudo", "apt-get", "update"); err != nil {
		return &DependencyError{Step: "index refresh", Err: err}
	}

	args := append([]string{"apt-get", "install", "-y"}, buildPackages...)
	if err := i.runner.Run(ctx, "sudo", args...); err != nil {
		return &DependencyError{Step: "package install", Err: err}
	}

	log.Info().Msg("Build dependencies satisfied")
	return nil
}

// Packages returns the package set, for display purposes.
func Packages() []string {
	out := make([]string, len(buildPackages))
	copy(out, buildPackages)
	return out
}
