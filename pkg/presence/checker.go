// Package presence answers whether a version-suffixed interpreter is
// already resolvable on the host's search path.
package presence

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pyvers/pyvers/pkg/execx"
)

// Status describes the result of a presence probe.
type Status struct {
	Installed bool
	// Version is the interpreter's self-reported version, empty when the
	// version probe failed or produced unparseable output.
	Version string
}

// Checker probes the search path for installed interpreters.
type Checker struct {
	runner execx.Runner
}

// NewChecker creates a presence checker backed by the given runner.
func NewChecker(runner execx.Runner) *Checker {
	return &Checker{runner: runner}
}

// Probe reports whether the named executable resolves on the search path.
// When it does, the executable's own version report is invoked and parsed;
// a failed or unparseable version probe never turns presence into absence.
func (c *Checker) Probe(ctx context.Context, executable string) Status {
	path, err := c.runner.LookPath(executable)
	if err != nil {
		return Status{}
	}

	out, err := c.runner.Output(ctx, executable, "--version")
	if err != nil {
		log.Warn().Str("executable", executable).Err(err).
			Msg("Installed interpreter did not report a version")
		return Status{Installed: true}
	}

	version := parseVersion(out)
	log.Debug().
		Str("executable", executable).
		Str("path", path).
		Str("version", version).
		Msg("Interpreter present")
	return Status{Installed: true, Version: version}
}

// IsInstalled reports presence only, discarding the probed version.
func (c *Checker) IsInstalled(ctx context.Context, executable string) bool {
	return c.Probe(ctx, executable).Installed
}

// parseVersion extracts the version number from output such as
// "Python 3.12.1". Unrecognized output yields the empty string.
func parseVersion(out string) string {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) < 2 {
		return ""
	}
	if !strings.EqualFold(fields[0], "python") {
		return ""
	}
	return fields[1]
}
