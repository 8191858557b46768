// Package build compiles and installs one CPython version from source:
// fetch, extract, configure, compile, altinstall, verify. The altinstall
// step is the safety invariant of the whole tool: the system-default
// python3 binary is never replaced.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/pyvers/pyvers/pkg/catalog"
	"github.com/pyvers/pyvers/pkg/execx"
	"github.com/pyvers/pyvers/pkg/presence"
	"github.com/pyvers/pyvers/pkg/telemetry"
)

// DefaultPrefix keeps altinstalled interpreters out of the distribution's
// /usr tree.
const DefaultPrefix = "/usr/local"

// configureFlags enables the optimized shared build with loadable
// extensions, matching what the upstream docs recommend for a production
// source install.
var configureFlags = []string{
	"--enable-optimizations",
	"--with-lto",
	"--enable-shared",
	"--with-system-ffi",
	"--with-computed-gotos",
	"--enable-loadable-sqlite-extensions",
}

// Worker performs the full source build pipeline for single versions.
type Worker struct {
	runner   execx.Runner
	checker  *presence.Checker
	fetcher  *Fetcher
	prefix   string
	workRoot string
	jobs     int
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithPrefix overrides the install prefix.
func WithPrefix(prefix string) WorkerOption {
	return func(w *Worker) {
		if prefix != "" {
			w.prefix = prefix
		}
	}
}

// WithWorkRoot places build workspaces under the given directory.
func WithWorkRoot(dir string) WorkerOption {
	return func(w *Worker) {
		if dir != "" {
			w.workRoot = dir
		}
	}
}

// WithJobs overrides the compile parallelism, mainly for tests.
func WithJobs(jobs int) WorkerOption {
	return func(w *Worker) {
		if jobs > 0 {
			w.jobs = jobs
		}
	}
}

// NewWorker creates a build worker.
func NewWorker(runner execx.Runner, checker *presence.Checker, fetcher *Fetcher, opts ...WorkerOption) *Worker {
	w := &Worker{
		runner:   runner,
		checker:  checker,
		fetcher:  fetcher,
		prefix:   DefaultPrefix,
		workRoot: os.TempDir(),
		jobs:     runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// BuildAndInstall runs the pipeline for one catalog entry and returns the
// installed interpreter's self-reported version. The scratch workspace is
// removed on every return path. A failure at any stage halts the pipeline
// and is reported as a stage-tagged *Error.
func (w *Worker) BuildAndInstall(ctx context.Context, entry catalog.VersionEntry) (string, error) {
	tracer := otel.Tracer("pyvers/build")
	ctx, span := tracer.Start(ctx, "build.version")
	span.SetAttributes(
		attribute.String("version.label", entry.Label),
		attribute.String("version.full", entry.Full),
	)
	defer span.End()

	// Workspace keyed by the full version so distinct versions never
	// collide. A leftover from an aborted run is cleared first.
	workspace := filepath.Join(w.workRoot, "pyvers-build-"+entry.Full)
	if err := os.RemoveAll(workspace); err != nil {
		return "", stageErr(entry.Full, StageFetch, fmt.Errorf("clear workspace: %w", err))
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return "", stageErr(entry.Full, StageFetch, fmt.Errorf("create workspace: %w", err))
	}
	defer os.RemoveAll(workspace)

	logger := log.With().Str("version", entry.Full).Logger()

	var archivePath string
	err := w.runStage(ctx, entry, StageFetch, func(ctx context.Context) error {
		logger.Info().Msg("Fetching source archive")
		var err error
		archivePath, err = w.fetcher.Fetch(ctx, entry.Full, workspace)
		return err
	})
	if err != nil {
		return "", err
	}

	srcDir := filepath.Join(workspace, "Python-"+entry.Full)
	err = w.runStage(ctx, entry, StageExtract, func(ctx context.Context) error {
		logger.Info().Msg("Extracting source archive")
		if err := extractTgz(archivePath, workspace); err != nil {
			return err
		}
		if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
			return fmt.Errorf("archive did not contain Python-%s", entry.Full)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	err = w.runStage(ctx, entry, StageConfigure, func(ctx context.Context) error {
		logger.Info().Str("prefix", w.prefix).Msg("Configuring build")
		args := append([]string{"--prefix=" + w.prefix}, configureFlags...)
		return w.runner.RunIn(ctx, srcDir, "./configure", args...)
	})
	if err != nil {
		return "", err
	}

	err = w.runStage(ctx, entry, StageCompile, func(ctx context.Context) error {
		logger.Info().Int("jobs", w.jobs).Msg("Compiling")
		return w.runner.RunIn(ctx, srcDir, "make", "-j"+strconv.Itoa(w.jobs))
	})
	if err != nil {
		return "", err
	}

	err = w.runStage(ctx, entry, StageInstall, func(ctx context.Context) error {
		// altinstall only: never touches the python3 binary.
		logger.Info().Msg("Installing (altinstall)")
		if err := w.runner.RunIn(ctx, srcDir, "sudo", "make", "altinstall"); err != nil {
			return err
		}
		return w.runner.Run(ctx, "sudo", "ldconfig")
	})
	if err != nil {
		return "", err
	}

	var installedVersion string
	err = w.runStage(ctx, entry, StageVerify, func(ctx context.Context) error {
		status := w.checker.Probe(ctx, entry.Executable())
		if !status.Installed {
			return fmt.Errorf("%s not resolvable after install", entry.Executable())
		}
		installedVersion = status.Version
		if installedVersion == "" {
			installedVersion = entry.Full
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	w.ensurePip(ctx, entry, logger)

	telemetry.RecordSuccess(span)
	logger.Info().Str("installed", installedVersion).Msg("Version installed")
	return installedVersion, nil
}

// runStage wraps one pipeline step in a trace span and tags its error with
// the stage name.
func (w *Worker) runStage(ctx context.Context, entry catalog.VersionEntry, stage Stage, fn func(context.Context) error) error {
	tracer := otel.Tracer("pyvers/build")
	ctx, span := tracer.Start(ctx, "build."+string(stage))
	defer span.End()

	if err := fn(ctx); err != nil {
		telemetry.RecordError(span, err)
		return stageErr(entry.Full, stage, err)
	}
	telemetry.RecordSuccess(span)
	return nil
}

// ensurePip bootstraps pip for the freshly installed interpreter when it
// is missing. A failed bootstrap is a degraded install, not a failed one.
func (w *Worker) ensurePip(ctx context.Context, entry catalog.VersionEntry, logger zerolog.Logger) {
	exe := entry.Executable()
	if _, err := w.runner.Output(ctx, exe, "-m", "pip", "--version"); err == nil {
		return
	}
	logger.Info().Msg("Bootstrapping pip")
	if err := w.runner.Run(ctx, "sudo", exe, "-m", "ensurepip", "--upgrade"); err != nil {
		logger.Warn().Err(err).Msg("pip bootstrap failed; interpreter works without it")
	}
}
