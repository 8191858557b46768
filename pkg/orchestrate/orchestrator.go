// Package orchestrate drives a whole installation run: mode selection,
// the per-version install loop, result aggregation, and the final
// summary.
package orchestrate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pyvers/pyvers/pkg/build"
	"github.com/pyvers/pyvers/pkg/catalog"
	"github.com/pyvers/pyvers/pkg/presence"
)

// BuildWorker installs a single version from source.
type BuildWorker interface {
	BuildAndInstall(ctx context.Context, entry catalog.VersionEntry) (string, error)
}

// DependencyInstaller satisfies the native build dependencies once per run.
type DependencyInstaller interface {
	Install(ctx context.Context) error
}

// Recorder persists the outcome of a completed run. A nil Recorder
// disables history.
type Recorder interface {
	Record(ctx context.Context, state *RunState) error
}

// Orchestrator owns the run loop. It is single-threaded by design: one
// version finishes completely before the next starts.
type Orchestrator struct {
	catalog  *catalog.Catalog
	checker  *presence.Checker
	deps     DependencyInstaller
	worker   BuildWorker
	recorder Recorder
	in       *bufio.Reader
	out      io.Writer
}

// New creates an orchestrator reading prompts from in and writing
// human-facing output to out.
func New(cat *catalog.Catalog, checker *presence.Checker, deps DependencyInstaller, worker BuildWorker, recorder Recorder, in io.Reader, out io.Writer) *Orchestrator {
	return &Orchestrator{
		catalog:  cat,
		checker:  checker,
		deps:     deps,
		worker:   worker,
		recorder: recorder,
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// Run executes a full installation run. When preselected is empty the
// mode is read interactively. The returned state is complete even when
// individual versions failed; the error is non-nil only for run-fatal
// conditions (dependency install failure, unreadable input).
func (o *Orchestrator) Run(ctx context.Context, preselected Mode) (*RunState, error) {
	o.showStatus(ctx)

	mode := preselected
	if mode == "" {
		var err error
		mode, err = o.selectMode()
		if err != nil {
			return nil, err
		}
	}

	state := &RunState{Mode: mode, StartedAt: time.Now()}
	if mode == ModeCancelled {
		state.FinishedAt = time.Now()
		fmt.Fprintln(o.out, "Cancelled. Nothing was changed.")
		return state, nil
	}

	if err := o.deps.Install(ctx); err != nil {
		return nil, err
	}

	if err := o.iterate(ctx, state); err != nil {
		return nil, err
	}
	state.FinishedAt = time.Now()

	o.printSummary(ctx, state)

	if o.recorder != nil {
		if err := o.recorder.Record(ctx, state); err != nil {
			log.Warn().Err(err).Msg("Failed to record run history")
		}
	}
	return state, nil
}

// showStatus prints the catalog with per-entry presence before the mode
// prompt, so the user decides with the full picture.
func (o *Orchestrator) showStatus(ctx context.Context) {
	fmt.Fprintln(o.out, "Available versions:")
	for _, entry := range o.catalog.Entries() {
		status := o.checker.Probe(ctx, entry.Executable())
		switch {
		case status.Installed && status.Version != "":
			fmt.Fprintf(o.out, "  %-6s -> %-8s [installed: %s]\n", entry.Label, entry.Full, status.Version)
		case status.Installed:
			fmt.Fprintf(o.out, "  %-6s -> %-8s [installed]\n", entry.Label, entry.Full)
		default:
			fmt.Fprintf(o.out, "  %-6s -> %-8s [not installed]\n", entry.Label, entry.Full)
		}
	}
	fmt.Fprintln(o.out)
}

// selectMode maps one line of input to a mode. Anything that is not an
// explicit "2" (all) or "3" (cancel) falls back to interactive: ambiguous
// input must never trigger a bulk install.
func (o *Orchestrator) selectMode() (Mode, error) {
	fmt.Fprintln(o.out, "Install mode:")
	fmt.Fprintln(o.out, "  1) Ask before each version (default)")
	fmt.Fprintln(o.out, "  2) Install all missing versions")
	fmt.Fprintln(o.out, "  3) Cancel")
	fmt.Fprint(o.out, "Choice [1]: ")

	line, err := o.readLine()
	if err != nil {
		// A closed stdin means nobody is answering; cancel before any
		// host state changes rather than assume a mode.
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(o.out)
			return ModeCancelled, nil
		}
		return "", err
	}
	switch strings.TrimSpace(line) {
	case "2":
		return ModeAll, nil
	case "3":
		return ModeCancelled, nil
	default:
		return ModeInteractive, nil
	}
}

// iterate walks the catalog in ascending order. Failures are isolated per
// version: a failed build records its outcome and the loop moves on.
func (o *Orchestrator) iterate(ctx context.Context, state *RunState) error {
	for _, entry := range o.catalog.Entries() {
		// A quit answer transitions the whole run to cancelled; remaining
		// entries are never visited and record nothing.
		if state.Cancelled {
			return nil
		}

		status := o.checker.Probe(ctx, entry.Executable())
		if status.Installed {
			fmt.Fprintf(o.out, "Python %s is already installed", entry.Label)
			if status.Version != "" {
				fmt.Fprintf(o.out, " (%s)", status.Version)
			}
			fmt.Fprintln(o.out, ", skipping.")
			state.Results = append(state.Results, VersionResult{Entry: entry, Outcome: OutcomeAlreadyPresent, InstalledVersion: status.Version})
			continue
		}

		if state.Mode == ModeInteractive {
			choice, err := o.promptInstall(entry)
			if err != nil {
				return err
			}
			switch choice {
			case answerNo:
				state.Results = append(state.Results, VersionResult{Entry: entry, Outcome: OutcomeSkipped})
				continue
			case answerQuit:
				state.Cancelled = true
				continue
			case answerAll:
				// This version and everything after it installs without
				// further prompts.
				state.Mode = ModeAll
			}
		}

		o.install(ctx, state, entry)
	}
	return nil
}

type answer int

const (
	answerYes answer = iota
	answerNo
	answerQuit
	answerAll
)

// promptInstall asks about one version and re-asks until it gets one of
// the four recognized answers.
func (o *Orchestrator) promptInstall(entry catalog.VersionEntry) (answer, error) {
	for {
		fmt.Fprintf(o.out, "Install Python %s (%s)? [Y/n/q/a]: ", entry.Label, entry.Full)
		line, err := o.readLine()
		if err != nil {
			// EOF is not an answer. Only an explicit empty line defaults
			// to yes; a vanished stdin cancels the remaining versions.
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(o.out)
				log.Warn().Msg("Input closed; cancelling remaining versions")
				return answerQuit, nil
			}
			return answerQuit, err
		}
		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "", "Y":
			return answerYes, nil
		case "N":
			return answerNo, nil
		case "Q":
			return answerQuit, nil
		case "A":
			return answerAll, nil
		default:
			fmt.Fprintln(o.out, "Please answer Y, N, Q or A.")
		}
	}
}

// install runs the build worker for one entry and records the outcome.
func (o *Orchestrator) install(ctx context.Context, state *RunState, entry catalog.VersionEntry) {
	start := time.Now()
	installed, err := o.worker.BuildAndInstall(ctx, entry)
	elapsed := time.Since(start)

	if err != nil {
		result := VersionResult{Entry: entry, Outcome: OutcomeFailed, Err: err, Duration: elapsed}
		var buildErr *build.Error
		if errors.As(err, &buildErr) {
			result.FailedStage = buildErr.Stage
		}
		state.Results = append(state.Results, result)
		state.FailedLabels = append(state.FailedLabels, entry.Label)
		log.Error().Err(err).Str("version", entry.Label).Msg("Installation failed")
		return
	}

	state.Results = append(state.Results, VersionResult{
		Entry:            entry,
		Outcome:          OutcomeInstalled,
		InstalledVersion: installed,
		Duration:         elapsed,
	})
	state.InstalledCount++
}

// readLine returns one line of input. A final line without a trailing
// newline still counts as input; EOF with no data is reported as io.EOF
// so callers can tell a closed stdin apart from an entered empty line.
func (o *Orchestrator) readLine() (string, error) {
	line, err := o.in.ReadString('\n')
	if err != nil {
		if len(line) > 0 {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return line, nil
}
