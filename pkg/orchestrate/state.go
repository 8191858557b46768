package orchestrate

import (
	"time"

	"github.com/pyvers/pyvers/pkg/build"
	"github.com/pyvers/pyvers/pkg/catalog"
)

// Mode is the install mode chosen at the start of a run.
type Mode string

const (
	// ModeInteractive prompts before each not-yet-present version.
	ModeInteractive Mode = "interactive"
	// ModeAll installs every not-yet-present version without prompting.
	ModeAll Mode = "all"
	// ModeCancelled ends the run before anything is touched.
	ModeCancelled Mode = "cancelled"
)

// Outcome is the per-version result of a run.
type Outcome string

const (
	OutcomeAlreadyPresent Outcome = "already_present"
	OutcomeInstalled      Outcome = "installed"
	OutcomeFailed         Outcome = "failed"
	OutcomeSkipped        Outcome = "skipped"
)

// VersionResult records what happened to one catalog entry. Results are
// append-only: once the loop moves past an entry its result never changes.
type VersionResult struct {
	Entry            catalog.VersionEntry
	Outcome          Outcome
	InstalledVersion string
	FailedStage      build.Stage
	Err              error
	Duration         time.Duration
}

// RunState is the orchestrator's working state, threaded through the
// iteration loop and read-only once the summary prints.
type RunState struct {
	Mode           Mode
	InstalledCount int
	FailedLabels   []string
	Results        []VersionResult
	StartedAt      time.Time
	FinishedAt     time.Time
	// Cancelled is set when the user quits out of the iteration loop.
	Cancelled bool
}

// CountOutcome returns how many results carry the given outcome.
func (s *RunState) CountOutcome(outcome Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}
