package stores

import (
	"context"

	"github.com/google/uuid"

	"github.com/pyvers/pyvers/pkg/orchestrate"
)

// RunRecorder adapts the history store to the orchestrator's Recorder.
type RunRecorder struct {
	store *HistoryStore
}

// NewRunRecorder wraps a history store.
func NewRunRecorder(store *HistoryStore) *RunRecorder {
	return &RunRecorder{store: store}
}

// Record converts a finished run state into history rows.
func (r *RunRecorder) Record(ctx context.Context, state *orchestrate.RunState) error {
	run := RunRecord{
		ID:             uuid.New().String(),
		Mode:           string(state.Mode),
		InstalledCount: state.InstalledCount,
		AlreadyPresent: state.CountOutcome(orchestrate.OutcomeAlreadyPresent),
		Skipped:        state.CountOutcome(orchestrate.OutcomeSkipped),
		FailedLabels:   state.FailedLabels,
		Cancelled:      state.Cancelled,
		StartedAt:      state.StartedAt,
		FinishedAt:     state.FinishedAt,
	}

	outcomes := make([]OutcomeRecord, 0, len(state.Results))
	for i, res := range state.Results {
		outcomes = append(outcomes, OutcomeRecord{
			RunID:            run.ID,
			Position:         i,
			Label:            res.Entry.Label,
			FullVersion:      res.Entry.Full,
			Outcome:          string(res.Outcome),
			InstalledVersion: res.InstalledVersion,
			FailedStage:      string(res.FailedStage),
			Duration:         res.Duration,
		})
	}

	return r.store.SaveRun(ctx, run, outcomes)
}
