package stores

import "time"

// RunRecord is one completed installation run.
type RunRecord struct {
	ID             string    `json:"id"`
	Mode           string    `json:"mode"`
	InstalledCount int       `json:"installed_count"`
	AlreadyPresent int       `json:"already_present"`
	Skipped        int       `json:"skipped"`
	FailedLabels   []string  `json:"failed_labels"`
	Cancelled      bool      `json:"cancelled"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// OutcomeRecord is the stored result of one version within a run.
type OutcomeRecord struct {
	RunID            string        `json:"run_id"`
	Position         int           `json:"position"`
	Label            string        `json:"label"`
	FullVersion      string        `json:"full_version"`
	Outcome          string        `json:"outcome"`
	InstalledVersion string        `json:"installed_version,omitempty"`
	FailedStage      string        `json:"failed_stage,omitempty"`
	Duration         time.Duration `json:"duration"`
}
