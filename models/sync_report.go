package models

import "time"

// Per-symbol sync outcome statuses.
const (
	SyncStatusUpdated = "updated"
	SyncStatusSkipped = "skipped"
	SyncStatusFailed  = "failed"
)

// SyncOutcome records what happened to one symbol during a sync run.
type SyncOutcome struct {
	Symbol string `json:"symbol"`
	Status string `json:"status"` // updated, skipped, failed
	Rows   int    `json:"rows"`
	Reason string `json:"reason,omitempty"`
}

// SyncReport aggregates per-symbol outcomes for a whole sync run. No error
// escapes a multi-symbol sync; callers inspect the report instead.
type SyncReport struct {
	Mode       string        `json:"mode"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Outcomes   []SyncOutcome `json:"outcomes"`
}

// Add appends an outcome and bumps the matching counter.
func (r *SyncReport) Add(outcome SyncOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Status {
	case SyncStatusUpdated:
		r.Updated++
	case SyncStatusSkipped:
		r.Skipped++
	case SyncStatusFailed:
		r.Failed++
	}
}

// FailedSymbols returns the symbols whose sync failed, for callers that
// want to retry or alert on them.
func (r *SyncReport) FailedSymbols() []string {
	var failed []string
	for _, o := range r.Outcomes {
		if o.Status == SyncStatusFailed {
			failed = append(failed, o.Symbol)
		}
	}
	return failed
}
