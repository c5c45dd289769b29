package entity

import "time"

// Rebuild run status
const (
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
	RunStatusSkipped   = "SKIPPED"
)

// PopulateResult is the outcome of a populate request
type PopulateResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Error         string `json:"error,omitempty"`
	Matched       int    `json:"matched"`
	AirOnly       int    `json:"air_only"`
	CaterOnly     int    `json:"cater_only"`
	Total         int    `json:"total"`
	ExistingCount int64  `json:"existing_count,omitempty"`
	DurationMs    int64  `json:"duration_ms"`
	RunID         string `json:"run_id,omitempty"`
}

// RebuildRun is the audit entry written for every populate request
type RebuildRun struct {
	ID          string    `bson:"_id" json:"id"`
	StartedAt   time.Time `bson:"startedAt" json:"started_at"`
	FinishedAt  time.Time `bson:"finishedAt" json:"finished_at"`
	Forced      bool      `bson:"forced" json:"forced"`
	Status      string    `bson:"status" json:"status"`
	Matched     int       `bson:"matched" json:"matched"`
	AirOnly     int       `bson:"airOnly" json:"air_only"`
	CaterOnly   int       `bson:"caterOnly" json:"cater_only"`
	Total       int       `bson:"total" json:"total"`
	DurationMs  int64     `bson:"durationMs" json:"duration_ms"`
	ErrorDetail string    `bson:"errorDetail,omitempty" json:"error_detail,omitempty"`
}

// RebuildEvent is published once a rebuild has been committed
type RebuildEvent struct {
	RunID       string `json:"run_id"`
	Forced      bool   `json:"forced"`
	Matched     int    `json:"matched"`
	AirOnly     int    `json:"air_only"`
	CaterOnly   int    `json:"cater_only"`
	Total       int    `json:"total"`
	CompletedAt string `json:"completed_at"`
}
