// Package job implements the DocFlow extraction job system: the job
// record lifecycle, the in-memory job store, the bounded worker pool
// that drives the extraction engine, and the manager facade consumed by
// the HTTP boundary.
//
// Job state lives only in memory. A process restart loses all in-flight
// and recent job records; clients resubmit. This is deliberate for a
// single backend instance, not an oversight.
package job

import (
	"time"

	"github.com/google/uuid"

	"github.com/docflow/docflow/extract"
)

// Status represents the current state of a job
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transitions are possible
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsValidStatus returns true if the status string is a valid Status
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Record is one unit of extraction work and its observable state.
//
// Transitions are one-directional:
//
//	pending -> processing -> {completed|failed|cancelled}
//	pending -> cancelled            (cancel before a worker claims it)
//
// Only the owning worker and the cancellation path mutate a record, and
// all mutation goes through Store.Update, so readers always see either
// the pre- or post-mutation state.
type Record struct {
	ID           string          `json:"job_id"`
	DocumentName string          `json:"document_name,omitempty"`
	Status       Status          `json:"status"`
	Progress     int             `json:"progress"` // 0-100, monotone while processing
	Message      string          `json:"message,omitempty"`
	Result       *extract.Result `json:"result,omitempty"` // set iff status == completed
	Error        string          `json:"error,omitempty"`  // set iff status == failed
	CreatedAt    time.Time       `json:"created_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// CancelRequested is consulted cooperatively by the worker at its
	// checkpoints; it is never exposed as a status of its own.
	CancelRequested bool `json:"-"`
}

// NewRecord creates a pending record with a fresh id
func NewRecord(documentName string) Record {
	now := time.Now()
	return Record{
		ID:           uuid.NewString(),
		DocumentName: documentName,
		Status:       StatusPending,
		Progress:     0,
		Message:      "queued for processing",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Start marks the record as processing
func (r *Record) Start() {
	now := time.Now()
	r.Status = StatusProcessing
	r.StartedAt = &now
	r.UpdatedAt = now
}

// Complete marks the record as completed with the engine's result
func (r *Record) Complete(result *extract.Result) {
	now := time.Now()
	r.Status = StatusCompleted
	r.Result = result
	r.Progress = 100
	r.Message = "extraction completed"
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// Fail marks the record as failed with an error message
func (r *Record) Fail(err error) {
	now := time.Now()
	r.Status = StatusFailed
	r.Error = err.Error()
	r.Message = "extraction failed"
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// Cancel marks the record as cancelled with a reason
func (r *Record) Cancel(reason string) {
	now := time.Now()
	r.Status = StatusCancelled
	r.Message = reason
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// UpdateProgress advances progress and message. Progress never moves
// backwards: stale or out-of-order updates are clamped.
func (r *Record) UpdateProgress(pct int, message string) {
	if pct > 100 {
		pct = 100
	}
	if pct > r.Progress {
		r.Progress = pct
	}
	if message != "" {
		r.Message = message
	}
	r.UpdatedAt = time.Now()
}
