package domain

import "time"

// JobStatus enumerates AI generation job lifecycle states. A job starts at
// pending and is moved to exactly one terminal state by the worker; the API
// side only ever reads the status.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is one the worker will never overwrite.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one persisted AI protocol-generation request and its eventual
// outcome. Prompt and PractitionerID are immutable after creation. ResultJSON
// is populated only on completed jobs, ErrorMessage only on failed ones.
type Job struct {
	ID             string
	PractitionerID string
	Prompt         string
	Status         JobStatus
	ResultJSON     []byte
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
