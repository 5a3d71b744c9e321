package repository

import (
	"context"
	"time"
)

// Status is the outcome of a transform attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
)

// TransformRecord describes one transform attempt. Canvas contents are never
// stored.
type TransformRecord struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Status       Status    `json:"status"`
	Color        string    `json:"color,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	Instruction  string    `json:"instruction,omitempty"`
	ImageCount   int       `json:"image_count"`
	ResultShape  string    `json:"result_shape_id,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
}

func (r *TransformRecord) validate() error {
	if r == nil || r.ID == "" || r.SessionID == "" || r.Status == "" {
		return ErrInvalidRecord
	}
	return nil
}

// TransformRepository stores transform history.
type TransformRepository interface {
	// Save inserts the record or replaces the one with the same id
	Save(ctx context.Context, rec *TransformRecord) error

	// Get retrieves a record by id
	Get(ctx context.Context, id string) (*TransformRecord, error)

	// ListBySession returns a session's records, oldest first
	ListBySession(ctx context.Context, sessionID string) ([]*TransformRecord, error)

	Close() error
}
