package journal

import (
	"context"
	"fmt"
	"time"
)

// Record is one journaled event.
type Record struct {
	// ID is a unique identifier assigned at recording time.
	ID string

	// Source is the event source (client_request, server_response, ...).
	Source string

	// Method and URL mirror the event's request fields, when present.
	Method string
	URL    string

	// Status mirrors the event's status field; 0 when absent.
	Status int

	// Body is the full serialized event JSON.
	Body []byte

	// EventTime is the event's own timestamp.
	EventTime time.Time

	// RecordedAt is when the record was written to the journal.
	RecordedAt time.Time
}

// Query selects journal records. Zero-valued fields match everything.
type Query struct {
	// Source filters by event source.
	Source string

	// Before matches records with EventTime strictly before this instant.
	Before *time.Time

	// Limit caps the number of returned records; 0 means no cap.
	Limit int
}

// Storage persists journal records.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, rec *Record) error

	// Query returns matching records ordered oldest first.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, q *Query) (int64, error)

	// DeleteBefore removes records with EventTime before the cutoff and
	// returns how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns how many
	// were removed.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Close releases backend resources.
	Close() error
}

// StorageError wraps a backend failure with the backend name and the
// operation that failed.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("journal storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func newStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}
