package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"congress-hq/dashboard/pkg/violations"
)

// ErrNotFound is returned by Get for an unknown scan ID.
var ErrNotFound = errors.New("scan not found")

// Scan is one recorded violation scan.
type Scan struct {
	ID        string               `json:"id"`
	StartedAt time.Time            `json:"started_at"`
	Duration  time.Duration        `json:"duration_ns"`
	Summaries []violations.Summary `json:"summaries"`
	Skipped   []violations.Skip    `json:"skipped,omitempty"`
}

// NewScan wraps a scan report with a fresh ID.
func NewScan(report violations.Report, startedAt time.Time, duration time.Duration) *Scan {
	return &Scan{
		ID:        uuid.NewString(),
		StartedAt: startedAt.UTC(),
		Duration:  duration,
		Summaries: report.Summaries,
		Skipped:   report.Skipped,
	}
}

// Errors returns the total error rows across policies.
func (s *Scan) Errors() int {
	n := 0
	for _, sum := range s.Summaries {
		n += sum.Errors()
	}
	return n
}

// Warnings returns the total warning rows across policies.
func (s *Scan) Warnings() int {
	n := 0
	for _, sum := range s.Summaries {
		n += sum.Warnings()
	}
	return n
}

// Summary returns the summary of the named policy, if it had violations.
func (s *Scan) Summary(policy string) (violations.Summary, bool) {
	for _, sum := range s.Summaries {
		if sum.Name == policy {
			return sum, true
		}
	}
	return violations.Summary{}, false
}

// Query filters List results. Zero values disable a filter.
type Query struct {
	// Limit caps the number of scans returned, newest first.
	Limit int

	// Since drops scans started before it.
	Since time.Time

	// Policy keeps only scans in which the named policy had violations.
	Policy string
}

// Store persists scans.
type Store interface {
	// Record stores a scan. Recording an ID twice is an error.
	Record(ctx context.Context, scan *Scan) error

	// List returns matching scans, newest first.
	List(ctx context.Context, query Query) ([]*Scan, error)

	// Get returns one scan or ErrNotFound.
	Get(ctx context.Context, id string) (*Scan, error)

	// Prune deletes all but the newest keep scans and returns how many were
	// deleted. keep <= 0 deletes nothing.
	Prune(ctx context.Context, keep int) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// StorageError is a failed store operation.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history %s %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

func newStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
