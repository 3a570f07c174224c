package roster

import (
	"context"
	"time"
)

// Record is one row of the alumni roster. The roster itself is owned by
// the external store; this package only reads it and, after a successful
// match, marks the record as present in the chat.
type Record struct {
	FullName string
	Year     int
	Klass    int
}

// Repository abstracts the roster store so the matcher is testable
// without a live database.
type Repository interface {
	// FindCandidates returns all records with exactly the given
	// graduation year and class number.
	FindCandidates(ctx context.Context, year, klass int) ([]Record, error)
	// RecordEnrollment marks a matched record as present in the chat,
	// storing the user's contact handle and the date of entry.
	RecordEnrollment(ctx context.Context, rec Record, handle string, when time.Time) error
}
