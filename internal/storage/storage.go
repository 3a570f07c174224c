package storage

import "time"

// Outcome of handling one verification attempt or join request.
const (
	OutcomeJoinApproved           = "join_approved"
	OutcomeJoinDeclinedNoBio      = "join_declined_no_bio"
	OutcomeJoinDeclinedIncomplete = "join_declined_incomplete"
	OutcomeJoinDeclinedNotFound   = "join_declined_not_found"
	OutcomeVerifiedDM             = "verified_dm"
	OutcomeNotFoundDM             = "not_found_dm"
	OutcomeEscalated              = "escalated"
)

// Event records one verification outcome. Events are appended in
// chronological order; the daily admin report is built from them.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Outcome   string    `json:"outcome"`
	FullName  string    `json:"full_name,omitempty"`
	Year      int       `json:"year,omitempty"`
	Klass     int       `json:"klass,omitempty"`
	Teacher   string    `json:"teacher,omitempty"`
}

// Recorder abstracts persistence of outcome events.
// Implementations can be file-based, database, etc.
// LoadOutcomes should return events in chronological order.
// AppendOutcome should atomically append a new event.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendOutcome(event Event) error
	LoadOutcomes() ([]Event, error)
}
