package wpmirror

import (
	"context"
	"time"
)

// Session summarizes one archive run. Sessions are an append-only log:
// a record is written for every run outcome, including interrupted runs
// and failed site verification.
//
// Description follows one of four literal shapes the browsing layer
// parses back:
//
//	"<kind>"                                      single-kind run
//	"Archive of <domain> - <kind1>, <kind2>, ..." comprehensive run
//	"INTERRUPTED - Archive of <domain> - <kinds>" interrupted run
//	"FAILED VERIFICATION - <domain> - <reason>"   verification failure
type Session struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Processed   int       `json:"itemsProcessed"`
	New         int       `json:"itemsNew"`
	Updated     int       `json:"itemsUpdated"`
	Errors      int       `json:"itemsErrors"`
	ErrorLog    []string  `json:"errorLog"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the session contains invalid fields.
func (s *Session) Validate() error {
	if s.Description == "" {
		return Errorf(EINVALID, "session description required")
	}
	return nil
}

// SessionFilter represents a filter for FindSessions.
type SessionFilter struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SessionService persists the append-only archive session log.
type SessionService interface {
	// CreateSession appends a session record.
	CreateSession(ctx context.Context, session *Session) error

	// FindSessionByID retrieves a session by ID.
	// Returns ENOTFOUND if the session does not exist.
	FindSessionByID(ctx context.Context, id string) (*Session, error)

	// FindSessions retrieves sessions matching the filter, newest first.
	FindSessions(ctx context.Context, filter SessionFilter) ([]*Session, error)
}
