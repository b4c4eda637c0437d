package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/fwojciec/wpmirror"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ wpmirror.SessionService = (*SessionService)(nil)

// SessionService implements wpmirror.SessionService using SQLite.
// The archive_sessions table is an append-only run log.
type SessionService struct {
	db *DB
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSession appends a session record.
func (s *SessionService) CreateSession(ctx context.Context, session *wpmirror.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	session.ID = uuid.New().String()
	session.CreatedAt = time.Now().UTC()

	errorLog := session.ErrorLog
	if errorLog == nil {
		errorLog = []string{}
	}
	encoded, err := json.Marshal(errorLog)
	if err != nil {
		return wpmirror.Errorf(wpmirror.EINTERNAL, "failed to encode session errors: %v", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO archive_sessions (id, content_type, items_processed, items_new, items_updated, items_errors, errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.Description, session.Processed, session.New, session.Updated,
		session.Errors, string(encoded), session.CreatedAt.Format(time.RFC3339))

	return storageError(err)
}

// FindSessionByID retrieves a session by ID.
func (s *SessionService) FindSessionByID(ctx context.Context, id string) (*wpmirror.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content_type, items_processed, items_new, items_updated, items_errors, errors, created_at
		FROM archive_sessions
		WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, wpmirror.Errorf(wpmirror.ENOTFOUND, "session not found")
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// FindSessions retrieves sessions matching the filter, newest first.
func (s *SessionService) FindSessions(ctx context.Context, filter wpmirror.SessionFilter) ([]*wpmirror.Session, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, content_type, items_processed, items_new, items_updated, items_errors, errors, created_at
		FROM archive_sessions
		ORDER BY created_at DESC
	`)
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, storageError(err)
	}
	defer rows.Close()

	var sessions []*wpmirror.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, storageError(rows.Err())
}

// scanSession reads one archive_sessions row.
func scanSession(row rowScanner) (*wpmirror.Session, error) {
	var session wpmirror.Session
	var errorLog, createdAt string

	err := row.Scan(&session.ID, &session.Description, &session.Processed, &session.New,
		&session.Updated, &session.Errors, &errorLog, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, storageError(err)
	}

	if err := json.Unmarshal([]byte(errorLog), &session.ErrorLog); err != nil {
		return nil, wpmirror.Errorf(wpmirror.EINTERNAL, "failed to decode session errors: %v", err)
	}
	session.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &session, nil
}
