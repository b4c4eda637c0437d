package mock

import (
	"context"

	"github.com/fwojciec/wpmirror"
)

var _ wpmirror.SessionService = (*SessionService)(nil)

// SessionService is a mock implementation of wpmirror.SessionService.
type SessionService struct {
	CreateSessionFn   func(ctx context.Context, session *wpmirror.Session) error
	FindSessionByIDFn func(ctx context.Context, id string) (*wpmirror.Session, error)
	FindSessionsFn    func(ctx context.Context, filter wpmirror.SessionFilter) ([]*wpmirror.Session, error)
}

func (s *SessionService) CreateSession(ctx context.Context, session *wpmirror.Session) error {
	return s.CreateSessionFn(ctx, session)
}

func (s *SessionService) FindSessionByID(ctx context.Context, id string) (*wpmirror.Session, error) {
	return s.FindSessionByIDFn(ctx, id)
}

func (s *SessionService) FindSessions(ctx context.Context, filter wpmirror.SessionFilter) ([]*wpmirror.Session, error) {
	return s.FindSessionsFn(ctx, filter)
}
