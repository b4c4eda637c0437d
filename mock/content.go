package mock

import (
	"context"

	"github.com/fwojciec/wpmirror"
)

var _ wpmirror.ContentService = (*ContentService)(nil)

// ContentService is a mock implementation of wpmirror.ContentService.
type ContentService struct {
	RecordOutcomeFn     func(ctx context.Context, content *wpmirror.Content) (wpmirror.Outcome, error)
	AppendVersionFn     func(ctx context.Context, content *wpmirror.Content) error
	LatestFingerprintFn func(ctx context.Context, kind wpmirror.Kind, remoteID int64) (string, error)
	LatestVersionFn     func(ctx context.Context, kind wpmirror.Kind, remoteID int64) (int, error)
	FindContentFn       func(ctx context.Context, filter wpmirror.ContentFilter) ([]*wpmirror.Content, error)
	ContentVersionsFn   func(ctx context.Context, kind wpmirror.Kind, remoteID int64) ([]*wpmirror.Content, error)
	StatsFn             func(ctx context.Context) (map[wpmirror.Kind]int, error)
}

func (s *ContentService) RecordOutcome(ctx context.Context, content *wpmirror.Content) (wpmirror.Outcome, error) {
	return s.RecordOutcomeFn(ctx, content)
}

func (s *ContentService) AppendVersion(ctx context.Context, content *wpmirror.Content) error {
	return s.AppendVersionFn(ctx, content)
}

func (s *ContentService) LatestFingerprint(ctx context.Context, kind wpmirror.Kind, remoteID int64) (string, error) {
	return s.LatestFingerprintFn(ctx, kind, remoteID)
}

func (s *ContentService) LatestVersion(ctx context.Context, kind wpmirror.Kind, remoteID int64) (int, error) {
	return s.LatestVersionFn(ctx, kind, remoteID)
}

func (s *ContentService) FindContent(ctx context.Context, filter wpmirror.ContentFilter) ([]*wpmirror.Content, error) {
	return s.FindContentFn(ctx, filter)
}

func (s *ContentService) ContentVersions(ctx context.Context, kind wpmirror.Kind, remoteID int64) ([]*wpmirror.Content, error) {
	return s.ContentVersionsFn(ctx, kind, remoteID)
}

func (s *ContentService) Stats(ctx context.Context) (map[wpmirror.Kind]int, error) {
	return s.StatsFn(ctx)
}
