// Package slog provides logging decorators for wpmirror services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wpmirror"
)

// Ensure LoggingSource implements wpmirror.Source.
var _ wpmirror.Source = (*LoggingSource)(nil)

// LoggingSource wraps a Source with debug logging.
type LoggingSource struct {
	next   wpmirror.Source
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next wpmirror.Source, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// Verify delegates to the wrapped source and logs the operation.
func (s *LoggingSource) Verify(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("site verification",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Verify(ctx)
}

// FetchPage delegates to the wrapped source and logs the operation.
func (s *LoggingSource) FetchPage(ctx context.Context, kind wpmirror.Kind, opts wpmirror.FetchOptions) (page *wpmirror.RemotePage, err error) {
	defer func(begin time.Time) {
		count := 0
		if page != nil {
			count = len(page.Items)
		}
		s.logger.Debug("page fetch",
			"kind", kind,
			"page", opts.Page,
			"count", count,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchPage(ctx, kind, opts)
}
