// Package archive provides mirroring orchestration. It coordinates
// fetching remote content pages, change detection against the version
// store, and session bookkeeping.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/wpmirror"
)

const (
	// DefaultPageSize is the number of items requested per page.
	DefaultPageSize = 100

	// DefaultEmptyPageLimit is the number of consecutive pages with no
	// items passing the date filter tolerated before a kind is abandoned.
	DefaultEmptyPageLimit = 10
)

// Archiver orchestrates mirroring a remote site into the version store.
type Archiver struct {
	Source   wpmirror.Source
	Contents wpmirror.ContentService
	Sessions wpmirror.SessionService
	Logger   *slog.Logger

	PageSize       int
	EmptyPageLimit int
}

// Options configures a single archive run.
type Options struct {
	// Kinds selects which content kinds to mirror. Empty means all.
	Kinds []wpmirror.Kind

	// Limit caps the number of items processed per kind. Zero means
	// no limit.
	Limit int

	// After skips items published before the given time. Only dated
	// kinds are filtered; undated kinds are always mirrored in full.
	After time.Time
}

// Stats accumulates the outcome counts of an archive run. Processed
// counts every item attempted, including items whose extraction or
// recording failed.
type Stats struct {
	Processed int
	New       int
	Updated   int
	Errors    int
	ErrorLog  []string
}

func (s *Stats) merge(other *Stats) {
	s.Processed += other.Processed
	s.New += other.New
	s.Updated += other.Updated
	s.Errors += other.Errors
	s.ErrorLog = append(s.ErrorLog, other.ErrorLog...)
}

// Run verifies the remote site and mirrors the selected kinds. Every
// run writes a session record, including failed and interrupted runs.
// An interrupted run returns ECANCELED after persisting whatever was
// processed so far.
func (a *Archiver) Run(ctx context.Context, domain string, opts Options) (*Stats, error) {
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = wpmirror.Kinds()
	}

	if err := a.Source.Verify(ctx); err != nil {
		session := &wpmirror.Session{
			Description: fmt.Sprintf("FAILED VERIFICATION - %s - %s", domain, wpmirror.ErrorMessage(err)),
			Errors:      1,
			ErrorLog:    []string{wpmirror.ErrorMessage(err)},
		}
		if serr := a.Sessions.CreateSession(ctx, session); serr != nil {
			return nil, serr
		}
		return nil, err
	}

	stats := &Stats{}
	for _, kind := range kinds {
		kindStats, err := a.archiveKind(ctx, kind, opts)
		stats.merge(kindStats)
		if err != nil {
			session := &wpmirror.Session{
				Description: "INTERRUPTED - " + describeArchive(domain, kinds),
				Processed:   stats.Processed,
				New:         stats.New,
				Updated:     stats.Updated,
				Errors:      stats.Errors,
				ErrorLog:    stats.ErrorLog,
			}
			if serr := a.Sessions.CreateSession(context.WithoutCancel(ctx), session); serr != nil {
				return stats, serr
			}
			return stats, err
		}
	}

	session := &wpmirror.Session{
		Description: describeRun(domain, kinds),
		Processed:   stats.Processed,
		New:         stats.New,
		Updated:     stats.Updated,
		Errors:      stats.Errors,
		ErrorLog:    stats.ErrorLog,
	}
	if err := a.Sessions.CreateSession(ctx, session); err != nil {
		return stats, err
	}
	return stats, nil
}

// archiveKind pages through one content kind and records each item's
// outcome. The kind is done when the remote serves an empty page, when
// the reported page total is reached, or when too many consecutive
// pages had every item filtered out by the cutoff date. Page fetch
// failures abandon the kind but not the run; per-item failures are
// counted and skipped.
func (a *Archiver) archiveKind(ctx context.Context, kind wpmirror.Kind, opts Options) (*Stats, error) {
	stats := &Stats{}

	perPage := a.PageSize
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	if opts.Limit > 0 && opts.Limit < perPage {
		perPage = opts.Limit
	}
	zeroPassLimit := a.EmptyPageLimit
	if zeroPassLimit <= 0 {
		zeroPassLimit = DefaultEmptyPageLimit
	}

	page := 1
	zeroPassPages := 0
	for {
		if ctx.Err() != nil {
			return stats, wpmirror.Errorf(wpmirror.ECANCELED, "archive of %s interrupted", kind)
		}

		remote, err := a.Source.FetchPage(ctx, kind, wpmirror.FetchOptions{
			Page:    page,
			PerPage: perPage,
			After:   opts.After,
		})
		if err != nil {
			if ctx.Err() != nil {
				return stats, wpmirror.Errorf(wpmirror.ECANCELED, "archive of %s interrupted", kind)
			}
			stats.Errors++
			stats.ErrorLog = append(stats.ErrorLog, fmt.Sprintf("%s page %d: %s", kind, page, wpmirror.ErrorMessage(err)))
			a.logger().Warn("page fetch failed", "kind", kind, "page", page, "error", err)
			return stats, nil
		}

		// An empty page means the collection is exhausted.
		if len(remote.Items) == 0 {
			return stats, nil
		}

		passed := 0
		for _, item := range remote.Items {
			if ctx.Err() != nil {
				return stats, wpmirror.Errorf(wpmirror.ECANCELED, "archive of %s interrupted", kind)
			}

			if skipBefore(kind, item, opts.After) {
				continue
			}
			passed++
			stats.Processed++

			content, err := wpmirror.ExtractContent(kind, item)
			if err == nil {
				var outcome wpmirror.Outcome
				outcome, err = a.Contents.RecordOutcome(ctx, content)
				if err == nil {
					switch outcome {
					case wpmirror.OutcomeCreated:
						stats.New++
					case wpmirror.OutcomeUpdated:
						stats.Updated++
					}
					a.logger().Debug("item recorded", "kind", kind, "id", content.RemoteID, "outcome", outcome, "version", content.Version)
				}
			}
			if err != nil {
				stats.Errors++
				stats.ErrorLog = append(stats.ErrorLog, fmt.Sprintf("%s %d: %s", kind, item.Int("id"), wpmirror.ErrorMessage(err)))
			}

			if opts.Limit > 0 && stats.Processed >= opts.Limit {
				return stats, nil
			}
		}

		// Guard against sources that keep serving filtered-out pages
		// without ever reporting a page total.
		if passed == 0 {
			zeroPassPages++
			if zeroPassPages >= zeroPassLimit {
				a.logger().Warn("too many consecutive pages with no items past the cutoff, stopping", "kind", kind, "page", page)
				return stats, nil
			}
		} else {
			zeroPassPages = 0
		}

		if remote.TotalPages > 0 && page >= remote.TotalPages {
			return stats, nil
		}
		page++
	}
}

func (a *Archiver) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// skipBefore reports whether an item predates the cutoff. Undated
// kinds and items with unparseable dates are never skipped: the remote
// filter may have passed them through, and mirroring an extra item is
// safer than silently missing one.
func skipBefore(kind wpmirror.Kind, item wpmirror.Item, after time.Time) bool {
	if after.IsZero() || !kind.Dated() {
		return false
	}
	date, ok := itemDate(item)
	if !ok {
		return false
	}
	return date.Before(after)
}

// itemDate parses the item's publication date. WordPress serializes
// dates without a timezone suffix, but some sites send full RFC 3339.
func itemDate(item wpmirror.Item) (time.Time, bool) {
	raw := item.String("date")
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func describeRun(domain string, kinds []wpmirror.Kind) string {
	if len(kinds) == 1 {
		return string(kinds[0])
	}
	return describeArchive(domain, kinds)
}

// describeArchive builds the long "Archive of <domain> - <kinds>" form.
// Interrupted sessions always use it, even for single-kind runs.
func describeArchive(domain string, kinds []wpmirror.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return fmt.Sprintf("Archive of %s - %s", domain, strings.Join(names, ", "))
}
