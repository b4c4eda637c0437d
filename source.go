package wpmirror

import (
	"context"
	"time"
)

// Item is a loosely-typed record as returned by the remote API.
// The extractor converts items into canonical Content records at the
// boundary; internal code never touches this shape again.
type Item map[string]any

// RemotePage is one page of items from the remote content source,
// with the remote-reported collection totals.
type RemotePage struct {
	Items      []Item
	TotalItems int
	TotalPages int
}

// FetchOptions control a single page fetch.
type FetchOptions struct {
	Page    int
	PerPage int
	// After limits results to items published after this instant, for
	// kinds where the remote API supports the filter. Zero means no
	// filter.
	After time.Time
}

// ParseAfterDate parses a cutoff date in either date-only or date-time
// form, as accepted on the command line.
func ParseAfterDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Time{}, Errorf(EINVALID, "invalid date %q: expected YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS", s)
}

// Source is a paginated remote content source.
// Implementations hide transport, timeouts and rate limiting.
type Source interface {
	// Verify checks that the remote site is reachable and actually
	// serves the expected content API. Returns EUNAVAILABLE otherwise.
	Verify(ctx context.Context) error

	// FetchPage retrieves one page of items of the given kind.
	// An out-of-range page yields an empty page, not an error.
	FetchPage(ctx context.Context, kind Kind, opts FetchOptions) (*RemotePage, error)
}
