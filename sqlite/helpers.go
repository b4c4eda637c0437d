package sqlite

import (
	"strings"
	"time"

	"github.com/fwojciec/wpmirror"
)

// parseRFC3339 parses a timestamp column stored as RFC 3339 TEXT.
// A row that fails to parse indicates store corruption, so the error
// carries EINTERNAL.
func parseRFC3339(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, wpmirror.Errorf(wpmirror.EINTERNAL, "invalid %s timestamp %q: %v", column, value, err)
	}
	return t, nil
}

// appendPagination appends LIMIT/OFFSET clauses for positive values.
// SQLite rejects a bare OFFSET, so an offset without a limit gets
// LIMIT -1 (unlimited).
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	switch {
	case limit > 0:
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	case offset > 0:
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
