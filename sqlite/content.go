package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/wpmirror"
)

// Compile-time interface verification.
var _ wpmirror.ContentService = (*ContentService)(nil)

// ContentService implements wpmirror.ContentService using SQLite.
// One append-only table per content kind; rows are immutable once written.
type ContentService struct {
	db *DB
}

// NewContentService creates a new ContentService.
func NewContentService(db *DB) *ContentService {
	return &ContentService{db: db}
}

// tableFor maps a content kind to its table name. Kinds are mapped
// explicitly so a kind value can never reach string-built SQL unchecked.
func tableFor(kind wpmirror.Kind) (string, error) {
	switch kind {
	case wpmirror.KindPosts:
		return "posts", nil
	case wpmirror.KindComments:
		return "comments", nil
	case wpmirror.KindPages:
		return "pages", nil
	case wpmirror.KindUsers:
		return "users", nil
	case wpmirror.KindCategories:
		return "categories", nil
	case wpmirror.KindTags:
		return "tags", nil
	}
	return "", wpmirror.Errorf(wpmirror.EINVALID, "unknown content kind %q", kind)
}

// selectColumns returns the column list used by every read of the kind's table.
func selectColumns(kind wpmirror.Kind) string {
	switch kind {
	case wpmirror.KindPosts, wpmirror.KindPages:
		return "wp_id, title, content, excerpt, author_id, date_created, date_modified, status, content_hash, version, created_at"
	case wpmirror.KindComments:
		return "wp_id, post_id, parent_id, author_name, author_email, author_url, content, date_created, status, content_hash, version, created_at"
	case wpmirror.KindUsers:
		return "wp_id, name, url, description, link, slug, avatar_urls, content_hash, version, created_at"
	default: // categories, tags
		return "wp_id, name, description, link, slug, taxonomy, parent, count, content_hash, version, created_at"
	}
}

// storageError maps low-level database errors onto application codes:
// a uniqueness violation on (wp_id, version) is ECONFLICT, everything
// else EINTERNAL.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return wpmirror.Errorf(wpmirror.ECONFLICT, "version already exists: %v", err)
	}
	return wpmirror.Errorf(wpmirror.EINTERNAL, "storage failure: %v", err)
}

// executor is satisfied by both *DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// RecordOutcome performs the change-detection decision for one fetched item.
// The latest-fingerprint read and the conditional append run in a single
// transaction, so two conflicting "version N" rows can never be written
// for the same remote ID.
func (s *ContentService) RecordOutcome(ctx context.Context, content *wpmirror.Content) (wpmirror.Outcome, error) {
	if err := content.Validate(); err != nil {
		return wpmirror.OutcomeUnchanged, err
	}

	tbl, err := tableFor(content.Kind)
	if err != nil {
		return wpmirror.OutcomeUnchanged, err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return wpmirror.OutcomeUnchanged, storageError(err)
	}
	defer tx.Rollback()

	var latestHash string
	var latestVersion int
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT content_hash, version FROM %s
		WHERE wp_id = ?
		ORDER BY version DESC
		LIMIT 1
	`, tbl), content.RemoteID).Scan(&latestHash, &latestVersion)

	switch {
	case err == sql.ErrNoRows:
		content.Version = 1
	case err != nil:
		return wpmirror.OutcomeUnchanged, storageError(err)
	case latestHash == content.Fingerprint:
		return wpmirror.OutcomeUnchanged, nil
	default:
		content.Version = latestVersion + 1
	}

	content.StoredAt = time.Now().UTC()
	if err := insertContent(ctx, tx, content); err != nil {
		return wpmirror.OutcomeUnchanged, err
	}
	if err := tx.Commit(); err != nil {
		return wpmirror.OutcomeUnchanged, storageError(err)
	}

	if content.Version == 1 {
		return wpmirror.OutcomeCreated, nil
	}
	return wpmirror.OutcomeUpdated, nil
}

// AppendVersion inserts a new immutable row at content.Version.
// Returns ECONFLICT if (wp_id, version) already exists: in correct
// single-writer operation that never happens, and callers should treat
// it as a bug rather than retry it away.
func (s *ContentService) AppendVersion(ctx context.Context, content *wpmirror.Content) error {
	if err := content.Validate(); err != nil {
		return err
	}
	if content.Version <= 0 {
		return wpmirror.Errorf(wpmirror.EINVALID, "content version must be positive")
	}
	if content.StoredAt.IsZero() {
		content.StoredAt = time.Now().UTC()
	}
	return insertContent(ctx, s.db, content)
}

// insertContent writes one row into the kind's table.
func insertContent(ctx context.Context, ex executor, c *wpmirror.Content) error {
	tbl, err := tableFor(c.Kind)
	if err != nil {
		return err
	}
	storedAt := c.StoredAt.Format(time.RFC3339)

	switch c.Kind {
	case wpmirror.KindPosts, wpmirror.KindPages:
		_, err = ex.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (wp_id, title, content, excerpt, author_id, date_created, date_modified, status, content_hash, version, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, tbl), c.RemoteID, c.Post.Title, c.Post.Content, c.Post.Excerpt, c.Post.AuthorID,
			c.Post.DateCreated, c.Post.DateModified, c.Post.Status, c.Fingerprint, c.Version, storedAt)

	case wpmirror.KindComments:
		_, err = ex.ExecContext(ctx, `
			INSERT INTO comments (wp_id, post_id, parent_id, author_name, author_email, author_url, content, date_created, status, content_hash, version, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.RemoteID, c.Comment.PostID, c.Comment.ParentID, c.Comment.AuthorName, c.Comment.AuthorEmail,
			c.Comment.AuthorURL, c.Comment.Content, c.Comment.DateCreated, c.Comment.Status, c.Fingerprint, c.Version, storedAt)

	case wpmirror.KindUsers:
		_, err = ex.ExecContext(ctx, `
			INSERT INTO users (wp_id, name, url, description, link, slug, avatar_urls, content_hash, version, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.RemoteID, c.User.Name, c.User.URL, c.User.Description, c.User.Link, c.User.Slug,
			c.User.AvatarURLs, c.Fingerprint, c.Version, storedAt)

	case wpmirror.KindCategories, wpmirror.KindTags:
		_, err = ex.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (wp_id, name, description, link, slug, taxonomy, parent, count, content_hash, version, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, tbl), c.RemoteID, c.Term.Name, c.Term.Description, c.Term.Link, c.Term.Slug, c.Term.Taxonomy,
			c.Term.Parent, c.Term.Count, c.Fingerprint, c.Version, storedAt)
	}

	return storageError(err)
}

// LatestFingerprint returns the fingerprint of the highest-version row.
func (s *ContentService) LatestFingerprint(ctx context.Context, kind wpmirror.Kind, remoteID int64) (string, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return "", err
	}

	var hash string
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT content_hash FROM %s
		WHERE wp_id = ?
		ORDER BY version DESC
		LIMIT 1
	`, tbl), remoteID).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", wpmirror.Errorf(wpmirror.ENOTFOUND, "%s %d not found", kind, remoteID)
	}
	if err != nil {
		return "", storageError(err)
	}
	return hash, nil
}

// LatestVersion returns the highest stored version number.
func (s *ContentService) LatestVersion(ctx context.Context, kind wpmirror.Kind, remoteID int64) (int, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var version int
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT version FROM %s
		WHERE wp_id = ?
		ORDER BY version DESC
		LIMIT 1
	`, tbl), remoteID).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, wpmirror.Errorf(wpmirror.ENOTFOUND, "%s %d not found", kind, remoteID)
	}
	if err != nil {
		return 0, storageError(err)
	}
	return version, nil
}

// FindContent retrieves the latest version of items matching the filter.
func (s *ContentService) FindContent(ctx context.Context, filter wpmirror.ContentFilter) ([]*wpmirror.Content, error) {
	tbl, err := tableFor(filter.Kind)
	if err != nil {
		return nil, err
	}

	var query strings.Builder
	var args []any

	fmt.Fprintf(&query, "SELECT %s FROM %s t WHERE version = (SELECT MAX(version) FROM %s WHERE wp_id = t.wp_id)",
		selectColumns(filter.Kind), tbl, tbl)

	if filter.RemoteID != nil {
		query.WriteString(" AND wp_id = ?")
		args = append(args, *filter.RemoteID)
	}
	if filter.PostID != nil && filter.Kind == wpmirror.KindComments {
		query.WriteString(" AND post_id = ?")
		args = append(args, *filter.PostID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		switch filter.Kind {
		case wpmirror.KindPosts, wpmirror.KindPages:
			query.WriteString(" AND (title LIKE ? OR content LIKE ?)")
		case wpmirror.KindComments:
			query.WriteString(" AND (author_name LIKE ? OR content LIKE ?)")
		default:
			query.WriteString(" AND (name LIKE ? OR description LIKE ?)")
		}
		args = append(args, pattern, pattern)
	}

	switch filter.Kind {
	case wpmirror.KindPosts, wpmirror.KindPages, wpmirror.KindComments:
		query.WriteString(" ORDER BY date_created DESC")
	default:
		query.WriteString(" ORDER BY name ASC")
	}

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, storageError(err)
	}
	defer rows.Close()

	var contents []*wpmirror.Content
	for rows.Next() {
		c, err := scanContent(rows, filter.Kind)
		if err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, storageError(rows.Err())
}

// ContentVersions retrieves every stored version of an item, newest first.
func (s *ContentService) ContentVersions(ctx context.Context, kind wpmirror.Kind, remoteID int64) ([]*wpmirror.Content, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE wp_id = ?
		ORDER BY version DESC
	`, selectColumns(kind), tbl), remoteID)
	if err != nil {
		return nil, storageError(err)
	}
	defer rows.Close()

	var contents []*wpmirror.Content
	for rows.Next() {
		c, err := scanContent(rows, kind)
		if err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, storageError(rows.Err())
}

// Stats returns the total stored row count per kind.
func (s *ContentService) Stats(ctx context.Context) (map[wpmirror.Kind]int, error) {
	stats := make(map[wpmirror.Kind]int, len(wpmirror.Kinds()))
	for _, kind := range wpmirror.Kinds() {
		tbl, err := tableFor(kind)
		if err != nil {
			return nil, err
		}
		var count int
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", tbl)).Scan(&count); err != nil {
			return nil, storageError(err)
		}
		stats[kind] = count
	}
	return stats, nil
}

// scanContent reads one row of the kind's table into a Content record.
func scanContent(row rowScanner, kind wpmirror.Kind) (*wpmirror.Content, error) {
	c := &wpmirror.Content{Kind: kind}
	var createdAt string
	var err error

	switch kind {
	case wpmirror.KindPosts, wpmirror.KindPages:
		c.Post = &wpmirror.PostFields{}
		err = row.Scan(&c.RemoteID, &c.Post.Title, &c.Post.Content, &c.Post.Excerpt, &c.Post.AuthorID,
			&c.Post.DateCreated, &c.Post.DateModified, &c.Post.Status, &c.Fingerprint, &c.Version, &createdAt)
	case wpmirror.KindComments:
		c.Comment = &wpmirror.CommentFields{}
		err = row.Scan(&c.RemoteID, &c.Comment.PostID, &c.Comment.ParentID, &c.Comment.AuthorName,
			&c.Comment.AuthorEmail, &c.Comment.AuthorURL, &c.Comment.Content, &c.Comment.DateCreated,
			&c.Comment.Status, &c.Fingerprint, &c.Version, &createdAt)
	case wpmirror.KindUsers:
		c.User = &wpmirror.UserFields{}
		err = row.Scan(&c.RemoteID, &c.User.Name, &c.User.URL, &c.User.Description, &c.User.Link,
			&c.User.Slug, &c.User.AvatarURLs, &c.Fingerprint, &c.Version, &createdAt)
	default: // categories, tags
		c.Term = &wpmirror.TermFields{}
		err = row.Scan(&c.RemoteID, &c.Term.Name, &c.Term.Description, &c.Term.Link, &c.Term.Slug,
			&c.Term.Taxonomy, &c.Term.Parent, &c.Term.Count, &c.Fingerprint, &c.Version, &createdAt)
	}
	if err != nil {
		return nil, storageError(err)
	}

	c.StoredAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return c, nil
}
