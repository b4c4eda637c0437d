package wpmirror

import (
	"context"
	"time"
)

// Kind identifies one of the six WordPress content kinds the mirror tracks.
// The string value doubles as the REST collection name.
type Kind string

// Content kinds.
const (
	KindPosts      Kind = "posts"
	KindComments   Kind = "comments"
	KindPages      Kind = "pages"
	KindUsers      Kind = "users"
	KindCategories Kind = "categories"
	KindTags       Kind = "tags"
)

// Kinds returns all content kinds in archive order.
func Kinds() []Kind {
	return []Kind{KindPosts, KindComments, KindPages, KindUsers, KindCategories, KindTags}
}

// ParseKind converts a string to a Kind.
// Returns EINVALID for unknown values.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPosts, KindComments, KindPages, KindUsers, KindCategories, KindTags:
		return Kind(s), nil
	}
	return "", Errorf(EINVALID, "unknown content kind %q", s)
}

// Dated reports whether items of this kind carry a reliable per-item
// publication date. Users, categories and tags don't, so they always
// pass the after-date filter.
func (k Kind) Dated() bool {
	switch k {
	case KindPosts, KindComments, KindPages:
		return true
	}
	return false
}

// Content is one immutable versioned snapshot of a remote item.
// It is a tagged union: exactly one of the field groups matching Kind is
// set (posts and pages share PostFields, categories and tags share
// TermFields). The pair (Kind, RemoteID, Version) identifies a row and
// is never mutated or deleted once written.
type Content struct {
	Kind        Kind      `json:"kind"`
	RemoteID    int64     `json:"remoteId"`
	Version     int       `json:"version"`
	Fingerprint string    `json:"fingerprint"`
	StoredAt    time.Time `json:"storedAt"`

	Post    *PostFields    `json:"post,omitempty"`
	Comment *CommentFields `json:"comment,omitempty"`
	User    *UserFields    `json:"user,omitempty"`
	Term    *TermFields    `json:"term,omitempty"`
}

// PostFields holds the kind-specific fields of a post or page.
type PostFields struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Excerpt      string `json:"excerpt"`
	AuthorID     int64  `json:"authorId"`
	DateCreated  string `json:"dateCreated"`
	DateModified string `json:"dateModified"`
	Status       string `json:"status"`
}

// CommentFields holds the kind-specific fields of a comment.
type CommentFields struct {
	PostID      int64  `json:"postId"`
	ParentID    int64  `json:"parentId"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	AuthorURL   string `json:"authorUrl"`
	Content     string `json:"content"`
	DateCreated string `json:"dateCreated"`
	Status      string `json:"status"`
}

// UserFields holds the kind-specific fields of a user.
// AvatarURLs is the remote avatar_urls object stored as raw JSON.
type UserFields struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Slug        string `json:"slug"`
	AvatarURLs  string `json:"avatarUrls"`
}

// TermFields holds the kind-specific fields of a category or tag.
// Parent is always zero for tags.
type TermFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Slug        string `json:"slug"`
	Taxonomy    string `json:"taxonomy"`
	Parent      int64  `json:"parent"`
	Count       int64  `json:"count"`
}

// Validate returns an error if the content record is malformed.
func (c *Content) Validate() error {
	if c.RemoteID <= 0 {
		return Errorf(EINVALID, "content remote ID required")
	}
	switch c.Kind {
	case KindPosts, KindPages:
		if c.Post == nil {
			return Errorf(EINVALID, "%s content requires post fields", c.Kind)
		}
	case KindComments:
		if c.Comment == nil {
			return Errorf(EINVALID, "comment content requires comment fields")
		}
	case KindUsers:
		if c.User == nil {
			return Errorf(EINVALID, "user content requires user fields")
		}
	case KindCategories, KindTags:
		if c.Term == nil {
			return Errorf(EINVALID, "%s content requires term fields", c.Kind)
		}
	default:
		return Errorf(EINVALID, "unknown content kind %q", c.Kind)
	}
	return nil
}

// Label returns a human-readable identifier for the item, used in logs.
func (c *Content) Label() string {
	switch {
	case c.Post != nil:
		return c.Post.Title
	case c.Comment != nil:
		return c.Comment.AuthorName
	case c.User != nil:
		return c.User.Name
	case c.Term != nil:
		return c.Term.Name
	}
	return "Unknown"
}

// Outcome is the result of recording one fetched item against the store.
type Outcome int

// Record outcomes.
const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	}
	return "unchanged"
}

// ContentFilter represents a filter for FindContent.
type ContentFilter struct {
	Kind     Kind   `json:"kind"`
	RemoteID *int64 `json:"remoteId"`
	PostID   *int64 `json:"postId"` // comments only
	Search   string `json:"search"` // substring match over content-bearing fields

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ContentService is the append-only version store.
//
// Rows are immutable once written: an item's history is the contiguous
// version sequence 1..N for its remote ID, and no two consecutive
// versions share a fingerprint.
type ContentService interface {
	// RecordOutcome is the central change-detection decision: it looks up
	// the latest stored fingerprint for (kind, remote ID) and appends
	// version 1 (Created), version latest+1 (Updated), or nothing
	// (Unchanged). The read and the conditional append are one
	// transaction. On success, content.Version and content.StoredAt are
	// populated.
	RecordOutcome(ctx context.Context, content *Content) (Outcome, error)

	// AppendVersion inserts a new immutable row at content.Version.
	// Returns ECONFLICT if (remote ID, version) already exists.
	AppendVersion(ctx context.Context, content *Content) error

	// LatestFingerprint returns the fingerprint of the highest-version row.
	// Returns ENOTFOUND if no row exists for the remote ID.
	LatestFingerprint(ctx context.Context, kind Kind, remoteID int64) (string, error)

	// LatestVersion returns the highest stored version number.
	// Returns ENOTFOUND if no row exists for the remote ID.
	LatestVersion(ctx context.Context, kind Kind, remoteID int64) (int, error)

	// FindContent retrieves the latest version of items matching the filter.
	FindContent(ctx context.Context, filter ContentFilter) ([]*Content, error)

	// ContentVersions retrieves every stored version of an item,
	// newest first.
	ContentVersions(ctx context.Context, kind Kind, remoteID int64) ([]*Content, error)

	// Stats returns the total stored row count per kind.
	Stats(ctx context.Context) (map[Kind]int, error)
}
