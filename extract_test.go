package wpmirror_test

import (
	"testing"

	"github.com/fwojciec/wpmirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postItem(id float64, title, body string) wpmirror.Item {
	return wpmirror.Item{
		"id":       id,
		"title":    map[string]any{"rendered": title},
		"content":  map[string]any{"rendered": body},
		"excerpt":  map[string]any{"rendered": "excerpt"},
		"author":   float64(3),
		"date":     "2024-01-15T10:30:00",
		"modified": "2024-01-16T08:00:00",
		"status":   "publish",
	}
}

func TestExtractContent_Post(t *testing.T) {
	t.Parallel()

	content, err := wpmirror.ExtractContent(wpmirror.KindPosts, postItem(42, "Hello", "<p>Body</p>"))
	require.NoError(t, err)

	assert.Equal(t, wpmirror.KindPosts, content.Kind)
	assert.Equal(t, int64(42), content.RemoteID)
	require.NotNil(t, content.Post)
	assert.Equal(t, "Hello", content.Post.Title)
	assert.Equal(t, "<p>Body</p>", content.Post.Content)
	assert.Equal(t, "excerpt", content.Post.Excerpt)
	assert.Equal(t, int64(3), content.Post.AuthorID)
	assert.Equal(t, "2024-01-15T10:30:00", content.Post.DateCreated)
	assert.Equal(t, "publish", content.Post.Status)
	assert.Equal(t, wpmirror.Fingerprint("<p>Body</p>"), content.Fingerprint)
}

func TestExtractContent_FingerprintCoversBodyOnly(t *testing.T) {
	t.Parallel()

	// A title-only edit does not register as a content change.
	a, err := wpmirror.ExtractContent(wpmirror.KindPosts, postItem(1, "Old Title", "<p>Same</p>"))
	require.NoError(t, err)
	b, err := wpmirror.ExtractContent(wpmirror.KindPosts, postItem(1, "New Title", "<p>Same</p>"))
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
}

func TestExtractContent_Comment(t *testing.T) {
	t.Parallel()

	item := wpmirror.Item{
		"id":           float64(9),
		"post":         float64(42),
		"parent":       float64(0),
		"author_name":  "Alice",
		"author_email": "alice@example.com",
		"author_url":   "https://alice.example.com",
		"content":      map[string]any{"rendered": "<p>Nice post</p>"},
		"date":         "2024-02-01T12:00:00",
		"status":       "approved",
	}

	content, err := wpmirror.ExtractContent(wpmirror.KindComments, item)
	require.NoError(t, err)

	require.NotNil(t, content.Comment)
	assert.Equal(t, int64(42), content.Comment.PostID)
	assert.Equal(t, "Alice", content.Comment.AuthorName)
	assert.Equal(t, wpmirror.Fingerprint("<p>Nice post</p>"), content.Fingerprint)
}

func TestExtractContent_User(t *testing.T) {
	t.Parallel()

	item := wpmirror.Item{
		"id":          float64(5),
		"name":        "Bob",
		"url":         "https://bob.example.com",
		"description": "Writer",
		"link":        "https://example.com/author/bob",
		"slug":        "bob",
		"avatar_urls": map[string]any{"96": "https://example.com/avatar.png"},
	}

	content, err := wpmirror.ExtractContent(wpmirror.KindUsers, item)
	require.NoError(t, err)

	require.NotNil(t, content.User)
	assert.Equal(t, "Bob", content.User.Name)
	assert.Contains(t, content.User.AvatarURLs, "avatar.png")
	assert.Equal(t, wpmirror.Fingerprint("BobWriterhttps://bob.example.com"), content.Fingerprint)
}

func TestExtractContent_Term(t *testing.T) {
	t.Parallel()

	item := wpmirror.Item{
		"id":          float64(11),
		"name":        "Go",
		"description": "Posts about Go",
		"link":        "https://example.com/category/go",
		"slug":        "go",
		"taxonomy":    "category",
		"parent":      float64(2),
		"count":       float64(14),
	}

	content, err := wpmirror.ExtractContent(wpmirror.KindCategories, item)
	require.NoError(t, err)

	require.NotNil(t, content.Term)
	assert.Equal(t, int64(2), content.Term.Parent)
	assert.Equal(t, int64(14), content.Term.Count)
	assert.Equal(t, wpmirror.Fingerprint("GoPosts about Gogo"), content.Fingerprint)
}

func TestExtractContent_MissingOptionalFieldsDefault(t *testing.T) {
	t.Parallel()

	content, err := wpmirror.ExtractContent(wpmirror.KindPosts, wpmirror.Item{"id": float64(1)})
	require.NoError(t, err)

	require.NotNil(t, content.Post)
	assert.Empty(t, content.Post.Title)
	assert.Empty(t, content.Post.Content)
	assert.Zero(t, content.Post.AuthorID)
}

func TestExtractContent_MissingID(t *testing.T) {
	t.Parallel()

	_, err := wpmirror.ExtractContent(wpmirror.KindPosts, wpmirror.Item{"title": map[string]any{"rendered": "x"}})
	assert.Equal(t, wpmirror.EINVALID, wpmirror.ErrorCode(err))
}
