package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/wpmirror"
	wphttp "github.com/fwojciec/wpmirror/http"
	"github.com/fwojciec/wpmirror/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	resp := rec.Result()
	t.Cleanup(func() { resp.Body.Close() })

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	return resp, decoded
}

func TestServer_Stats(t *testing.T) {
	t.Parallel()

	contents := &mock.ContentService{
		StatsFn: func(ctx context.Context) (map[wpmirror.Kind]int, error) {
			return map[wpmirror.Kind]int{wpmirror.KindPosts: 12, wpmirror.KindComments: 40}, nil
		},
	}
	srv := wphttp.NewServer(contents, &mock.SessionService{}, discardLogger())

	resp, body := get(t, srv, "/api/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(12), stats["posts"])
	assert.Equal(t, float64(40), stats["comments"])
}

func TestServer_Search(t *testing.T) {
	t.Parallel()

	t.Run("searches the requested kind", func(t *testing.T) {
		t.Parallel()

		var gotFilter wpmirror.ContentFilter
		contents := &mock.ContentService{
			FindContentFn: func(ctx context.Context, filter wpmirror.ContentFilter) ([]*wpmirror.Content, error) {
				gotFilter = filter
				return []*wpmirror.Content{{Kind: wpmirror.KindPages, RemoteID: 3, Version: 1}}, nil
			},
		}
		srv := wphttp.NewServer(contents, &mock.SessionService{}, discardLogger())

		resp, body := get(t, srv, "/api/search?q=hello&type=pages&limit=5")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, wpmirror.KindPages, gotFilter.Kind)
		assert.Equal(t, "hello", gotFilter.Search)
		assert.Equal(t, 5, gotFilter.Limit)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("requires a query", func(t *testing.T) {
		t.Parallel()

		srv := wphttp.NewServer(&mock.ContentService{}, &mock.SessionService{}, discardLogger())
		resp, body := get(t, srv, "/api/search")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["error"], "q")
	})
}

func TestServer_List(t *testing.T) {
	t.Parallel()

	t.Run("rejects an unknown kind", func(t *testing.T) {
		t.Parallel()

		srv := wphttp.NewServer(&mock.ContentService{}, &mock.SessionService{}, discardLogger())
		resp, _ := get(t, srv, "/api/bogus")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("filters comments by post", func(t *testing.T) {
		t.Parallel()

		var gotFilter wpmirror.ContentFilter
		contents := &mock.ContentService{
			FindContentFn: func(ctx context.Context, filter wpmirror.ContentFilter) ([]*wpmirror.Content, error) {
				gotFilter = filter
				return nil, nil
			},
		}
		srv := wphttp.NewServer(contents, &mock.SessionService{}, discardLogger())

		resp, _ := get(t, srv, "/api/comments?post=7")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, gotFilter.PostID)
		assert.Equal(t, int64(7), *gotFilter.PostID)
	})
}

func TestServer_Item(t *testing.T) {
	t.Parallel()

	t.Run("returns version history and a comment tree for posts", func(t *testing.T) {
		t.Parallel()

		post := func(version int) *wpmirror.Content {
			return &wpmirror.Content{
				Kind:     wpmirror.KindPosts,
				RemoteID: 1,
				Version:  version,
				Post:     &wpmirror.PostFields{Title: "T", Content: "<p>b</p>"},
			}
		}
		comment := func(id, parent int64) *wpmirror.Content {
			return &wpmirror.Content{
				Kind:     wpmirror.KindComments,
				RemoteID: id,
				Version:  1,
				Comment:  &wpmirror.CommentFields{PostID: 1, ParentID: parent, AuthorName: "A"},
			}
		}

		contents := &mock.ContentService{
			ContentVersionsFn: func(ctx context.Context, kind wpmirror.Kind, remoteID int64) ([]*wpmirror.Content, error) {
				return []*wpmirror.Content{post(2), post(1)}, nil
			},
			FindContentFn: func(ctx context.Context, filter wpmirror.ContentFilter) ([]*wpmirror.Content, error) {
				require.Equal(t, wpmirror.KindComments, filter.Kind)
				return []*wpmirror.Content{comment(10, 0), comment(11, 10), comment(12, 0)}, nil
			},
		}
		srv := wphttp.NewServer(contents, &mock.SessionService{}, discardLogger())

		resp, body := get(t, srv, "/api/posts/1")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		versions, ok := body["versions"].([]any)
		require.True(t, ok)
		assert.Len(t, versions, 2)

		tree, ok := body["comments"].([]any)
		require.True(t, ok)
		require.Len(t, tree, 2)
		first, ok := tree[0].(map[string]any)
		require.True(t, ok)
		replies, ok := first["replies"].([]any)
		require.True(t, ok)
		assert.Len(t, replies, 1)
	})

	t.Run("returns 404 for an unknown item", func(t *testing.T) {
		t.Parallel()

		contents := &mock.ContentService{
			ContentVersionsFn: func(ctx context.Context, kind wpmirror.Kind, remoteID int64) ([]*wpmirror.Content, error) {
				return nil, nil
			},
		}
		srv := wphttp.NewServer(contents, &mock.SessionService{}, discardLogger())

		resp, _ := get(t, srv, "/api/posts/999")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_Sessions(t *testing.T) {
	t.Parallel()

	t.Run("lists sessions", func(t *testing.T) {
		t.Parallel()

		sessions := &mock.SessionService{
			FindSessionsFn: func(ctx context.Context, filter wpmirror.SessionFilter) ([]*wpmirror.Session, error) {
				return []*wpmirror.Session{{ID: "abc", Description: "posts"}}, nil
			},
		}
		srv := wphttp.NewServer(&mock.ContentService{}, sessions, discardLogger())

		resp, body := get(t, srv, "/api/sessions")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("returns 404 for an unknown session", func(t *testing.T) {
		t.Parallel()

		sessions := &mock.SessionService{
			FindSessionByIDFn: func(ctx context.Context, id string) (*wpmirror.Session, error) {
				return nil, wpmirror.Errorf(wpmirror.ENOTFOUND, "session %q not found", id)
			},
		}
		srv := wphttp.NewServer(&mock.ContentService{}, sessions, discardLogger())

		resp, _ := get(t, srv, "/api/sessions/missing")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
