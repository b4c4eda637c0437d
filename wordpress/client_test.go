package wordpress_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/wpmirror"
	"github.com/fwojciec/wpmirror/wordpress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.Handler) (*wordpress.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := wordpress.NewClient(srv.URL, wordpress.WithRateLimit(rate.Inf))
	return client, srv
}

func TestClient_Verify(t *testing.T) {
	t.Parallel()

	t.Run("accepts a site with the wp/v2 namespace", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/wp-json/" {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"name":       "Test Site",
					"namespaces": []string{"oembed/1.0", "wp/v2"},
				})
				return
			}
			http.NotFound(w, r)
		}))

		assert.NoError(t, client.Verify(context.Background()))
	})

	t.Run("falls back to HTML markers when the REST root is blocked", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/wp-json/" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte(`<html><head><link rel="stylesheet" href="/wp-content/themes/x/style.css"></head><body></body></html>`))
		}))

		assert.NoError(t, client.Verify(context.Background()))
	})

	t.Run("accepts a generator meta tag", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/wp-json/" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(`<html><head><meta name="generator" content="WordPress 6.4"></head><body></body></html>`))
		}))

		assert.NoError(t, client.Verify(context.Background()))
	})

	t.Run("rejects a non-WordPress site", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/wp-json/" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(`<html><head></head><body>plain site</body></html>`))
		}))

		err := client.Verify(context.Background())
		assert.Equal(t, wpmirror.EUNAVAILABLE, wpmirror.ErrorCode(err))
	})
}

func TestClient_FetchPage(t *testing.T) {
	t.Parallel()

	t.Run("decodes items and collection totals", func(t *testing.T) {
		t.Parallel()

		var gotQuery map[string][]string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
			gotQuery = r.URL.Query()
			w.Header().Set("X-WP-Total", "42")
			w.Header().Set("X-WP-TotalPages", "5")
			_, _ = w.Write([]byte(`[{"id": 1, "title": {"rendered": "First"}}, {"id": 2, "title": {"rendered": "Second"}}]`))
		}))

		page, err := client.FetchPage(context.Background(), wpmirror.KindPosts, wpmirror.FetchOptions{Page: 2, PerPage: 10})
		require.NoError(t, err)

		assert.Len(t, page.Items, 2)
		assert.Equal(t, 42, page.TotalItems)
		assert.Equal(t, 5, page.TotalPages)
		assert.Equal(t, int64(1), page.Items[0].Int("id"))

		assert.Equal(t, []string{"2"}, gotQuery["page"])
		assert.Equal(t, []string{"10"}, gotQuery["per_page"])
		assert.Equal(t, []string{"date"}, gotQuery["orderby"])
		assert.Equal(t, []string{"asc"}, gotQuery["order"])
	})

	t.Run("pushes the after cutoff to dated endpoints", func(t *testing.T) {
		t.Parallel()

		var gotQuery map[string][]string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(`[]`))
		}))

		after, err := wpmirror.ParseAfterDate("2024-01-01")
		require.NoError(t, err)

		_, err = client.FetchPage(context.Background(), wpmirror.KindPosts, wpmirror.FetchOptions{Page: 1, PerPage: 100, After: after})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-01T00:00:00"}, gotQuery["after"])
	})

	t.Run("pushes the after cutoff to the users endpoint", func(t *testing.T) {
		t.Parallel()

		var gotQuery map[string][]string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/wp-json/wp/v2/users", r.URL.Path)
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(`[]`))
		}))

		after, err := wpmirror.ParseAfterDate("2024-01-01")
		require.NoError(t, err)

		_, err = client.FetchPage(context.Background(), wpmirror.KindUsers, wpmirror.FetchOptions{Page: 1, PerPage: 100, After: after})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-01T00:00:00"}, gotQuery["after"])
		// Users have no publication date to order by.
		assert.NotContains(t, gotQuery, "orderby")
	})

	t.Run("omits the after cutoff for term endpoints", func(t *testing.T) {
		t.Parallel()

		var gotQuery map[string][]string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/wp-json/wp/v2/categories", r.URL.Path)
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte(`[]`))
		}))

		after, err := wpmirror.ParseAfterDate("2024-01-01")
		require.NoError(t, err)

		_, err = client.FetchPage(context.Background(), wpmirror.KindCategories, wpmirror.FetchOptions{Page: 1, PerPage: 100, After: after})
		require.NoError(t, err)
		assert.NotContains(t, gotQuery, "after")
		assert.NotContains(t, gotQuery, "orderby")
	})

	t.Run("treats an out-of-range page as empty", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-WP-Total", "7")
			w.Header().Set("X-WP-TotalPages", "1")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": "rest_post_invalid_page_number", "message": "The page number requested is larger than the number of pages available."}`))
		}))

		page, err := client.FetchPage(context.Background(), wpmirror.KindPosts, wpmirror.FetchOptions{Page: 99, PerPage: 100})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("maps server errors to EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		_, err := client.FetchPage(context.Background(), wpmirror.KindPosts, wpmirror.FetchOptions{Page: 1, PerPage: 100})
		assert.Equal(t, wpmirror.EUNAVAILABLE, wpmirror.ErrorCode(err))
	})

	t.Run("defaults missing total headers", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id": 1}]`))
		}))

		page, err := client.FetchPage(context.Background(), wpmirror.KindPosts, wpmirror.FetchOptions{Page: 1, PerPage: 100})
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalItems)
		assert.Equal(t, 1, page.TotalPages)
	})
}
