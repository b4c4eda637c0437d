// Package http provides the JSON API for browsing mirrored content,
// version history and archive sessions.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/wpmirror"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// DefaultAddr is the default listen address.
const DefaultAddr = ":8080"

// ShutdownTimeout bounds graceful shutdown on context cancellation.
const ShutdownTimeout = 5 * time.Second

// Server serves the browse API over the mirror store.
type Server struct {
	Addr string

	contents wpmirror.ContentService
	sessions wpmirror.SessionService
	logger   *slog.Logger
	router   *chi.Mux
}

// NewServer creates a Server wired to the given services.
func NewServer(contents wpmirror.ContentService, sessions wpmirror.SessionService, logger *slog.Logger) *Server {
	s := &Server{
		Addr:     DefaultAddr,
		contents: contents,
		sessions: sessions,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/search", s.handleSearch)
		r.Get("/sessions", s.handleSessions)
		r.Get("/sessions/{id}", s.handleSessionByID)
		r.Get("/{kind}", s.handleList)
		r.Get("/{kind}/{id}", s.handleItem)
	})

	s.router = r
	return s
}

// ServeHTTP dispatches to the API router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves the API until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.Addr,
		Handler:     s.router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("api server listening", "addr", s.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.contents.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, wpmirror.Errorf(wpmirror.EINVALID, "missing query parameter q"))
		return
	}

	kind := wpmirror.KindPosts
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := wpmirror.ParseKind(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		kind = parsed
	}

	filter := wpmirror.ContentFilter{Kind: kind, Search: query}
	filter.Limit, filter.Offset = pagination(r)

	contents, err := s.contents.FindContent(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"type":    kind,
		"results": contents,
		"count":   len(contents),
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	var filter wpmirror.SessionFilter
	filter.Limit, filter.Offset = pagination(r)

	sessions, err := s.sessions.FindSessions(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions, "count": len(sessions)})
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.FindSessionByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind, err := wpmirror.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	filter := wpmirror.ContentFilter{Kind: kind}
	filter.Limit, filter.Offset = pagination(r)
	if kind == wpmirror.KindComments {
		if raw := r.URL.Query().Get("post"); raw != "" {
			postID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				s.writeError(w, wpmirror.Errorf(wpmirror.EINVALID, "invalid post id %q", raw))
				return
			}
			filter.PostID = &postID
		}
	}

	contents, err := s.contents.FindContent(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": contents, "count": len(contents)})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	kind, err := wpmirror.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, wpmirror.Errorf(wpmirror.EINVALID, "invalid id %q", chi.URLParam(r, "id")))
		return
	}

	versions, err := s.contents.ContentVersions(r.Context(), kind, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(versions) == 0 {
		s.writeError(w, wpmirror.Errorf(wpmirror.ENOTFOUND, "%s %d not found", kind, id))
		return
	}

	resp := map[string]any{
		"item":     versions[0],
		"versions": versions,
	}

	if kind == wpmirror.KindPosts {
		comments, err := s.contents.FindContent(r.Context(), wpmirror.ContentFilter{
			Kind:   wpmirror.KindComments,
			PostID: &id,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp["comments"] = commentTree(comments)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// commentNode is a comment with its direct replies.
type commentNode struct {
	*wpmirror.Content
	Replies []*commentNode `json:"replies"`
}

// commentTree nests comments under their parents. Comments whose
// parent is missing from the set are treated as top-level.
func commentTree(comments []*wpmirror.Content) []*commentNode {
	nodes := make(map[int64]*commentNode, len(comments))
	for _, c := range comments {
		nodes[c.RemoteID] = &commentNode{Content: c, Replies: []*commentNode{}}
	}

	var roots []*commentNode
	for _, c := range comments {
		node := nodes[c.RemoteID]
		if c.Comment != nil && c.Comment.ParentID != 0 {
			if parent, ok := nodes[c.Comment.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

func pagination(r *http.Request) (limit, offset int) {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := wpmirror.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case wpmirror.ENOTFOUND:
		status = http.StatusNotFound
	case wpmirror.EINVALID:
		status = http.StatusBadRequest
	case wpmirror.EUNAVAILABLE:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": wpmirror.ErrorMessage(err)})
}
