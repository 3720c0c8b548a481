package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/wikibridge/internal/model"
	"github.com/nao1215/wikibridge/internal/preference"
	"github.com/nao1215/wikibridge/internal/router"
	"github.com/nao1215/wikibridge/internal/surface"
	"github.com/nao1215/wikibridge/internal/tab"
)

// HeaderTabID carries the id of the tab that sent a message.
const HeaderTabID = "X-Tab-Id"

// maxMessageSize bounds request bodies.
const maxMessageSize = 64 << 10

// Dispatcher answers check requests.
type Dispatcher interface {
	Dispatch(ctx context.Context, sender router.Sender, req model.CheckRequest) <-chan model.Response
}

// Toggle is the auto-navigate preference.
type Toggle interface {
	Read(ctx context.Context) bool
	Set(ctx context.Context, on bool) error
	Activate(ctx context.Context) (bool, error)
}

// Surface looks up control-surface items.
type Surface interface {
	Item(ctx context.Context, id string) (surface.Item, error)
}

// PreferenceBody is the wire form of the auto-navigate preference.
type PreferenceBody struct {
	AutoNavigate *bool `json:"autoNavigate"`
}

// SurfaceBody is the wire form of a control-surface item.
type SurfaceBody struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Contexts     []string `json:"contexts"`
	AutoNavigate bool     `json:"autoNavigate"`
}

// OpenTabBody is the body of POST /v1/tabs.
type OpenTabBody struct {
	URL string `json:"url"`
}

type errorBody struct {
	Error string `json:"error"`
}

// pageRoute is the only route page scripts may call cross-origin.
const pageRoute = "/v1/messages"

// DefaultAllowedOrigins returns the source-site origins whose page scripts
// may send check messages. A "*." host prefix matches any subdomain.
func DefaultAllowedOrigins() []string {
	return []string{"https://*.wikipedia.org"}
}

// Server serves the bridge API.
type Server struct {
	dispatcher Dispatcher
	toggle     Toggle
	surface    Surface
	tabs       *tab.Registry
	logger     *slog.Logger
	mux        *http.ServeMux
	origins    []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins replaces the origins allowed to send check messages.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = append([]string(nil), origins...)
		}
	}
}

// NewServer creates a Server.
func NewServer(dispatcher Dispatcher, toggle Toggle, surf Surface, tabs *tab.Registry, opts ...ServerOption) *Server {
	s := &Server{
		dispatcher: dispatcher,
		toggle:     toggle,
		surface:    surf,
		tabs:       tabs,
		logger:     slog.Default(),
		mux:        http.NewServeMux(),
		origins:    DefaultAllowedOrigins(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("POST /v1/messages", s.handleMessage)
	s.mux.HandleFunc("GET /v1/preferences/auto-navigate", s.handleGetPreference)
	s.mux.HandleFunc("PUT /v1/preferences/auto-navigate", s.handlePutPreference)
	s.mux.HandleFunc("POST /v1/surface/toggle", s.handleToggle)
	s.mux.HandleFunc("GET /v1/surface", s.handleGetSurface)
	s.mux.HandleFunc("POST /v1/tabs", s.handleOpenTab)
	s.mux.HandleFunc("GET /v1/tabs/{id}", s.handleGetTab)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.withLogging(s.withCORS(s.mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("bridge listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down bridge: %w", err)
	}
	<-errCh
	s.logger.Info("bridge stopped")
	return nil
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := model.DecodeRequest(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	from, err := tab.ParseID(r.Header.Get(HeaderTabID))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// The page may go away; the check still runs to completion.
	ch := s.dispatcher.Dispatch(context.WithoutCancel(r.Context()), router.Sender{Tab: from}, req)
	select {
	case resp := <-ch:
		writeJSON(w, http.StatusOK, resp)
	case <-r.Context().Done():
		s.logger.Debug("sender disconnected before response", "article", req.ArticleID.String())
	}
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	on := s.toggle.Read(r.Context())
	writeJSON(w, http.StatusOK, PreferenceBody{AutoNavigate: &on})
}

func (s *Server) handlePutPreference(w http.ResponseWriter, r *http.Request) {
	var body PreferenceBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxMessageSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err))
		return
	}
	if body.AutoNavigate == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: autoNavigate is required", model.ErrMalformedMessage))
		return
	}
	if err := s.toggle.Set(r.Context(), *body.AutoNavigate); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	on, err := s.toggle.Activate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeSurface(w, r, on)
}

func (s *Server) handleGetSurface(w http.ResponseWriter, r *http.Request) {
	s.writeSurface(w, r, s.toggle.Read(r.Context()))
}

func (s *Server) writeSurface(w http.ResponseWriter, r *http.Request, on bool) {
	item, err := s.surface.Item(r.Context(), preference.MenuID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, surface.ErrNotRegistered) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, SurfaceBody{
		ID:           item.ID,
		Title:        item.Title,
		Contexts:     item.Contexts,
		AutoNavigate: on,
	})
}

func (s *Server) handleOpenTab(w http.ResponseWriter, r *http.Request) {
	var body OpenTabBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxMessageSize)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err))
		return
	}
	id := s.tabs.Open(body.URL)
	writeJSON(w, http.StatusCreated, tab.Tab{ID: id, URL: body.URL})
}

func (s *Server) handleGetTab(w http.ResponseWriter, r *http.Request) {
	id, err := tab.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, ok := s.tabs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", tab.ErrUnknownTab, r.PathValue("id")))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCORS enforces the origin policy. Requests without an Origin header
// come from local processes such as the CLI and reach every route. Browser
// requests must come from an allowed origin and may only send check
// messages; the preference and the control surface change on user action
// only.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !s.originAllowed(origin) {
			s.logger.Warn("rejected bridge request", "origin", origin, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, fmt.Errorf("%w: %s", ErrOriginNotAllowed, origin))
			return
		}
		if r.URL.Path != pageRoute {
			s.logger.Warn("rejected page request to local-only route", "origin", origin, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, fmt.Errorf("%w: %s", ErrLocalOnly, r.URL.Path))
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderTabID)
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// originAllowed reports whether origin matches an allowed origin.
func (s *Server) originAllowed(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	for _, allowed := range s.origins {
		a, err := url.Parse(allowed)
		if err != nil || a.Scheme != u.Scheme {
			continue
		}
		if suffix, ok := strings.CutPrefix(a.Host, "*."); ok {
			if strings.HasSuffix(u.Host, "."+suffix) {
				return true
			}
			continue
		}
		if a.Host == u.Host {
			return true
		}
	}
	return false
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("bridge request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
