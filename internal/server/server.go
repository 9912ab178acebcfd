// Package server serves the linked scatterplot and network views to a
// browser.
//
// The page embeds both SVG surfaces and forwards pointer events over a
// websocket. Every connection is a session with its own copies of the views,
// so gestures in one browser tab never recolor another. The server runs the
// lasso and the selection coordinator and answers each completed gesture
// with the new fill of every marker.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
)

// Loader returns the records to display. It is called once at startup and
// again on every reload.
type Loader func(ctx context.Context) ([]data.Record, error)

// Options configures a [Server].
type Options struct {
	Title       string
	Scene       scene.Options
	MinDistance float64
	Logger      *log.Logger

	// CheckOrigin is passed to the websocket upgrader. Nil accepts only
	// same-host origins.
	CheckOrigin func(r *http.Request) bool
}

// Server holds the current scene and the live sessions.
type Server struct {
	ctx    context.Context
	load   Loader
	opts   Options
	logger *log.Logger

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	scene    *scene.Scene
	sessions map[string]*session
}

// New loads the records and builds the first scene. ctx bounds background
// layouts for the server's lifetime.
func New(ctx context.Context, load Loader, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Title == "" {
		opts.Title = "lassoview"
	}
	if opts.Scene.Logger == nil {
		opts.Scene.Logger = opts.Logger
	}
	s := &Server{
		ctx:      ctx,
		load:     load,
		opts:     opts,
		logger:   opts.Logger,
		upgrader: websocket.Upgrader{CheckOrigin: opts.CheckOrigin},
		sessions: make(map[string]*session),
	}
	sc, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.scene = sc
	return s, nil
}

func (s *Server) build(ctx context.Context) (*scene.Scene, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return scene.Build(s.ctx, records, s.opts.Scene)
}

// Scene returns the scene new sessions start from.
func (s *Server) Scene() *scene.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene
}

// Reload rebuilds the scene from the loader and tells every session to
// reload the page. On error the current scene is kept.
func (s *Server) Reload(ctx context.Context) error {
	sc, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.scene = sc
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	s.logger.Info("scene reloaded", "records", len(sc.Records), "sessions", len(sessions))
	for _, sess := range sessions {
		sess.send(outbound{Type: msgReload})
	}
	return nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/healthz", s.handleHealth)
	r.Get("/views/{id}.svg", s.handleView)
	r.Get("/ws", s.handleWebsocket)
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.closeSessions()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown", "err", err)
		return srv.Close()
	}
	return nil
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sc := s.Scene()
	s.mu.RLock()
	n := len(s.sessions)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"records":  len(sc.Records),
		"network":  networkStatus(sc),
		"sessions": n,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sc := s.Scene()
	switch chi.URLParam(r, "id") {
	case scene.ScatterID:
		writeSVG(w, sc.Scatter.SVG())
	case scene.NetworkID:
		v, ok, err := sc.Network()
		switch {
		case !sc.NetworkEnabled():
			http.NotFound(w, r)
		case !ok:
			http.Error(w, "network layout in progress", http.StatusServiceUnavailable)
		case err != nil:
			http.Error(w, errors.UserMessage(err), http.StatusServiceUnavailable)
		default:
			writeSVG(w, v.SVG())
		}
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	sess, err := newSession(s, s.Scene(), conn)
	if err != nil {
		s.logger.Error("session setup failed", "err", err)
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
	}()

	sess.run(r.Context())
}

func networkStatus(sc *scene.Scene) string {
	if !sc.NetworkEnabled() {
		return "disabled"
	}
	_, ok, err := sc.Network()
	switch {
	case !ok:
		return "pending"
	case err != nil:
		return "failed"
	default:
		return "ready"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSVG(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(b)
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path,
				"status", ww.Status(), "duration", time.Since(start).Round(time.Microsecond),
				"id", middleware.GetReqID(r.Context()))
		})
	}
}
