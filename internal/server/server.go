// Package server is the HTTP surface of the Kagami experiment backend: the
// session lifecycle endpoints, the per-turn orchestrator and the static
// avatar files.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kagami-chat/kagami/internal/config"
	"github.com/kagami-chat/kagami/internal/eventlog"
	"github.com/kagami-chat/kagami/internal/nlp"
	"github.com/kagami-chat/kagami/internal/provider"
	"github.com/kagami-chat/kagami/internal/redact"
	"github.com/kagami-chat/kagami/internal/session"
	"github.com/kagami-chat/kagami/internal/style"
	"github.com/kagami-chat/kagami/internal/telemetry"
)

const initialGreeting = "Hey there, I'm Kagami. What's on your mind today, or how's your day been so far?"

// Deps carries the collaborators the server orchestrates. All fields except
// ImageEditor, FileSink, Archive and Telemetry are required.
type Deps struct {
	Store       session.Store
	Registry    *session.Registry
	Extractor   *style.Extractor
	Compiler    *style.Compiler
	NLP         *nlp.Service
	Provider    provider.Provider
	ImageEditor provider.ImageEditor
	Emitter     *eventlog.Emitter
	FileSink    *eventlog.SessionFileSink
	Archive     *eventlog.WebhookSink
	Telemetry   *telemetry.Provider
	StaticDir   string
}

// Server routes HTTP requests and owns the live session map. Sessions are
// held in memory for the duration of a conversation; the store is the
// crash-recovery copy.
type Server struct {
	mux  *http.ServeMux
	cfg  *config.Config
	deps Deps

	sessionsMu sync.RWMutex
	sessions   map[string]*session.Session
}

// New creates the server, restores persisted sessions and registers routes.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Registry == nil || deps.Extractor == nil ||
		deps.Compiler == nil || deps.Provider == nil || deps.Emitter == nil {
		return nil, errors.New("server: missing required dependency")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		cfg:      cfg,
		deps:     deps,
		sessions: make(map[string]*session.Session),
	}

	restored, err := deps.Store.LoadAll(context.Background())
	if err != nil {
		redact.Logf("server: restoring sessions failed: %v", err)
	}
	for _, sess := range restored {
		s.sessions[sess.ID] = sess
	}
	if len(restored) > 0 {
		redact.Logf("server: restored %d live sessions", len(restored))
	}

	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/api/session/start", s.handleSessionStart)
	s.mux.HandleFunc("/api/session/message", s.handleSessionMessage)
	s.mux.HandleFunc("/api/session/end", s.handleSessionEnd)
	s.mux.HandleFunc("/api/session/set_avatar_details", s.handleSetAvatarDetails)
	s.mux.HandleFunc("/api/avatar/generate", s.handleAvatarGenerate)
	s.mux.HandleFunc("/api/log/frontend_event", s.handleFrontendEvent)

	if deps.StaticDir != "" {
		if err := os.MkdirAll(filepath.Join(deps.StaticDir, "generated"), 0o755); err != nil {
			return nil, err
		}
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))
	}

	return s, nil
}

// Handler wraps the mux with the CORS middleware.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		redact.Logf("kagami backend listening on %s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.cfg.Server.AllowedOrigins))
	for _, o := range s.cfg.Server.AllowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) session(id string) *session.Session {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return s.sessions[id]
}

func (s *Server) putSession(sess *session.Session) {
	s.sessionsMu.Lock()
	s.sessions[sess.ID] = sess
	s.sessionsMu.Unlock()
}

func (s *Server) dropSession(id string) {
	s.sessionsMu.Lock()
	delete(s.sessions, id)
	s.sessionsMu.Unlock()
}

// persist saves the session best-effort; a failed write never blocks the
// turn.
func (s *Server) persist(ctx context.Context, sess *session.Session) {
	if err := s.deps.Store.Save(ctx, sess); err != nil {
		redact.Logf("server: persisting session %s failed: %v", sess.ID, err)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Kagami Chat — backend humming smoothly."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		redact.Logf("server: writing response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
