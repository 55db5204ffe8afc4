// Package server exposes allocator sessions to external renderers over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/QuangTung97/buddysim"
	"github.com/QuangTung97/buddysim/allocator"
	"github.com/QuangTung97/buddysim/lru"
	"github.com/QuangTung97/buddysim/trace"
)

// ErrSessionNotFound ...
var ErrSessionNotFound = errors.New("session not found")

// Config ...
type Config struct {
	MaxSessions     int
	DefaultCapacity int
	Logger          *slog.Logger
	Trace           *trace.SQLiteWriter // optional
}

// Server owns the sessions. Every request holds the lock for its whole
// duration, an allocator only ever sees one operation at a time.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*buddysim.Session
	recent   *lru.LRU

	defaultCapacity int
	logger          *slog.Logger
	trace           *trace.SQLiteWriter

	router *mux.Router
}

func serverValidateConfig(conf Config) {
	if conf.MaxSessions <= 0 {
		panic("MaxSessions must > 0")
	}
	if conf.DefaultCapacity <= 0 {
		panic("DefaultCapacity must > 0")
	}
	if conf.DefaultCapacity > allocator.MaxCapacity {
		panic("DefaultCapacity must <= MaxCapacity")
	}
}

// New ...
func New(conf Config) *Server {
	serverValidateConfig(conf)

	logger := conf.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		sessions:        map[string]*buddysim.Session{},
		recent:          lru.New(uint32(conf.MaxSessions)),
		defaultCapacity: conf.DefaultCapacity,
		logger:          logger,
		trace:           conf.Trace,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", s.createSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", s.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.getSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.deleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/state", s.getState).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/layout", s.getLayout).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/occupants", s.getOccupants).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/history", s.getHistory).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/history/{step}", s.getHistoryEntry).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/allocate", s.allocate).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/free", s.free).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/reset", s.reset).Methods(http.MethodPost)

	r.Use(s.logRequests)
	return r
}

// ServeHTTP ...
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// CreateSession registers a new session, evicting the least recently used one
// when the limit is reached
func (s *Server) CreateSession(capacity int) *buddysim.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSessionLocked(capacity)
}

func (s *Server) createSessionLocked(capacity int) *buddysim.Session {
	if capacity <= 0 {
		capacity = s.defaultCapacity
	}

	id := buddysim.NewSessionID()
	hooks := []allocator.Hook{trace.NewLogHook(s.logger, id)}
	if s.trace != nil {
		hooks = append(hooks, s.trace.Hook(id))
	}

	sess := buddysim.NewSession(buddysim.SessionConfig{
		ID:       id,
		Capacity: capacity,
		Hooks:    hooks,
	})

	if evicted, ok := s.recent.Put(sess.ID()); ok {
		delete(s.sessions, evicted)
		s.logger.Info("session evicted", "session", evicted)
	}
	s.sessions[sess.ID()] = sess
	return sess
}

func (s *Server) lookupLocked(id string) (*buddysim.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.recent.Touch(id)
	return sess, nil
}

// withSession runs fn under the server lock with the session named in the path
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(sess *buddysim.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	fn(sess)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Session returns a registered session and marks it as recently used
func (s *Server) Session(id string) (*buddysim.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(id)
}

// NumSessions ...
func (s *Server) NumSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// ready, when not nil, receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready chan<- string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("serving", "addr", listener.Addr().String())
	if ready != nil {
		ready <- listener.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
