// Package server exposes a particles.Engine over HTTP and streams snapshots
// to websocket clients. The server is the caller that decides when the
// engine ticks: once per POST /step, and once per interval on a single
// ticker shared by all open streams.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/olivierh59500/particle-life-engine/internal/particles"
)

// DefaultInterval is the stream tick period when the client does not ask
// for one, roughly one tick per 60 Hz frame.
const DefaultInterval = 16 * time.Millisecond

// Server holds the engine every handler shares.
type Server struct {
	engine   *particles.Engine
	logger   *slog.Logger
	interval time.Duration
	upgrader websocket.Upgrader
	streams  *broadcaster
}

// NewServer wires handlers around engine. interval is the period of the
// shared stream ticker; a non-positive value falls back to DefaultInterval.
func NewServer(engine *particles.Engine, logger *slog.Logger, interval time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Server{
		engine:   engine,
		logger:   logger,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The viewer page may be served from anywhere, including file://.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		streams: newBroadcaster(engine, logger, interval),
	}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/init", s.handleInit)
	mux.HandleFunc("/step", s.handleStep)
	mux.HandleFunc("/particles", s.handleParticles)
	mux.HandleFunc("/rules", s.handleRules)
	mux.HandleFunc("/rules/randomize", s.handleRandomizeRules)
	mux.HandleFunc("/resize", s.handleResize)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/ws", s.handleStream)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request", "remote", r.RemoteAddr, "method", r.Method, "url", r.URL.String())
		mux.ServeHTTP(w, r)
	})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case particles.IsInputError(err):
		return http.StatusBadRequest
	case particles.IsMissingRuleError(err):
		return http.StatusConflict
	case particles.IsUnusable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	s.writeError(w, statusFor(err), err)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// allow rejects requests whose method is not one of methods.
func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

var errEmptyBody = errors.New("request body is empty")
