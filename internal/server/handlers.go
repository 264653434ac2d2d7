package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/olivierh59500/particle-life-engine/internal/particles"
)

// maxRulesBody bounds PUT /rules; a matrix for dozens of groups fits easily.
const maxRulesBody = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /init
// Generates the default population on first call, then returns it.
func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	snap, err := s.engine.Init()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeSnapshot(w, snap)
}

// POST /step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	snap, err := s.engine.Step()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeSnapshot(w, snap)
}

// GET /particles
func (s *Server) handleParticles(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	snap, err := s.engine.Particles()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeSnapshot(w, snap)
}

func (s *Server) writeSnapshot(w http.ResponseWriter, snap particles.Snapshot) {
	w.Header().Set("X-Tick", strconv.FormatUint(snap.Tick, 10))
	s.writeJSON(w, http.StatusOK, snap)
}

// GET /rules returns the matrix.
// PUT /rules replaces it wholesale with the body.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	if r.Method == http.MethodGet {
		rm, err := s.engine.Rules()
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, rm)
		return
	}

	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRulesBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(data) == 0 {
		s.writeError(w, http.StatusBadRequest, errEmptyBody)
		return
	}
	var rm particles.RuleMatrix
	if err := json.Unmarshal(data, &rm); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid rules json: %w", err))
		return
	}
	if err := s.engine.SetRules(rm); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.logger.Info("rules replaced", "rows", rm.Len())
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /rules/randomize
func (s *Server) handleRandomizeRules(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	rm, err := s.engine.RandomizeRules()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rm)
}

type resizeRequest struct {
	Count *int `json:"count"`
}

// POST /resize
// Body: {"count": N}, or ?count=N
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	defer r.Body.Close()

	count, err := resizeCount(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.engine.Resize(count)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.logger.Info("population resized", "group_size", count, "particles", snap.Len())
	s.writeSnapshot(w, snap)
}

func resizeCount(r *http.Request) (int, error) {
	if q := r.URL.Query().Get("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return 0, fmt.Errorf("invalid count %q: must be an integer", q)
		}
		return n, nil
	}
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errEmptyBody
		}
		return 0, fmt.Errorf("invalid json: %w", err)
	}
	if req.Count == nil {
		return 0, errors.New("count is required")
	}
	return *req.Count, nil
}

// POST /reset
// Replaces the engine state with an empty system, clearing a poisoned engine.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if err := s.engine.Reset(); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.logger.Warn("engine reset by client", "remote", r.RemoteAddr)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
