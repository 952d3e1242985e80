package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/orbitviz/trajgo/internal/model"
	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/tle"
	"github.com/orbitviz/trajgo/internal/trajectory"
)

// defaultPoints is the sample count used when a trajectory request names no
// sampling parameter at all.
const defaultPoints = 10

// defaultTLEIntervalSeconds is the sampling step for TLE requests that omit
// time_interval.
const defaultTLEIntervalSeconds = 60.0

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"api":     "Orbit Trajectory API",
		"version": s.version,
		"endpoints": []map[string]string{
			{"path": "/health", "method": "GET", "description": "Health check"},
			{"path": "/trajectory", "method": "GET", "description": "Sampled trajectory (points or time_interval)"},
			{"path": "/trajectory/csv", "method": "GET", "description": "Sampled trajectory as CSV"},
			{"path": "/trajectory/from-tle", "method": "POST", "description": "Trajectory from a two-line element set"},
			{"path": "/trajectory/from-tle/csv", "method": "POST", "description": "Trajectory from a TLE as CSV"},
			{"path": "/propagation/orbit", "method": "POST", "description": "Propagate orbit (placeholder)"},
			{"path": "/metrics", "method": "GET", "description": "Prometheus metrics"},
		},
	})
}

// samplingFromQuery builds the sampling policy from ?points= or
// ?time_interval=. Exactly one may be given; neither selects the default
// point count.
func samplingFromQuery(r *http.Request) (trajectory.SamplingPolicy, error) {
	q := r.URL.Query()
	pointsStr := q.Get("points")
	intervalStr := q.Get("time_interval")

	switch {
	case pointsStr != "" && intervalStr != "":
		return trajectory.SamplingPolicy{}, fmt.Errorf("points and time_interval are mutually exclusive")
	case pointsStr != "":
		n, err := strconv.Atoi(pointsStr)
		if err != nil {
			return trajectory.SamplingPolicy{}, fmt.Errorf("points must be an integer, got %q", pointsStr)
		}
		return trajectory.ByCount(n)
	case intervalStr != "":
		secs, err := strconv.ParseFloat(intervalStr, 64)
		if err != nil {
			return trajectory.SamplingPolicy{}, fmt.Errorf("time_interval must be a number, got %q", intervalStr)
		}
		return trajectory.ByInterval(secs)
	default:
		return trajectory.ByCount(defaultPoints)
	}
}

func (s *Server) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	policy, err := samplingFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.generator.Generate(r.Context(), policy)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrajectoryCSV(w http.ResponseWriter, r *http.Request) {
	policy, err := samplingFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.generator.Generate(r.Context(), policy)
	writeCSV(w, result)
}

// decodeTLERequest reads and validates the from-tle request body. The length
// bound rejects obviously truncated lines early with a clearer message than
// the parser's.
func decodeTLERequest(r *http.Request) (model.TLERequest, error) {
	var req model.TLERequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %v", err)
	}

	if req.TLELine1 == "" || req.TLELine2 == "" {
		return req, fmt.Errorf("both tle_line1 and tle_line2 are required")
	}
	if len(req.TLELine1) < tle.MinLineLength || len(req.TLELine2) < tle.MinLineLength {
		return req, fmt.Errorf("TLE lines are too short; standard TLE lines are 69 characters")
	}

	if req.TimeInterval == 0 {
		req.TimeInterval = defaultTLEIntervalSeconds
	}
	return req, nil
}

// generateFromTLE runs the materialize-then-generate composition shared by
// the JSON and CSV variants.
func (s *Server) generateFromTLE(w http.ResponseWriter, r *http.Request) (model.TrajectoryResult, bool) {
	req, err := decodeTLERequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.TrajectoryResult{}, false
	}

	policy, err := trajectory.ByInterval(req.TimeInterval)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.TrajectoryResult{}, false
	}

	path, err := s.materializer.Materialize(req.TLELine1, req.TLELine2)
	switch {
	case errors.Is(err, tle.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
		return model.TrajectoryResult{}, false
	case errors.Is(err, scenario.ErrStorage):
		writeError(w, http.StatusInternalServerError, err.Error())
		return model.TrajectoryResult{}, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return model.TrajectoryResult{}, false
	}

	return s.generator.GenerateFrom(r.Context(), path, policy), true
}

func (s *Server) handleFromTLE(w http.ResponseWriter, r *http.Request) {
	result, ok := s.generateFromTLE(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFromTLECSV(w http.ResponseWriter, r *http.Request) {
	result, ok := s.generateFromTLE(w, r)
	if !ok {
		return
	}
	writeCSV(w, result)
}

// handlePropagateOrbit echoes the initial state as a one-point trajectory.
// Placeholder semantics retained from the first service iteration; it is not
// wired to the propagation engine.
func (s *Server) handlePropagateOrbit(w http.ResponseWriter, r *http.Request) {
	var req model.PropagationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	point := map[string]any{"epoch": req.Options.StartTime}
	set := func(key string, v *float64) {
		if v != nil {
			point[key] = *v
		}
	}
	set("x", req.InitialState.X)
	set("y", req.InitialState.Y)
	set("z", req.InitialState.Z)
	set("vx", req.InitialState.VX)
	set("vy", req.InitialState.VY)
	set("vz", req.InitialState.VZ)

	writeJSON(w, http.StatusOK, model.PropagationResponse{
		Trajectory: []map[string]any{point},
		Events:     []map[string]any{},
	})
}
