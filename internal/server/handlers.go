package server

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stacksolve/pkg/buildinfo"
	"github.com/matzehuels/stacksolve/pkg/engine"
	"github.com/matzehuels/stacksolve/pkg/errors"
	"github.com/matzehuels/stacksolve/pkg/graph"
)

// ResolveRequest is the body of POST /v1/resolve.
type ResolveRequest struct {
	Packages    []string           `json:"packages"`
	Constraints engine.Constraints `json:"constraints"`
}

// Summary is one entry of GET /v1/resolutions.
type Summary struct {
	ID           string    `json:"resolution_id"`
	Requested    []string  `json:"requested_packages"`
	Nodes        int       `json:"nodes"`
	Conflicts    int       `json:"conflicts"`
	SearchMethod string    `json:"search_method"`
	Confidence   float64   `json:"confidence"`
	DurationMS   uint64    `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Resolutions int    `json:"resolutions"`
}

var startTime = time.Now()

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Version:     buildinfo.Get().Version,
		Uptime:      time.Since(startTime).Round(time.Second).String(),
		Resolutions: s.engine.History().Len(),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, s.opts.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	res, err := s.engine.Resolve(r.Context(), req.Packages, req.Constraints.Merge(s.opts.Defaults))
	if err != nil {
		s.opts.Logger.Warn("resolve failed", "packages", req.Packages, "err", err)
		writeCodedError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/resolutions/"+res.ID)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	results := s.engine.History().List()
	slices.Reverse(results)

	out := make([]Summary, len(results))
	for i, res := range results {
		out[i] = Summary{
			ID:           res.ID,
			Requested:    res.Requested,
			Nodes:        len(res.Graph.Nodes),
			Conflicts:    len(res.Conflicts),
			SearchMethod: res.SearchMethod,
			Confidence:   res.Confidence,
			DurationMS:   res.DurationMS,
			CreatedAt:    res.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r)
	if !ok {
		return
	}
	g, err := graph.FromSnapshot(res.Graph)
	if err != nil {
		writeCodedError(w, errors.Wrap(errors.ErrCodeInternal, err, "rebuild graph"))
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, graph.ToDOT(g, graph.DOTOptions{
		Configuration: res.Configuration,
		Detailed:      r.URL.Query().Get("detailed") == "true",
	}))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*engine.Result, bool) {
	id := chi.URLParam(r, "id")
	res, ok := s.engine.History().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.ErrCodeResolutionNotFound, "resolution "+id+" not found")
		return nil, false
	}
	return res, true
}
