package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stacksolve/pkg/deps/catalog"
	"github.com/matzehuels/stacksolve/pkg/engine"
	"github.com/matzehuels/stacksolve/pkg/errors"
	"github.com/matzehuels/stacksolve/pkg/observability"
	"github.com/matzehuels/stacksolve/pkg/search"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := catalog.New(map[string]catalog.Entry{
		"A":        {Version: "1.0", Dependencies: []string{"B"}},
		"B":        {Version: "1.0", Dependencies: []string{"C"}},
		"C":        {Version: "1.0", Dependencies: []string{"A"}},
		"libx-1.0": {Version: "1.0"},
		"libx-2.0": {Version: "2.0"},
		"solo":     {Version: "0.1.0", License: "MIT"},
	})
	logger := log.New(io.Discard)
	e := engine.New(store, engine.Options{Logger: logger, Search: search.Options{Budget: 100}})
	return New(e, Options{Logger: logger, Gatherer: prometheus.NewRegistry()})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error
}

func TestResolveHandler(t *testing.T) {
	t.Run("cycle is reported", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodPost, "/v1/resolve", `{"packages": ["A"]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var res engine.Result
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, [][]string{{"A", "B", "C", "A"}}, res.Cycles)
		require.Len(t, res.Conflicts, 1)
		assert.Equal(t, "dependency_cycle", string(res.Conflicts[0].Kind))
		assert.Equal(t, "/v1/resolutions/"+res.ID, w.Header().Get("Location"))
	})

	t.Run("version conflict is reported", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodPost, "/v1/resolve", `{"packages": ["libx-1.0", "libx-2.0"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var res engine.Result
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		require.Len(t, res.Conflicts, 1)
		assert.Equal(t, "version_conflict", string(res.Conflicts[0].Kind))
		assert.Equal(t, "version_negotiation", string(res.Conflicts[0].Resolution))
	})

	t.Run("single package has empty conflicts", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodPost, "/v1/resolve", `{"packages": ["solo"], "constraints": {"seed": 3}}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"conflicts": []`)

		var res engine.Result
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, 1.0, res.Confidence)
		assert.Equal(t, map[string]bool{"solo": true}, res.Configuration)
	})

	t.Run("invalid constraint is 400", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodPost, "/v1/resolve", `{"packages": ["solo"], "constraints": {"search_budget": -1}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errors.ErrCodeInvalidConstraint, decodeError(t, w).Code)
	})

	t.Run("unknown package is 404", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodPost, "/v1/resolve", `{"packages": ["nope"]}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, errors.ErrCodePackageNotFound, decodeError(t, w).Code)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodPost, "/v1/resolve", `{"packages": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errors.ErrCodeInvalidInput, decodeError(t, w).Code)
	})

	t.Run("unknown field is 400", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodPost, "/v1/resolve", `{"pkgs": ["solo"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty package list is 400", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodPost, "/v1/resolve", `{"packages": []}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errors.ErrCodeInvalidInput, decodeError(t, w).Code)
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		s := newTestServer(t)
		w := do(t, s, http.MethodGet, "/v1/resolve", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestResolutionsHandlers(t *testing.T) {
	s := newTestServer(t)

	var ids []string
	for _, body := range []string{`{"packages": ["solo"]}`, `{"packages": ["A"]}`} {
		w := do(t, s, http.MethodPost, "/v1/resolve", body)
		require.Equal(t, http.StatusOK, w.Code)
		var res engine.Result
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		ids = append(ids, res.ID)
	}

	t.Run("list is newest first", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/v1/resolutions", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []Summary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list, 2)
		assert.Equal(t, ids[1], list[0].ID)
		assert.Equal(t, ids[0], list[1].ID)
		assert.Equal(t, 3, list[0].Nodes)
		assert.Equal(t, 1, list[0].Conflicts)
	})

	t.Run("get by id", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/v1/resolutions/"+ids[0], "")
		require.Equal(t, http.StatusOK, w.Code)

		var res engine.Result
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, ids[0], res.ID)
		assert.Equal(t, []string{"solo"}, res.Requested)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/v1/resolutions/does-not-exist", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, errors.ErrCodeResolutionNotFound, decodeError(t, w).Code)
	})

	t.Run("dot export", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/v1/resolutions/"+ids[1]+"/dot", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/vnd.graphviz")
		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, "digraph G {"))
		assert.Contains(t, body, `"A" -> "B"`)
	})
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var h HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Version)
	assert.Equal(t, 0, h.Resolutions)
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.SetResolveHooks(observability.NewPrometheus(reg))
	t.Cleanup(observability.Reset)

	store := catalog.New(map[string]catalog.Entry{"solo": {}})
	logger := log.New(io.Discard)
	e := engine.New(store, engine.Options{Logger: logger, Search: search.Options{Budget: 10}})
	s := New(e, Options{Logger: logger, Gatherer: reg})

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/v1/resolve", `{"packages": ["solo"]}`).Code)

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stacksolve_resolve_total")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	t.Run("preflight", func(t *testing.T) {
		w := do(t, s, http.MethodOptions, "/v1/resolve", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("headers on normal requests", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/healthz", "")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDefaultsApplied(t *testing.T) {
	store := catalog.New(map[string]catalog.Entry{
		"a": {Dependencies: []string{"b"}},
		"b": {Dependencies: []string{"c"}},
		"c": {},
	})
	logger := log.New(io.Discard)
	depth := 1
	e := engine.New(store, engine.Options{Logger: logger, Search: search.Options{Budget: 10}})
	s := New(e, Options{Logger: logger, Gatherer: prometheus.NewRegistry(), Defaults: engine.Constraints{MaxDepth: &depth}})

	w := do(t, s, http.MethodPost, "/v1/resolve", `{"packages": ["a"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res engine.Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Len(t, res.Graph.Nodes, 2)

	w = do(t, s, http.MethodPost, "/v1/resolve", `{"packages": ["a"], "constraints": {"max_depth": 5}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Len(t, res.Graph.Nodes, 3)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidConstraint, http.StatusBadRequest},
		{errors.ErrCodeInvalidPackage, http.StatusBadRequest},
		{errors.ErrCodePackageNotFound, http.StatusNotFound},
		{errors.ErrCodeMetadataFetch, http.StatusBadGateway},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.code), string(tt.code))
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
