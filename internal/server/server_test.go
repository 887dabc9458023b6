package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/code-indexer/internal/discover"
	"github.com/randalmurphal/code-indexer/internal/embed"
	"github.com/randalmurphal/code-indexer/internal/index"
	"github.com/randalmurphal/code-indexer/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(`package main

func Greet(name string) string {
	return "hello " + name
}

func main() {
	Greet("world")
}
`), 0644))

	d := discover.New(nil, nil, 1<<20)
	r := router.New()
	b := index.New(d, r, nil, 1)
	provider := embed.NewLocalProvider("")

	s := New(root, b, provider, nil, nil)
	require.NoError(t, s.Init(context.Background()))
	return s, root
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthReturnsOK(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
}

func TestSearchFindsSymbol(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/search", map[string]interface{}{"query": "Greet"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	results := body["results"].([]interface{})
	require.NotEmpty(t, results)
}

func TestSearchMissingQueryReturns400(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/search", map[string]interface{}{"query": ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "query required", body["error"])
}

func TestSearchNoIndexReturns404(t *testing.T) {
	root := t.TempDir()
	d := discover.New(nil, nil, 1<<20)
	r := router.New()
	b := index.New(d, r, nil, 1)
	provider := embed.NewLocalProvider("")
	s := New(root, b, provider, nil, nil)

	rec := doRequest(t, s.Handler(), http.MethodPost, "/search", map[string]interface{}{"query": "Greet"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSemSearchReturnsResults(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/semsearch", map[string]interface{}{"query": "greeting function", "k": 5})

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "greeting function", body["query"])
}

func TestReloadReturnsCounts(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodPost, "/reload", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "reloaded", body["status"])
	assert.Greater(t, body["files"], float64(0))
}

func TestReloadWithNoMirrorsConfiguredIsNoOp(t *testing.T) {
	s, _ := newTestServer(t)
	s.SetMirrors(nil, nil, nil)

	files, vectors, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Greater(t, files, 0)
	assert.GreaterOrEqual(t, vectors, 0)
}

func TestUnknownRouteReturns404(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.Handler(), http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not found", body["error"])
}
