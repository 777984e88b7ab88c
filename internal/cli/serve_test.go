package cli

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
	"github.com/google/uuid"

	"github.com/matzehuels/modelgraph/pkg/cache"
	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := cache.NewLRUCache(8)
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, defaultKeyPrefix), logger)
	srv := httptest.NewServer(newServer(runner, logger, 10*time.Second))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServeHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if _, err := uuid.Parse(resp.Header.Get(headerRequestID)); err != nil {
		t.Errorf("missing request id: %q", resp.Header.Get(headerRequestID))
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Errorf("body = %v, err %v", body, err)
	}
}

func TestServeRequestIDPropagates(t *testing.T) {
	srv := newTestServer(t)
	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(headerRequestID, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(headerRequestID); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestServeRender(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/render?format=dot&channels=1", "application/yaml", testModel)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get(headerCache) != "miss" {
		t.Errorf("first request %s = %q, want miss", headerCache, resp.Header.Get(headerCache))
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `Input\nC=1`) {
		t.Errorf("unexpected body:\n%s", body)
	}

	again := post(t, srv.URL+"/render?format=dot&channels=1", "application/yaml", testModel)
	if again.Header.Get(headerCache) != "hit" {
		t.Errorf("second request %s = %q, want hit", headerCache, again.Header.Get(headerCache))
	}
}

func TestServeRenderSVG(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/render", "text/plain", testModel)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServeInspect(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/inspect?input=json", "", `{"backbone": [[-1, 1, "Conv", [16]]], "head": [[-1, 1, "Detect", [80]]]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var graph struct {
		BackboneLen int   `json:"backbone_len"`
		Channels    []int `json:"channels"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
		t.Fatal(err)
	}
	if graph.BackboneLen != 1 || len(graph.Channels) != 3 || graph.Channels[2] != 80 {
		t.Errorf("graph = %+v", graph)
	}
}

func TestServeErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"bad format", "/render?format=gif", testModel, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad channels", "/render?channels=abc", testModel, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad input", "/inspect?input=xml", testModel, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad document", "/inspect", "width_multiple: wide\n", http.StatusBadRequest, "INVALID_CONFIG"},
		{"too large", "/inspect", strings.Repeat("#", maxBodyBytes+1), http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, "", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code || e.Error == "" || e.RequestID == "" {
				t.Errorf("error body = %+v", e)
			}
		})
	}
}

func TestServeMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/render")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

type countingHTTPHooks struct {
	observability.NoopHTTPHooks
	statuses []int
}

func (h *countingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}

func TestServeEmitsHTTPHooks(t *testing.T) {
	h := &countingHTTPHooks{}
	observability.SetHTTPHooks(h)
	defer observability.Reset()

	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	srv.Close()

	if len(h.statuses) != 1 || h.statuses[0] != http.StatusOK {
		t.Errorf("statuses = %v", h.statuses)
	}
}

func TestNewServeCacheRedisUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := newServeCache(ctx, serveOpts{redisURL: "redis://127.0.0.1:1/0"}); err == nil {
		t.Error("unreachable redis should fail")
	}
}
