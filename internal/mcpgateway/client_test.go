package mcpgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL, FailureThreshold: 2, RecoveryTimeout: time.Minute})
	return client, srv
}

func TestClientCallToolSuccess(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(mcp.CallToolResult{})
	})

	result, err := client.CallTool(context.Background(), "search", map[string]any{"q": "x"})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if result == nil {
		t.Fatal("CallTool() result = nil, want a decoded result")
	}
}

func TestClientCallToolNonOKStatusIsFailure(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CallTool(context.Background(), "search", nil)
	if err == nil {
		t.Fatal("expected an error for a non-200 gateway response")
	}
}

func TestClientCallToolOpensBreakerAfterRepeatedFailures(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 2; i++ {
		if _, err := client.CallTool(context.Background(), "flaky", nil); err == nil {
			t.Fatal("expected failure from the server")
		}
	}

	_, err := client.CallTool(context.Background(), "flaky", nil)
	if err == nil {
		t.Fatal("expected circuit-open error once the failure threshold is reached")
	}
}

func TestClientCallToolsFansOutIndependently(t *testing.T) {
	var calls int32
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(mcp.CallToolResult{})
	})

	results := client.CallTools(context.Background(), map[string]map[string]any{
		"a": {"x": 1},
		"b": {"y": 2},
		"c": {"z": 3},
	})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("tool %q returned error: %v", r.Tool, r.Err)
		}
	}
}

func TestClientDefaultsTimeouts(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://example.invalid"})
	if client.cfg.PerToolTimeout != 10*time.Second {
		t.Errorf("PerToolTimeout = %v, want default 10s", client.cfg.PerToolTimeout)
	}
	if client.cfg.AggregateTimeout != 30*time.Second {
		t.Errorf("AggregateTimeout = %v, want default 30s", client.cfg.AggregateTimeout)
	}
}
