package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type capturedGenerate struct {
	Model     string `json:"model"`
	KeepAlive string `json:"keep_alive"`
}

type fakeOllama struct {
	mu        sync.Mutex
	generates []capturedGenerate
	tagsBody  string
	psBody    string
	status    int
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			http.Error(w, "boom", f.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.tagsBody))
	})
	mux.HandleFunc("/api/ps", func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			http.Error(w, "boom", f.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.psBody))
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req capturedGenerate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.generates = append(f.generates, req)
		f.mu.Unlock()
		if f.status != 0 {
			http.Error(w, "boom", f.status)
			return
		}
		w.Write([]byte(`{"done":true}`))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeOllama) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL:        srv.URL,
		KeepAlive:      30 * time.Minute,
		RequestTimeout: 2 * time.Second,
		Logger:         zerolog.Nop(),
	})
}

func TestListInstalled(t *testing.T) {
	f := &fakeOllama{tagsBody: `{"models":[
		{"name":"qwen2.5:7b","digest":"845dbda0ea48","size":4683087332,"modified_at":"2025-06-01T10:00:00Z"},
		{"name":"llama3.2:3b","digest":"a80c4f17acd5","size":2019393189,"modified_at":"2025-06-02T10:00:00Z"}
	]}`}
	c := newTestClient(t, f)

	models, err := c.ListInstalled(context.Background())
	if err != nil {
		t.Fatalf("list installed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Name != "qwen2.5:7b" || models[0].SizeBytes != 4683087332 {
		t.Fatalf("unexpected model: %+v", models[0])
	}
	if models[0].ModifiedAt.IsZero() {
		t.Fatalf("expected modified_at parsed")
	}
}

func TestListRunningComputesAcceleratorShare(t *testing.T) {
	f := &fakeOllama{psBody: `{"models":[
		{"name":"qwen2.5:7b","size":6000000000,"size_vram":6000000000,"expires_at":"2025-06-01T11:00:00Z"},
		{"name":"llama3.2:3b","size":4000000000,"size_vram":1000000000}
	]}`}
	c := newTestClient(t, f)

	running, err := c.ListRunning(context.Background())
	if err != nil {
		t.Fatalf("list running: %v", err)
	}
	if len(running) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(running))
	}
	if running[0].AcceleratorPct != 100 {
		t.Fatalf("expected full offload, got %d%%", running[0].AcceleratorPct)
	}
	if running[1].AcceleratorPct != 25 {
		t.Fatalf("expected 25%% offload, got %d%%", running[1].AcceleratorPct)
	}
}

func TestStartSendsKeepAlive(t *testing.T) {
	f := &fakeOllama{}
	c := newTestClient(t, f)

	if err := c.Start(context.Background(), "qwen2.5:7b"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(f.generates) != 1 {
		t.Fatalf("expected one generate call, got %d", len(f.generates))
	}
	got := f.generates[0]
	if got.Model != "qwen2.5:7b" || got.KeepAlive != "30m0s" {
		t.Fatalf("unexpected generate payload: %+v", got)
	}
}

func TestStopSendsZeroKeepAlive(t *testing.T) {
	f := &fakeOllama{}
	c := newTestClient(t, f)

	if err := c.Stop(context.Background(), "qwen2.5:7b"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := f.generates[0].KeepAlive; got != "0" {
		t.Fatalf("expected keep_alive 0 on stop, got %q", got)
	}
}

func TestPingRefreshesKeepAlive(t *testing.T) {
	f := &fakeOllama{}
	c := newTestClient(t, f)

	if err := c.Ping(context.Background(), "qwen2.5:7b"); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if got := f.generates[0].KeepAlive; got != "30m0s" {
		t.Fatalf("expected refreshed keep_alive, got %q", got)
	}
}

func TestHTTPErrorsSurface(t *testing.T) {
	f := &fakeOllama{status: http.StatusInternalServerError}
	c := newTestClient(t, f)

	if _, err := c.ListInstalled(context.Background()); err == nil {
		t.Fatalf("expected error on 500")
	}
	if err := c.Start(context.Background(), "m"); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestUnreachableRuntime(t *testing.T) {
	c := NewClient(ClientConfig{
		BaseURL:        "http://127.0.0.1:1",
		RequestTimeout: 500 * time.Millisecond,
		Logger:         zerolog.Nop(),
	})
	if _, err := c.ListInstalled(context.Background()); err == nil {
		t.Fatalf("expected error for unreachable runtime")
	}
}

func TestAcceleratorShare(t *testing.T) {
	cases := []struct {
		size, vram int64
		want       int
	}{
		{0, 0, 0},
		{100, 0, 0},
		{100, 50, 50},
		{100, 100, 100},
		{100, 150, 100},
	}
	for _, tc := range cases {
		if got := acceleratorShare(tc.size, tc.vram); got != tc.want {
			t.Fatalf("acceleratorShare(%d, %d) = %d, want %d", tc.size, tc.vram, got, tc.want)
		}
	}
}
