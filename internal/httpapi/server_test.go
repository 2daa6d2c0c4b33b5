package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"switchd/internal/control"
	"switchd/pkg/types"
)

type fakeModelService struct {
	installed []types.Model
	active    types.ActiveModel
	listErr   error
	switchRes types.SwitchResult
	switchErr error
	switched  []string
}

func (f *fakeModelService) Installed(ctx context.Context) ([]types.Model, error) {
	return f.installed, f.listErr
}

func (f *fakeModelService) Active() types.ActiveModel { return f.active }

func (f *fakeModelService) SwitchTo(ctx context.Context, model string) (types.SwitchResult, error) {
	f.switched = append(f.switched, model)
	return f.switchRes, f.switchErr
}

type fakeTelemetryService struct {
	latest  types.Snapshot
	sampled bool
	avg     types.Averages
	samples int
}

func (f *fakeTelemetryService) Latest() (types.Snapshot, bool) { return f.latest, f.sampled }
func (f *fakeTelemetryService) Averages() types.Averages       { return f.avg }
func (f *fakeTelemetryService) HistoryLen() int                { return f.samples }
func (f *fakeTelemetryService) Subscribe() (<-chan types.Snapshot, func()) {
	ch := make(chan types.Snapshot, 1)
	if f.sampled {
		ch <- f.latest
	}
	return ch, func() {}
}

func newTestServer(t *testing.T, models ModelService, telem TelemetryService) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewMux(models, telem))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postSwitch(t *testing.T, srv *httptest.Server, body string) (*http.Response, types.SwitchResult) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/models/switch", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /models/switch: %v", err)
	}
	defer resp.Body.Close()
	var res types.SwitchResult
	_ = json.NewDecoder(resp.Body).Decode(&res)
	return resp, res
}

func TestGetModels(t *testing.T) {
	models := &fakeModelService{
		installed: []types.Model{{Name: "model-a"}, {Name: "model-b"}},
		active:    types.ActiveModel{Name: "model-a"},
	}
	srv := newTestServer(t, models, &fakeTelemetryService{})

	var resp types.ModelsResponse
	if status := getJSON(t, srv.URL+"/models", &resp); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(resp.Available) != 2 || resp.Current != "model-a" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetModelsRuntimeDown(t *testing.T) {
	models := &fakeModelService{listErr: context.DeadlineExceeded}
	srv := newTestServer(t, models, &fakeTelemetryService{})

	var resp types.ErrorResponse
	if status := getJSON(t, srv.URL+"/models", &resp); status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", status)
	}
	if resp.Code != http.StatusServiceUnavailable || resp.Error == "" {
		t.Fatalf("unexpected error payload: %+v", resp)
	}
}

func TestSwitchSuccess(t *testing.T) {
	models := &fakeModelService{switchRes: types.SwitchResult{
		Success: true, Message: `switched to "model-b"`, ActiveModel: "model-b",
	}}
	srv := newTestServer(t, models, &fakeTelemetryService{})

	resp, res := postSwitch(t, srv, `{"model":"model-b"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !res.Success || res.ActiveModel != "model-b" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(models.switched) != 1 || models.switched[0] != "model-b" {
		t.Fatalf("expected one switch call, got %v", models.switched)
	}
}

func TestSwitchNotFoundMapsTo404(t *testing.T) {
	werr := control.ErrModelNotFound("missing", []string{"model-a"})
	models := &fakeModelService{
		switchRes: types.SwitchResult{Success: false, Message: werr.Error()},
		switchErr: werr,
	}
	srv := newTestServer(t, models, &fakeTelemetryService{})

	resp, res := postSwitch(t, srv, `{"model":"missing"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if res.Success || !strings.Contains(res.Message, "model-a") {
		t.Fatalf("expected failure listing installed models, got %+v", res)
	}
}

func TestSwitchTimeoutMapsTo500(t *testing.T) {
	models := &fakeModelService{
		switchRes: types.SwitchResult{Success: false, Message: "failed to start"},
		switchErr: context.DeadlineExceeded,
	}
	srv := newTestServer(t, models, &fakeTelemetryService{})

	resp, res := postSwitch(t, srv, `{"model":"model-a"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if res.Success {
		t.Fatalf("expected failed result, got %+v", res)
	}
}

func TestSwitchBadRequests(t *testing.T) {
	models := &fakeModelService{}
	srv := newTestServer(t, models, &fakeTelemetryService{})

	resp, _ := postSwitch(t, srv, `{"model":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty model, got %d", resp.StatusCode)
	}
	resp, _ = postSwitch(t, srv, `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/models/switch", bytes.NewReader([]byte(`{"model":"m"}`)))
	req.Header.Set("Content-Type", "text/plain")
	raw, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	raw.Body.Close()
	if raw.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for wrong content type, got %d", raw.StatusCode)
	}
	if len(models.switched) != 0 {
		t.Fatalf("expected no switch calls for rejected requests, got %v", models.switched)
	}
}

func TestTelemetryHealth(t *testing.T) {
	telem := &fakeTelemetryService{
		sampled: true,
		latest: types.Snapshot{
			Timestamp:            time.Now(),
			AcceleratorAvailable: true,
			AcceleratorName:      "RTX 4090",
			UtilizationPct:       87,
			MemoryUsedBytes:      5647 * 1024 * 1024,
			MemoryTotalBytes:     24576 * 1024 * 1024,
			TemperatureC:         62,
			ActiveModel:          "qwen2.5:7b",
			AcceleratorBacked:    true,
		},
	}
	srv := newTestServer(t, &fakeModelService{}, telem)

	var resp types.HealthResponse
	if status := getJSON(t, srv.URL+"/telemetry/health", &resp); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !resp.Sampled || !resp.AcceleratorAvailable || resp.AcceleratorName != "RTX 4090" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.MemoryUsage != "5647/24576 MB" {
		t.Fatalf("unexpected memory usage rendering: %q", resp.MemoryUsage)
	}
}

func TestTelemetryHealthDegraded(t *testing.T) {
	srv := newTestServer(t, &fakeModelService{}, &fakeTelemetryService{})

	var resp types.HealthResponse
	if status := getJSON(t, srv.URL+"/telemetry/health", &resp); status != http.StatusOK {
		t.Fatalf("health must not fail without samples, got %d", status)
	}
	if resp.Sampled || resp.AcceleratorAvailable {
		t.Fatalf("expected degraded payload, got %+v", resp)
	}
	if resp.MemoryUsage != "n/a" {
		t.Fatalf("expected n/a memory usage, got %q", resp.MemoryUsage)
	}
}

func TestTelemetryMetrics(t *testing.T) {
	telem := &fakeTelemetryService{
		sampled: true,
		latest:  types.Snapshot{UtilizationPct: 80},
		avg:     types.Averages{UtilizationPct: 70.5},
		samples: 42,
	}
	srv := newTestServer(t, &fakeModelService{}, telem)

	var resp types.MetricsResponse
	if status := getJSON(t, srv.URL+"/telemetry/metrics", &resp); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if resp.Current.UtilizationPct != 80 || resp.Averages.UtilizationPct != 70.5 || resp.Samples != 42 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTelemetryRecommendations(t *testing.T) {
	srv := newTestServer(t, &fakeModelService{}, &fakeTelemetryService{})

	var resp types.RecommendationsResponse
	if status := getJSON(t, srv.URL+"/telemetry/recommendations", &resp); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(resp.Recommendations) == 0 {
		t.Fatalf("expected advisories even without telemetry")
	}
	if resp.GeneratedAt.IsZero() {
		t.Fatalf("expected generated_at set")
	}
}

func TestReadyz(t *testing.T) {
	telem := &fakeTelemetryService{}
	srv := newTestServer(t, &fakeModelService{}, telem)

	if status := getJSON(t, srv.URL+"/readyz", nil); status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first sample, got %d", status)
	}
	telem.sampled = true
	if status := getJSON(t, srv.URL+"/readyz", nil); status != http.StatusOK {
		t.Fatalf("expected 200 once sampled, got %d", status)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeModelService{}, &fakeTelemetryService{})
	if status := getJSON(t, srv.URL+"/healthz", nil); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
}

func TestPrometheusEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeModelService{}, &fakeTelemetryService{})
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
