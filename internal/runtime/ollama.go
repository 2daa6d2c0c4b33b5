package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"switchd/pkg/types"
)

const (
	// DefaultBaseURL is where a locally hosted Ollama listens.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultKeepAlive is forwarded on load/ping so the runtime keeps the
	// model resident between requests.
	DefaultKeepAlive = 30 * time.Minute
)

// Client talks to the Ollama HTTP API. Loads and unloads go through
// /api/generate with a keep_alive hint: a positive duration loads or
// refreshes the model, zero unloads it immediately.
type Client struct {
	baseURL    string
	keepAlive  time.Duration
	reqTimeout time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientConfig holds Client construction tunables. Zero values fall back
// to package defaults.
type ClientConfig struct {
	BaseURL        string
	KeepAlive      time.Duration
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// NewClient constructs a runtime client with a tuned transport.
func NewClient(cfg ClientConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	reqTimeout := cfg.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = 10 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    16,
		IdleConnTimeout: 90 * time.Second,
	}
	// Timeout stays 0 on the client; every request carries a context deadline.
	return &Client{
		baseURL:    base,
		keepAlive:  keepAlive,
		reqTimeout: reqTimeout,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
		log:        cfg.Logger.With().Str("component", "runtime_client").Logger(),
	}
}

// tagsResponse mirrors GET /api/tags.
type tagsResponse struct {
	Models []struct {
		Name       string    `json:"name"`
		Digest     string    `json:"digest"`
		Size       int64     `json:"size"`
		ModifiedAt time.Time `json:"modified_at"`
	} `json:"models"`
}

// psResponse mirrors GET /api/ps.
type psResponse struct {
	Models []struct {
		Name      string    `json:"name"`
		Size      int64     `json:"size"`
		SizeVRAM  int64     `json:"size_vram"`
		ExpiresAt time.Time `json:"expires_at"`
	} `json:"models"`
}

// generateRequest is the minimal /api/generate payload used for lifecycle
// control. An empty prompt makes the runtime load (or unload) the model
// without generating anything.
type generateRequest struct {
	Model     string `json:"model"`
	KeepAlive string `json:"keep_alive"`
}

func (c *Client) ListInstalled(ctx context.Context) ([]types.Model, error) {
	var body tagsResponse
	if err := c.getJSON(ctx, "/api/tags", &body); err != nil {
		return nil, fmt.Errorf("list installed: %w", err)
	}
	models := make([]types.Model, 0, len(body.Models))
	for _, m := range body.Models {
		models = append(models, types.Model{
			Name:       m.Name,
			Digest:     m.Digest,
			SizeBytes:  m.Size,
			ModifiedAt: m.ModifiedAt,
		})
	}
	return models, nil
}

func (c *Client) ListRunning(ctx context.Context) ([]types.RunningModel, error) {
	var body psResponse
	if err := c.getJSON(ctx, "/api/ps", &body); err != nil {
		return nil, fmt.Errorf("list running: %w", err)
	}
	running := make([]types.RunningModel, 0, len(body.Models))
	for _, m := range body.Models {
		running = append(running, types.RunningModel{
			Name:           m.Name,
			SizeBytes:      m.Size,
			SizeVRAMBytes:  m.SizeVRAM,
			AcceleratorPct: acceleratorShare(m.Size, m.SizeVRAM),
			ExpiresAt:      m.ExpiresAt,
		})
	}
	return running, nil
}

func (c *Client) Start(ctx context.Context, name string) error {
	if err := c.generate(ctx, name, c.keepAlive); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}

func (c *Client) Stop(ctx context.Context, name string) error {
	if err := c.generate(ctx, name, 0); err != nil {
		return fmt.Errorf("stop %s: %w", name, err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context, name string) error {
	if err := c.generate(ctx, name, c.keepAlive); err != nil {
		return fmt.Errorf("ping %s: %w", name, err)
	}
	return nil
}

// generate posts a prompt-less /api/generate call carrying only the
// keep_alive hint. keepAlive==0 asks the runtime to unload the model.
func (c *Client) generate(ctx context.Context, name string, keepAlive time.Duration) error {
	payload := generateRequest{Model: name, KeepAlive: "0"}
	if keepAlive > 0 {
		payload.KeepAlive = keepAlive.String()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.reqTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the generate body is a single
	// JSON object when the prompt is empty.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("runtime http error: %s", resp.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.reqTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("runtime http error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// acceleratorShare reports how much of an instance sits on the accelerator.
func acceleratorShare(size, sizeVRAM int64) int {
	if size <= 0 || sizeVRAM <= 0 {
		return 0
	}
	pct := int(sizeVRAM * 100 / size)
	if pct > 100 {
		pct = 100
	}
	return pct
}
