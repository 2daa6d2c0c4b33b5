package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"switchd/pkg/types"
)

// Client is a thin wrapper over the daemon's HTTP API used by the CLI
// subcommands.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client for the daemon at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Models(ctx context.Context) (types.ModelsResponse, error) {
	var out types.ModelsResponse
	err := c.get(ctx, "/models", &out)
	return out, err
}

// Switch posts a switch request. The daemon returns a well-formed result
// even on failure, so the result is decoded regardless of status.
func (c *Client) Switch(ctx context.Context, model string) (types.SwitchResult, error) {
	body, err := json.Marshal(types.SwitchRequest{Model: model})
	if err != nil {
		return types.SwitchResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/switch", bytes.NewReader(body))
	if err != nil {
		return types.SwitchResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.SwitchResult{}, err
	}
	defer resp.Body.Close()
	var res types.SwitchResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return types.SwitchResult{}, fmt.Errorf("decode switch result (%s): %w", resp.Status, err)
	}
	return res, nil
}

func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	var out types.HealthResponse
	err := c.get(ctx, "/telemetry/health", &out)
	return out, err
}

func (c *Client) Metrics(ctx context.Context) (types.MetricsResponse, error) {
	var out types.MetricsResponse
	err := c.get(ctx, "/telemetry/metrics", &out)
	return out, err
}

func (c *Client) Recommendations(ctx context.Context) (types.RecommendationsResponse, error) {
	var out types.RecommendationsResponse
	err := c.get(ctx, "/telemetry/recommendations", &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr types.ErrorResponse
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
