package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bmertz/falpipe/pkg/api"
	"github.com/bmertz/falpipe/pkg/debug"
	"github.com/bmertz/falpipe/pkg/provider"
)

// maxResultSize bounds how much of a terminal response body is read. The
// queue returns image URLs rather than payloads, so real responses are
// small JSON documents.
const maxResultSize = 4 << 20

// Client implements provider.Provider for the fal.ai queue API.
type Client struct {
	cfg    Config
	client *http.Client
}

// Ensure Client implements provider.Provider at compile time.
var _ provider.Provider = (*Client)(nil)

// New creates a fal queue client. Zero-valued config fields take their
// defaults, so New(Config{}) talks to the public queue endpoint.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.QueueURL == "" {
		cfg.QueueURL = def.QueueURL
	}
	cfg.QueueURL = strings.TrimRight(cfg.QueueURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return "fal"
}

// Generate submits one generation to the queue and blocks until the queue
// reports a terminal state. There is no overall deadline beyond ctx; each
// individual round trip is bounded by the configured timeout.
func (c *Client) Generate(ctx context.Context, req *provider.GenerationRequest) (*provider.GenerationResult, error) {
	if req.Target == "" {
		return nil, api.NewInvalidRequestError("target", "generation target must not be empty")
	}

	submitted, err := c.submit(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.awaitCompletion(ctx, submitted.StatusURL, req.Credential); err != nil {
		return nil, err
	}

	return c.fetchResult(ctx, submitted.ResponseURL, req.Credential)
}

// Close releases provider resources.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// submit enqueues the generation and returns the queue's bookkeeping URLs.
func (c *Client) submit(ctx context.Context, req *provider.GenerationRequest) (*queueSubmitResponse, error) {
	body, err := json.Marshal(req.Arguments)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal generation arguments: %s", err.Error()))
	}

	url := c.cfg.QueueURL + "/" + strings.TrimLeft(req.Target, "/")
	debug.Log("backend", "queue submit", "target", req.Target, "url", url)
	if debug.TraceIsEnabled("backend") {
		debug.Raw("backend", "POST "+url)
		debug.Raw("backend", string(body))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	authorize(httpReq, req.Credential)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	var submitted queueSubmitResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&submitted); err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to parse queue response: %s", err.Error()))
	}
	if submitted.StatusURL == "" || submitted.ResponseURL == "" {
		return nil, api.NewServerError("queue response did not include status and response URLs")
	}

	debug.Log("backend", "queued", "request_id", submitted.RequestID)
	return &submitted, nil
}

// awaitCompletion polls the status endpoint until the queue reports
// COMPLETED. Any other state keeps polling; failures do not get a state
// of their own and surface when the terminal response is fetched.
func (c *Client) awaitCompletion(ctx context.Context, statusURL, credential string) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := c.checkStatus(ctx, statusURL, credential)
		if err != nil {
			return err
		}
		if status.Status == queueStatusCompleted {
			return nil
		}

		select {
		case <-ctx.Done():
			return api.NewServerError(fmt.Sprintf("generation wait aborted: %s", ctx.Err()))
		case <-ticker.C:
		}
	}
}

// checkStatus performs one status poll.
func (c *Client) checkStatus(ctx context.Context, statusURL, credential string) (*queueStatusResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	authorize(httpReq, credential)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	var status queueStatusResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&status); err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to parse queue status: %s", err.Error()))
	}

	debug.Trace("backend", "queue status", "status", status.Status, "queue_position", status.QueuePosition)
	return &status, nil
}

// fetchResult retrieves the terminal response and decodes the image list.
// The raw body is preserved on the result so callers can report what the
// backend actually returned.
func (c *Client) fetchResult(ctx context.Context, responseURL, credential string) (*provider.GenerationResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, responseURL, nil)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	authorize(httpReq, credential)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResultSize))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to read queue result: %s", err.Error()))
	}
	debug.Log("backend", "queue result", "bytes", len(raw))
	debug.Raw("backend", string(raw))

	var payload generationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to parse queue result: %s", err.Error()))
	}

	result := &provider.GenerationResult{
		Raw: json.RawMessage(raw),
	}
	for _, img := range payload.Images {
		result.Images = append(result.Images, provider.Image{
			URL:         img.URL,
			Width:       img.Width,
			Height:      img.Height,
			ContentType: img.ContentType,
		})
	}

	return result, nil
}

// authorize attaches the per-request credential. The queue expects the
// "Key" scheme rather than "Bearer".
func authorize(req *http.Request, credential string) {
	if credential != "" {
		req.Header.Set("Authorization", "Key "+credential)
	}
}
