package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"mercator-hq/spyglass/pkg/config"
)

// maxErrorBodyLength caps how much of an upstream error body is kept for
// logging and error messages.
const maxErrorBodyLength = 500

// Health tracks the observed health of the Ollama service.
type Health struct {
	IsHealthy           bool
	LastCheck           time.Time
	ConsecutiveFailures int
	LastError           error
	TotalRequests       int64
	FailedRequests      int64
}

// Client is the HTTP client for the Ollama generation API. It provides
// connection pooling, per-request timeouts, and health tracking.
type Client struct {
	config config.OllamaConfig
	client *http.Client
	logger *slog.Logger

	healthMu sync.RWMutex
	health   Health
}

// NewClient creates an Ollama client from configuration.
func NewClient(cfg config.OllamaConfig) *Client {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: slog.Default().With("component", "ollama.client"),
		health: Health{
			IsHealthy: true, // start optimistic
			LastCheck: time.Now(),
		},
	}
}

// GenerateURL returns the full URL of the generation endpoint. The
// pipeline includes it in ollama_* events.
func (c *Client) GenerateURL() string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/api/generate"
}

// BuildRequest returns the request body that Generate will send for the
// given prompt. The pipeline broadcasts it in the ollama_request event.
func (c *Client) BuildRequest(prompt string) GenerateRequest {
	return GenerateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: false,
	}
}

// Generate sends a single synchronous generation request.
//
// On a transport failure the returned error is a *TransportError and the
// result is nil. On a non-2xx upstream status the returned error is a
// *StatusError and the result is still populated with the status and
// decoded payload so the caller can mirror the upstream response. On
// success the error is nil.
func (c *Client) Generate(ctx context.Context, prompt string) (*GenerateResult, error) {
	url := c.GenerateURL()

	body, err := json.Marshal(c.BuildRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to encode generate request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.updateHealth(false, err)
		return nil, &TransportError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.updateHealth(false, err)
		return nil, &TransportError{URL: url, Cause: err}
	}

	result := &GenerateResult{StatusCode: resp.StatusCode}

	// Decode the body as JSON; a non-JSON body is carried verbatim
	// rather than treated as a failure.
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		result.Payload = map[string]any{"raw_response": string(raw)}
	} else {
		result.Payload = decoded
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.updateHealth(false, fmt.Errorf("status %d", resp.StatusCode))
		return result, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBodyLength),
		}
	}

	result.Text = fallbackText
	if decoded != nil {
		if text, ok := decoded["response"].(string); ok {
			result.Text = text
		}
	}

	c.updateHealth(true, nil)
	return result, nil
}

// IsHealthy returns the current health status.
func (c *Client) IsHealthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health.IsHealthy
}

// GetHealth returns detailed health information.
func (c *Client) GetHealth() Health {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health
}

// updateHealth records the outcome of a request.
func (c *Client) updateHealth(success bool, err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.LastCheck = time.Now()
	c.health.TotalRequests++

	if success {
		c.health.IsHealthy = true
		c.health.ConsecutiveFailures = 0
		c.health.LastError = nil
		return
	}

	c.health.FailedRequests++
	c.health.ConsecutiveFailures++
	c.health.LastError = err
	if c.health.ConsecutiveFailures >= 3 {
		if c.health.IsHealthy {
			c.logger.Warn("marking ollama unhealthy",
				"consecutive_failures", c.health.ConsecutiveFailures,
				"error", err,
			)
		}
		c.health.IsHealthy = false
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
