package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/spyglass/pkg/directory"
	"mercator-hq/spyglass/pkg/ollama"
	"mercator-hq/spyglass/pkg/pipeline"
	"mercator-hq/spyglass/pkg/telemetry/metrics"
)

// generatePrompt is the body of a generation request.
type generatePrompt struct {
	Username string `json:"username"`
	Prompt   string `json:"prompt"`
}

// Generate proxies generation requests to the Ollama service, mirroring
// the upstream exchange into the event stream.
type Generate struct {
	store    directory.Store
	client   *ollama.Client
	pipeline *pipeline.Pipeline
	upstream *metrics.UpstreamMetrics
	logger   *slog.Logger
}

// NewGenerate creates the generation handler. upstream may be nil when
// metrics are disabled.
func NewGenerate(store directory.Store, client *ollama.Client, p *pipeline.Pipeline, upstream *metrics.UpstreamMetrics) *Generate {
	return &Generate{
		store:    store,
		client:   client,
		pipeline: p,
		upstream: upstream,
		logger:   slog.Default().With("component", "handlers.generate"),
	}
}

// ServeHTTP handles POST /llm/generate.
func (h *Generate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var prompt generatePrompt
	if err := decodeJSON(r, &prompt); err != nil || prompt.Username == "" || prompt.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	inv := h.pipeline.Begin(ctx, http.MethodPost, r.URL.Path, map[string]any{
		"username": prompt.Username,
		"prompt":   prompt.Prompt,
	})
	defer inv.EnsureTerminal(ctx)

	exists, err := h.store.Exists(ctx, prompt.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "user lookup failed", "error", err)
		fail(w, r, inv, "directory backend failure")
		return
	}
	if !exists {
		respond(w, r, inv, http.StatusUnauthorized, map[string]string{
			"detail": "User not found or not authenticated",
		})
		return
	}

	upstreamURL := h.client.GenerateURL()
	inv.OllamaRequest(ctx, upstreamURL, h.client.BuildRequest(prompt.Prompt))

	start := time.Now()
	result, err := h.client.Generate(ctx, prompt.Prompt)
	elapsed := time.Since(start)

	var transportErr *ollama.TransportError
	var statusErr *ollama.StatusError
	switch {
	case errors.As(err, &transportErr):
		h.recordUpstream(metrics.UpstreamTransportError, elapsed)
		h.logger.ErrorContext(ctx, "ollama request failed",
			"url", upstreamURL,
			"error", transportErr.Cause,
		)
		inv.OllamaError(ctx, upstreamURL, fmt.Sprintf("Error requesting Ollama: %v", transportErr.Cause))
		respond(w, r, inv, http.StatusServiceUnavailable, map[string]string{
			"detail": "LLM service unavailable",
		})

	case errors.As(err, &statusErr):
		h.recordUpstream(metrics.UpstreamStatusError, elapsed)
		h.logger.ErrorContext(ctx, "ollama returned error status",
			"url", upstreamURL,
			"status", statusErr.StatusCode,
		)
		inv.OllamaResponse(ctx, upstreamURL, result.StatusCode, result.Payload)
		respond(w, r, inv, http.StatusBadGateway, map[string]string{
			"detail": "Error from LLM service",
		})

	case err != nil:
		h.recordUpstream(metrics.UpstreamTransportError, elapsed)
		h.logger.ErrorContext(ctx, "unexpected generation failure", "error", err)
		fail(w, r, inv, fmt.Sprintf("Unexpected error during LLM generation: %v", err))

	default:
		h.recordUpstream(metrics.UpstreamSuccess, elapsed)
		inv.OllamaResponse(ctx, upstreamURL, result.StatusCode, result.Payload)
		respond(w, r, inv, http.StatusOK, map[string]string{
			"text": result.Text,
		})
	}
}

func (h *Generate) recordUpstream(outcome string, elapsed time.Duration) {
	if h.upstream != nil {
		h.upstream.CallCompleted(outcome, elapsed)
	}
}
