package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"mercator-hq/spyglass/pkg/pipeline"
)

// respond emits the invocation's terminal event and writes the same
// status and payload to the HTTP client, keeping the two in lockstep.
func respond(w http.ResponseWriter, r *http.Request, inv *pipeline.Invocation, status int, payload any) {
	inv.Respond(r.Context(), status, payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response body", "error", err)
	}
}

// fail emits a server_error event plus a degraded terminal event, and
// writes a 500 to the client.
func fail(w http.ResponseWriter, r *http.Request, inv *pipeline.Invocation, detail string) {
	inv.Fail(r.Context(), detail)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Internal server error"})
}

// decodeJSON decodes a request body into dst. Callers reject the
// request before any events are emitted when decoding fails, mirroring
// transport-level validation.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeError writes a JSON error without pipeline involvement, for
// rejections that happen before a lifecycle begins.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
