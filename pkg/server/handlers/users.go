package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"mercator-hq/spyglass/pkg/directory"
	"mercator-hq/spyglass/pkg/pipeline"
)

// credentials is the body of register and login requests.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// passwordUpdate is the body of a password update request.
type passwordUpdate struct {
	Password string `json:"password"`
}

// Users serves the user directory endpoints.
type Users struct {
	store    directory.Store
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// NewUsers creates the user directory handler set.
func NewUsers(store directory.Store, p *pipeline.Pipeline) *Users {
	return &Users{
		store:    store,
		pipeline: p,
		logger:   slog.Default().With("component", "handlers.users"),
	}
}

// Register handles POST /register/.
func (h *Users) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil || creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	inv := h.pipeline.Begin(ctx, http.MethodPost, r.URL.Path, map[string]any{
		"username": creds.Username,
		"password": creds.Password,
	})
	defer inv.EnsureTerminal(ctx)

	err := h.store.Register(ctx, creds.Username, creds.Password)
	switch {
	case errors.Is(err, directory.ErrExists):
		respond(w, r, inv, http.StatusBadRequest, map[string]string{
			"detail": "Username already registered",
		})
	case err != nil:
		h.logger.ErrorContext(ctx, "register failed", "error", err)
		fail(w, r, inv, "directory backend failure")
	default:
		respond(w, r, inv, http.StatusOK, map[string]string{
			"status":  "success",
			"message": fmt.Sprintf("User '%s' registered", creds.Username),
		})
	}
}

// Login handles POST /login/.
func (h *Users) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil || creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	inv := h.pipeline.Begin(ctx, http.MethodPost, r.URL.Path, map[string]any{
		"username": creds.Username,
		"password": creds.Password,
	})
	defer inv.EnsureTerminal(ctx)

	err := h.store.Authenticate(ctx, creds.Username, creds.Password)
	switch {
	case errors.Is(err, directory.ErrBadCredentials):
		respond(w, r, inv, http.StatusUnauthorized, map[string]string{
			"detail": "Invalid username or password",
		})
	case err != nil:
		h.logger.ErrorContext(ctx, "login failed", "error", err)
		fail(w, r, inv, "directory backend failure")
	default:
		respond(w, r, inv, http.StatusOK, map[string]string{
			"status":  "success",
			"message": fmt.Sprintf("User '%s' logged in", creds.Username),
		})
	}
}

// Get handles GET /user/{username}/.
func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	ctx := r.Context()
	inv := h.pipeline.Begin(ctx, http.MethodGet, r.URL.Path, nil)
	defer inv.EnsureTerminal(ctx)

	exists, err := h.store.Exists(ctx, username)
	if err != nil {
		h.logger.ErrorContext(ctx, "user lookup failed", "error", err)
		fail(w, r, inv, "directory backend failure")
		return
	}
	if !exists {
		respond(w, r, inv, http.StatusNotFound, map[string]string{
			"detail": "User not found",
		})
		return
	}

	respond(w, r, inv, http.StatusOK, map[string]string{
		"username": username,
	})
}

// Update handles PUT /user/{username}/.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var update passwordUpdate
	if err := decodeJSON(r, &update); err != nil || update.Password == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	// The new password never enters the event stream.
	inv := h.pipeline.Begin(ctx, http.MethodPut, r.URL.Path, map[string]any{
		"username": username,
	})
	defer inv.EnsureTerminal(ctx)

	err := h.store.UpdatePassword(ctx, username, update.Password)
	switch {
	case errors.Is(err, directory.ErrNotFound):
		respond(w, r, inv, http.StatusNotFound, map[string]string{
			"detail": "User not found",
		})
	case err != nil:
		h.logger.ErrorContext(ctx, "password update failed", "error", err)
		fail(w, r, inv, "directory backend failure")
	default:
		respond(w, r, inv, http.StatusOK, map[string]string{
			"status":  "success",
			"message": fmt.Sprintf("Password for user '%s' updated", username),
		})
	}
}
