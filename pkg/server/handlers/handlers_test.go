package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/spyglass/pkg/config"
	"mercator-hq/spyglass/pkg/directory"
	"mercator-hq/spyglass/pkg/events"
	"mercator-hq/spyglass/pkg/ollama"
	"mercator-hq/spyglass/pkg/pipeline"
)

// captureBroadcaster records broadcast events in emission order.
type captureBroadcaster struct {
	mu     sync.Mutex
	events []*events.Event
}

func (c *captureBroadcaster) Broadcast(ctx context.Context, ev *events.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *captureBroadcaster) sources() []events.Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Source, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Source
	}
	return out
}

func (c *captureBroadcaster) serialized(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		data, err := ev.Marshal()
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		out[i] = string(data)
	}
	return out
}

type fixture struct {
	store   directory.Store
	capture *captureBroadcaster
	users   *Users
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := directory.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	capture := &captureBroadcaster{}
	p := pipeline.New(capture)
	return &fixture{
		store:   store,
		capture: capture,
		users:   NewUsers(store, p),
	}
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestRegisterSuccess(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, f.users.Register, "POST", "/register/", `{"username":"alice","password":"secret"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "success" || !strings.Contains(body["message"], "alice") {
		t.Errorf("body = %v", body)
	}

	got := f.capture.sources()
	if len(got) != 2 || got[0] != events.SourceClientRequest || got[1] != events.SourceServerResponse {
		t.Errorf("event sources = %v", got)
	}

	// The password never appears in any emitted event.
	for _, raw := range f.capture.serialized(t) {
		if strings.Contains(raw, "secret") || strings.Contains(raw, "password") {
			t.Errorf("credential leaked into event: %s", raw)
		}
	}
	if !strings.Contains(f.capture.serialized(t)[0], `"username":"alice"`) {
		t.Error("client_request payload missing username")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)

	doJSON(t, f.users.Register, "POST", "/register/", `{"username":"alice","password":"secret"}`)
	rec := doJSON(t, f.users.Register, "POST", "/register/", `{"username":"alice","password":"other"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["detail"] != "Username already registered" {
		t.Errorf("detail = %q", body["detail"])
	}

	// The original credential is unchanged.
	if err := f.store.Authenticate(context.Background(), "alice", "secret"); err != nil {
		t.Errorf("original password no longer valid: %v", err)
	}
}

func TestRegisterInvalidBodyEmitsNoEvents(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, f.users.Register, "POST", "/register/", `{"username":"alice"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if n := len(f.capture.sources()); n != 0 {
		t.Errorf("%d events emitted for a rejected body, want 0", n)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	doJSON(t, f.users.Register, "POST", "/register/", `{"username":"alice","password":"secret"}`)

	t.Run("success", func(t *testing.T) {
		rec := doJSON(t, f.users.Login, "POST", "/login/", `{"username":"alice","password":"secret"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, f.users.Login, "POST", "/login/", `{"username":"alice","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if body := decodeBody(t, rec); body["detail"] != "Invalid username or password" {
			t.Errorf("detail = %q", body["detail"])
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doJSON(t, f.users.Login, "POST", "/login/", `{"username":"ghost","password":"secret"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func newUserRequest(method, target, username, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.SetPathValue("username", username)
	return req
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	doJSON(t, f.users.Register, "POST", "/register/", `{"username":"alice","password":"secret"}`)

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.users.Get(rec, newUserRequest("GET", "/user/alice/", "alice", ""))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if body := decodeBody(t, rec); body["username"] != "alice" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.users.Get(rec, newUserRequest("GET", "/user/ghost/", "ghost", ""))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if body := decodeBody(t, rec); body["detail"] != "User not found" {
			t.Errorf("detail = %q", body["detail"])
		}
	})
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	doJSON(t, f.users.Register, "POST", "/register/", `{"username":"alice","password":"secret"}`)

	rec := httptest.NewRecorder()
	f.users.Update(rec, newUserRequest("PUT", "/user/alice/", "alice", `{"password":"rotated"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if err := f.store.Authenticate(context.Background(), "alice", "rotated"); err != nil {
		t.Errorf("new password not accepted: %v", err)
	}

	// The new credential never appears in any emitted event.
	for _, raw := range f.capture.serialized(t) {
		if strings.Contains(raw, "rotated") {
			t.Errorf("new password leaked into event: %s", raw)
		}
	}
}

func TestUpdatePasswordUnknownUser(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.users.Update(rec, newUserRequest("PUT", "/user/ghost/", "ghost", `{"password":"x"}`))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func newOllamaClient(baseURL string, timeout time.Duration) *ollama.Client {
	return ollama.NewClient(config.OllamaConfig{
		BaseURL:             baseURL,
		Model:               "llama2",
		Timeout:             timeout,
		MaxIdleConns:        2,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     time.Minute,
	})
}

func newGenerateFixture(t *testing.T, upstream http.HandlerFunc) (*Generate, *captureBroadcaster) {
	t.Helper()

	store := directory.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	if err := store.Register(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	capture := &captureBroadcaster{}
	p := pipeline.New(capture)

	baseURL := "http://127.0.0.1:1" // unreachable unless an upstream is given
	if upstream != nil {
		server := httptest.NewServer(upstream)
		t.Cleanup(server.Close)
		baseURL = server.URL
	}

	client := newOllamaClient(baseURL, 5*time.Second)
	return NewGenerate(store, client, p, nil), capture
}

func TestGenerateSuccess(t *testing.T) {
	gen, capture := newGenerateFixture(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollama.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("upstream received bad body: %v", err)
		}
		if req.Prompt != "hello" || req.Stream {
			t.Errorf("upstream request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"response": "hi there"})
	})

	rec := doJSON(t, gen.ServeHTTP, "POST", "/llm/generate", `{"username":"alice","prompt":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["text"] != "hi there" {
		t.Errorf("text = %q", body["text"])
	}

	got := capture.sources()
	want := []events.Source{
		events.SourceClientRequest,
		events.SourceOllamaRequest,
		events.SourceOllamaResponse,
		events.SourceServerResponse,
	}
	if len(got) != len(want) {
		t.Fatalf("event sources = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event sources = %v, want %v", got, want)
		}
	}
}

func TestGenerateUnknownUser(t *testing.T) {
	gen, capture := newGenerateFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream called for an unauthenticated user")
	})

	rec := doJSON(t, gen.ServeHTTP, "POST", "/llm/generate", `{"username":"ghost","prompt":"hello"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["detail"] != "User not found or not authenticated" {
		t.Errorf("detail = %q", body["detail"])
	}

	got := capture.sources()
	if len(got) != 2 || got[1] != events.SourceServerResponse {
		t.Errorf("event sources = %v", got)
	}
}

func TestGenerateUpstreamUnreachable(t *testing.T) {
	gen, capture := newGenerateFixture(t, nil)

	rec := doJSON(t, gen.ServeHTTP, "POST", "/llm/generate", `{"username":"alice","prompt":"hello"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body := decodeBody(t, rec); body["detail"] != "LLM service unavailable" {
		t.Errorf("detail = %q", body["detail"])
	}

	got := capture.sources()
	want := []events.Source{
		events.SourceClientRequest,
		events.SourceOllamaRequest,
		events.SourceOllamaError,
		events.SourceServerResponse,
	}
	if len(got) != len(want) {
		t.Fatalf("event sources = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event sources = %v, want %v", got, want)
		}
	}
}

func TestGenerateUpstreamErrorStatus(t *testing.T) {
	gen, capture := newGenerateFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not loaded"}`))
	})

	rec := doJSON(t, gen.ServeHTTP, "POST", "/llm/generate", `{"username":"alice","prompt":"hello"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if body := decodeBody(t, rec); body["detail"] != "Error from LLM service" {
		t.Errorf("detail = %q", body["detail"])
	}

	// The upstream exchange is mirrored with its real status before the
	// terminal event.
	got := capture.sources()
	if len(got) != 4 || got[2] != events.SourceOllamaResponse {
		t.Fatalf("event sources = %v", got)
	}
	capture.mu.Lock()
	upstreamStatus := capture.events[2].Status
	capture.mu.Unlock()
	if upstreamStatus != http.StatusInternalServerError {
		t.Errorf("ollama_response status = %d, want 500", upstreamStatus)
	}
}

func TestGenerateMissingResponseField(t *testing.T) {
	gen, _ := newGenerateFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"done":true}`))
	})

	rec := doJSON(t, gen.ServeHTTP, "POST", "/llm/generate", `{"username":"alice","prompt":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if !strings.Contains(body["text"], "No 'response' field") {
		t.Errorf("text = %q, want fallback message", body["text"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	// Health probes work without any upstream traffic.
	client := newOllamaClient("http://127.0.0.1:1", time.Second)
	h := NewHealth(client, newTestHub(t))

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/ready status = %d, want 200 while optimistic", rec.Code)
	}
}
