package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"mercator-hq/spyglass/pkg/events"
)

// startObserverServer runs a minimal observer endpoint backed by the hub.
func startObserverServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		NewSession(conn, h, r.RemoteAddr).Run(r.Context())
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for h.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Count() = %d, want %d", h.Count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionReceivesBroadcast(t *testing.T) {
	h := New(time.Second)
	server := startObserverServer(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.CloseNow()

	waitForCount(t, h, 1)

	h.Broadcast(ctx, events.NewFormatter().Format(events.SourceServerResponse,
		events.WithStatus(200),
	))

	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if typ != websocket.MessageText {
		t.Errorf("message type = %v, want text", typ)
	}
	if !strings.Contains(string(data), `"source":"server_response"`) {
		t.Errorf("received %s, want server_response event", data)
	}
}

func TestSessionUnregistersOnClientClose(t *testing.T) {
	h := New(time.Second)
	server := startObserverServer(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	waitForCount(t, h, 1)

	if err := conn.Close(websocket.StatusNormalClosure, ""); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// The session's own read loop prunes the registry.
	waitForCount(t, h, 0)
}

func TestClosedObserverDoesNotBreakBroadcast(t *testing.T) {
	h := New(200 * time.Millisecond)
	server := startObserverServer(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	staying, _, err := websocket.Dial(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer staying.CloseNow()

	leaving, _, err := websocket.Dial(ctx, wsURL(server), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	waitForCount(t, h, 2)

	// Abruptly drop one observer, then broadcast before its read loop
	// necessarily noticed.
	leaving.CloseNow()

	h.Broadcast(ctx, events.NewFormatter().Format(events.SourceServerResponse,
		events.WithStatus(200),
	))

	_, data, err := staying.Read(ctx)
	if err != nil {
		t.Fatalf("remaining observer Read() error = %v", err)
	}
	if !strings.Contains(string(data), "server_response") {
		t.Errorf("remaining observer received %s", data)
	}

	// The dead connection is eventually pruned by its own session.
	waitForCount(t, h, 1)
}
