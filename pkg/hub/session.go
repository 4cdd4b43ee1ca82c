package hub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Session is one long-lived observer connection. It is a broadcast
// target for the hub and otherwise has no inbound protocol: its read
// loop exists only to detect a close or transport error.
//
// Lifecycle: the HTTP handler accepts the WebSocket upgrade, registers
// the session, and runs Run until the connection dies. A session that
// fails the upgrade is never constructed.
type Session struct {
	conn   *websocket.Conn
	hub    *Hub
	remote string
	logger *slog.Logger

	// writeMu serializes writes; the websocket connection permits only
	// one concurrent writer.
	writeMu sync.Mutex

	closeOnce sync.Once
}

// NewSession wraps an accepted WebSocket connection.
func NewSession(conn *websocket.Conn, h *Hub, remote string) *Session {
	return &Session{
		conn:   conn,
		hub:    h,
		remote: remote,
		logger: slog.Default().With("component", "hub.session", "remote", remote),
	}
}

// RemoteAddr identifies the observer for logging.
func (s *Session) RemoteAddr() string {
	return s.remote
}

// Send delivers one serialized event as a text message.
func (s *Session) Send(ctx context.Context, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.Write(ctx, websocket.MessageText, data)
}

// Run registers the session and blocks in the liveness read loop until
// the connection closes or errors. Inbound messages are drained and
// ignored. On return the session has unregistered itself and closed the
// connection; Run never returns a session to a usable state.
func (s *Session) Run(ctx context.Context) {
	s.hub.Register(s)
	defer s.close()

	for {
		// Block until the client sends something, closes, or the
		// connection breaks. There is no application-level inbound
		// protocol; the read only observes liveness.
		if _, _, err := s.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				s.logger.Debug("observer closed connection", "status", status)
			} else {
				s.logger.Debug("observer read failed", "error", err)
			}
			return
		}
	}
}

// close unregisters the session and closes the connection exactly once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.hub.Unregister(s)
		_ = s.conn.CloseNow()
	})
}
