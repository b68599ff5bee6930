// Package rt maintains the real-time websocket channel to the backend
// and translates server frames into bus events.
package rt

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/zapweb/internal/bus"
	"github.com/matheus3301/zapweb/internal/wire"
	"go.uber.org/zap"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	readDeadline   = 90 * time.Second
	pingInterval   = 30 * time.Second
)

// frame is the envelope the backend sends on the socket.
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Socket is a reconnecting websocket client. Incoming frames are
// published on the bus: "srv.message" for live messages, "session.*"
// for connection lifecycle.
type Socket struct {
	url    string
	bus    *bus.Bus
	logger *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

func NewSocket(url string, b *bus.Bus, logger *zap.Logger) *Socket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Socket{url: url, bus: b, logger: logger}
}

// Start launches the connect loop. Calling Start twice is a no-op.
func (s *Socket) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	go s.run(ctx)
}

// Stop closes the channel and halts reconnection.
func (s *Socket) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
}

func (s *Socket) run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.logger.Warn("websocket dial failed",
				zap.String("url", s.url),
				zap.Duration("retry_in", backoff),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = initialBackoff
		s.publish("session.connected", nil)
		s.readLoop(ctx, conn)
		s.publish("session.disconnected", nil)
	}
}

func (s *Socket) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-ticker.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		s.dispatch(data)
	}
}

func (s *Socket) dispatch(data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		s.logger.Debug("dropping malformed frame", zap.Error(err))
		return
	}
	switch f.Event {
	case "message":
		msg, err := wire.DecodeMessageEvent(f.Payload)
		if err != nil {
			s.logger.Debug("dropping undecodable message frame", zap.Error(err))
			return
		}
		if msg.ConversationID == "" {
			s.logger.Debug("dropping unroutable message frame")
			return
		}
		s.publish("srv.message", msg)
	case "qr":
		var code string
		if err := json.Unmarshal(f.Payload, &code); err != nil || code == "" {
			// Some backends wrap the code in an object.
			var obj struct {
				QR string `json:"qr"`
			}
			if json.Unmarshal(f.Payload, &obj) != nil || obj.QR == "" {
				return
			}
			code = obj.QR
		}
		s.publish("session.qr", code)
	case "ready":
		s.publish("session.ready", nil)
	default:
		s.logger.Debug("unhandled frame", zap.String("event", f.Event))
	}
}

func (s *Socket) publish(kind string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}
