package rt

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/zapweb/internal/bus"
	"github.com/matheus3301/zapweb/internal/model"
)

var upgrader = websocket.Upgrader{}

func wsServer(t *testing.T, frames []string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Keep the connection open so the client does not loop
		// back into a reconnect during the test.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitEvent(t *testing.T, ch <-chan bus.Event, kind string) bus.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", kind)
		}
	}
}

func TestSocketPublishesMessages(t *testing.T) {
	url := wsServer(t, []string{
		`{"event":"message","payload":{"id":"m1","from":"alice@c.us","body":"hi","timestamp":5}}`,
	})

	b := bus.New()
	ch, unsub := b.Subscribe("srv.", 8)
	defer unsub()

	s := NewSocket(url, b, nil)
	s.Start()
	defer s.Stop()

	ev := waitEvent(t, ch, "srv.message")
	msg, ok := ev.Payload.(*model.Message)
	if !ok {
		t.Fatalf("payload type %T", ev.Payload)
	}
	if msg.ID != "m1" || msg.ConversationID != "alice@c.us" || msg.Body != "hi" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestSocketSessionLifecycle(t *testing.T) {
	url := wsServer(t, []string{
		`{"event":"qr","payload":"qr-data"}`,
		`{"event":"ready","payload":null}`,
	})

	b := bus.New()
	ch, unsub := b.Subscribe("session.", 8)
	defer unsub()

	s := NewSocket(url, b, nil)
	s.Start()
	defer s.Stop()

	waitEvent(t, ch, "session.connected")
	qr := waitEvent(t, ch, "session.qr")
	if code, _ := qr.Payload.(string); code != "qr-data" {
		t.Fatalf("qr payload = %v", qr.Payload)
	}
	waitEvent(t, ch, "session.ready")
}

func TestSocketIgnoresMalformedFrames(t *testing.T) {
	url := wsServer(t, []string{
		`not json at all`,
		`{"event":"message","payload":{"body":"no ids here"}}`,
		`{"event":"message","payload":{"id":"m2","from":"bob@c.us","body":"ok","timestamp":7}}`,
	})

	b := bus.New()
	ch, unsub := b.Subscribe("srv.", 8)
	defer unsub()

	s := NewSocket(url, b, nil)
	s.Start()
	defer s.Stop()

	ev := waitEvent(t, ch, "srv.message")
	msg := ev.Payload.(*model.Message)
	if msg.ID != "m2" {
		t.Fatalf("expected m2, got %+v", msg)
	}
}

func TestSocketStopIsIdempotent(t *testing.T) {
	s := NewSocket("ws://127.0.0.1:1/ws", bus.New(), nil)
	s.Start()
	s.Stop()
	s.Stop()
	s.Start()
	s.Stop()
}
