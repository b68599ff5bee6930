package chatlist

import (
	"context"
	"testing"
	"time"

	"github.com/matheus3301/zapweb/internal/bus"
	"github.com/matheus3301/zapweb/internal/model"
)

func seededRoster() *Roster {
	r := NewRoster(bus.New(), nil, nil)
	r.Load([]model.Conversation{
		{ID: "a@c.us", Name: "Alice", UnreadCount: 0, Timestamp: 300},
		{ID: "b@c.us", Name: "Bob", UnreadCount: 2, Timestamp: 200},
		{ID: "c@c.us", Name: "Carol", UnreadCount: 0, Timestamp: 100},
	})
	return r
}

func TestApplyInactiveConversationIncrementsAndMovesToFront(t *testing.T) {
	r := seededRoster()
	r.SetActive("a@c.us")

	r.Apply(model.Message{ID: "m1", ConversationID: "b@c.us", Body: "ping", Timestamp: 400})

	convs := r.Conversations()
	if convs[0].ID != "b@c.us" {
		t.Fatalf("front conversation = %q, want b@c.us", convs[0].ID)
	}
	if convs[0].UnreadCount != 3 {
		t.Errorf("unread = %d, want 3 (incremented by exactly 1)", convs[0].UnreadCount)
	}
	if convs[0].LastMessageText != "ping" || convs[0].Timestamp != 400 {
		t.Errorf("summary = %+v", convs[0])
	}
}

func TestApplyActiveConversationKeepsBadgeZero(t *testing.T) {
	r := seededRoster()
	r.SetActive("b@c.us")

	r.Apply(model.Message{ID: "m1", ConversationID: "b@c.us", Body: "ping", Timestamp: 400})

	convs := r.Conversations()
	if convs[0].ID != "b@c.us" {
		t.Fatalf("front conversation = %q, want b@c.us", convs[0].ID)
	}
	if convs[0].UnreadCount != 0 {
		t.Errorf("unread = %d, want 0 for the open conversation", convs[0].UnreadCount)
	}
}

func TestApplySynthesizesUnknownConversation(t *testing.T) {
	r := seededRoster()

	r.Apply(model.Message{ID: "m1", ConversationID: "new@c.us", SenderName: "Dana", Body: "hi", Timestamp: 500})

	convs := r.Conversations()
	if len(convs) != 4 || convs[0].ID != "new@c.us" {
		t.Fatalf("conversations = %+v, want synthesized entry prepended", convs)
	}
	if convs[0].Name != "Dana" || convs[0].UnreadCount != 1 {
		t.Errorf("synthesized entry = %+v", convs[0])
	}

	// Without a notify name, fall back to the id sans server suffix.
	r.Apply(model.Message{ID: "m2", ConversationID: "7777@c.us", Body: "yo", Timestamp: 501})
	if got := r.Conversations()[0].Name; got != "7777" {
		t.Errorf("fallback name = %q, want 7777", got)
	}
}

func TestApplyDropsBroadcastAndMalformed(t *testing.T) {
	r := seededRoster()

	r.Apply(model.Message{ID: "m1", ConversationID: "status@broadcast", Body: "story"})
	r.Apply(model.Message{ID: "m2", ConversationID: "", Body: "lost"})

	if len(r.Conversations()) != 3 {
		t.Errorf("roster changed for broadcast/malformed messages: %+v", r.Conversations())
	}
}

func TestSetUnreadClampsAtZero(t *testing.T) {
	r := seededRoster()
	r.SetUnread("b@c.us", -5)
	for _, c := range r.Conversations() {
		if c.ID == "b@c.us" && c.UnreadCount != 0 {
			t.Errorf("unread = %d, want clamped 0", c.UnreadCount)
		}
	}
}

func TestMarkReadZeroesBadge(t *testing.T) {
	r := seededRoster()
	r.MarkRead("b@c.us")
	for _, c := range r.Conversations() {
		if c.ID == "b@c.us" && c.UnreadCount != 0 {
			t.Errorf("unread = %d after mark read, want 0", c.UnreadCount)
		}
	}
}

func TestUnreadFilter(t *testing.T) {
	r := seededRoster()
	unread := r.Unread()
	if len(unread) != 1 || unread[0].ID != "b@c.us" {
		t.Errorf("unread filter = %+v, want only b@c.us", unread)
	}
}

func TestRosterStartAppliesBusEvents(t *testing.T) {
	b := bus.New()
	r := NewRoster(b, nil, nil)
	r.Load([]model.Conversation{{ID: "a@c.us", Name: "Alice"}})
	r.Start(context.Background())
	defer r.Stop()

	b.Publish(bus.Event{
		Kind:    "srv.message",
		Payload: &model.Message{ID: "m1", ConversationID: "a@c.us", Body: "live", Timestamp: 10},
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if convs := r.Conversations(); convs[0].LastMessageText == "live" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("bus event was not applied to the roster")
}
