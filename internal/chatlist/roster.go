package chatlist

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/zapweb/internal/bus"
	"github.com/matheus3301/zapweb/internal/model"
	"github.com/matheus3301/zapweb/internal/wire"
	"go.uber.org/zap"
)

// Saver is the write-through slice of the store the roster uses.
type Saver interface {
	UpsertConversation(c *model.Conversation) error
	UpsertMessage(m *model.Message) error
}

// Roster holds the conversation list in most-recent-activity-first
// order and merges real-time messages into it: last-message preview,
// activity timestamp, unread badge, move-to-front, and synthesis of
// entries for conversations the server list has not shown yet.
//
// The server list is authoritative for unread counts at load time;
// between polls the merger owns the deltas. Messages for the currently
// open conversation never inflate its badge; the live view renders
// them, and historical backlog confirmation flows through the unread
// tracker instead.
type Roster struct {
	mu            sync.Mutex
	conversations []model.Conversation
	activeID      string

	bus    *bus.Bus
	db     Saver
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewRoster creates an empty roster. db may be nil to skip write-through.
func NewRoster(b *bus.Bus, db Saver, logger *zap.Logger) *Roster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roster{bus: b, db: db, logger: logger}
}

// Start subscribes to inbound real-time message events.
func (r *Roster) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	ch, unsub := r.bus.Subscribe("srv.message", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				if msg, ok := evt.Payload.(*model.Message); ok {
					r.Apply(*msg)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the bus subscription.
func (r *Roster) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Load replaces the roster with the server's conversation list.
func (r *Roster) Load(convs []model.Conversation) {
	r.mu.Lock()
	r.conversations = make([]model.Conversation, len(convs))
	copy(r.conversations, convs)
	r.mu.Unlock()
	r.publishUpdated()
}

// SetActive records the open conversation; its badge stays zero while
// messages arrive live. Pass "" when no conversation is open.
func (r *Roster) SetActive(conversationID string) {
	r.mu.Lock()
	r.activeID = conversationID
	r.mu.Unlock()
}

// Apply merges one inbound message into the roster.
func (r *Roster) Apply(msg model.Message) {
	convID := msg.ConversationID
	if convID == "" || convID == wire.BroadcastConversationID {
		return
	}

	r.mu.Lock()
	isActive := convID == r.activeID

	idx := r.indexOf(convID)
	var conv model.Conversation
	if idx >= 0 {
		conv = r.conversations[idx]
		conv.LastMessageText = msg.Body
		if msg.Timestamp > 0 {
			conv.Timestamp = msg.Timestamp
		}
		if isActive {
			conv.UnreadCount = 0
		} else {
			conv.UnreadCount++
		}
		r.conversations = append(r.conversations[:idx], r.conversations[idx+1:]...)
	} else {
		name := msg.SenderName
		if name == "" {
			name = wire.DisplayNameFromID(convID)
		}
		ts := msg.Timestamp
		if ts == 0 {
			ts = time.Now().Unix()
		}
		unread := 1
		if isActive {
			unread = 0
		}
		conv = model.Conversation{
			ID:              convID,
			Name:            name,
			UnreadCount:     unread,
			LastMessageText: msg.Body,
			Timestamp:       ts,
		}
	}

	// Most recent activity first.
	r.conversations = append([]model.Conversation{conv}, r.conversations...)
	r.mu.Unlock()

	if r.db != nil {
		if err := r.db.UpsertConversation(&conv); err != nil {
			r.logger.Warn("cache conversation failed", zap.String("conversation", convID), zap.Error(err))
		}
		if err := r.db.UpsertMessage(&msg); err != nil {
			r.logger.Warn("cache message failed", zap.String("message", msg.ID), zap.Error(err))
		}
	}
	r.publishUpdated()
}

// SetUnread overrides a conversation's badge, clamped at zero. Driven
// by unread.count_changed events from the tracker.
func (r *Roster) SetUnread(conversationID string, count int) {
	if count < 0 {
		count = 0
	}
	r.mu.Lock()
	if idx := r.indexOf(conversationID); idx >= 0 {
		r.conversations[idx].UnreadCount = count
	}
	r.mu.Unlock()
	r.publishUpdated()
}

// MarkRead zeroes a conversation's badge after a successful server-side
// mark-as-read.
func (r *Roster) MarkRead(conversationID string) {
	r.SetUnread(conversationID, 0)
}

// Conversations returns a snapshot of the roster.
func (r *Roster) Conversations() []model.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Conversation, len(r.conversations))
	copy(out, r.conversations)
	return out
}

// Unread returns the conversations with a non-zero badge, keeping order.
func (r *Roster) Unread() []model.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Conversation
	for _, c := range r.conversations {
		if c.UnreadCount > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (r *Roster) indexOf(conversationID string) int {
	for i, c := range r.conversations {
		if c.ID == conversationID {
			return i
		}
	}
	return -1
}

func (r *Roster) publishUpdated() {
	if r.bus == nil {
		return
	}
	r.bus.Publish(bus.Event{Kind: "chatlist.updated", Timestamp: time.Now()})
}
