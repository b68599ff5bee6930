package unread

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/zapweb/internal/bus"
	"github.com/matheus3301/zapweb/internal/model"
	"go.uber.org/zap"
)

// State is a tracker lifecycle state for the active conversation.
type State string

const (
	// StateIdle means no conversation is active.
	StateIdle State = "IDLE"
	// StateLoading means the backlog fetch is in flight.
	StateLoading State = "LOADING"
	// StateTracking means candidate/confirmed sets are populated and
	// view confirmations are being collected.
	StateTracking State = "TRACKING"
	// StateAllRead means the remaining count reached zero for this
	// activation.
	StateAllRead State = "ALL_READ"
)

var validTransitions = map[State][]State{
	StateIdle:     {StateLoading},
	StateLoading:  {StateLoading, StateTracking, StateAllRead, StateIdle},
	StateTracking: {StateAllRead, StateLoading, StateIdle},
	StateAllRead:  {StateLoading, StateIdle},
}

// Backend is the slice of the REST client the tracker needs.
type Backend interface {
	FetchMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	MarkConversationRead(ctx context.Context, conversationID string) error
}

// ReadStore persists confirmed-read message ids per conversation.
type ReadStore interface {
	ReadSet(conversationID string) (map[string]struct{}, error)
	AddRead(conversationID, msgID string) error
}

// Loaded is the payload of unread.loaded events.
type Loaded struct {
	ConversationID string
	Anchor         string
	Remaining      int
}

// CountChange is the payload of unread.count_changed events.
type CountChange struct {
	ConversationID string
	Remaining      int
}

// LoadFailed is the payload of unread.load_failed events.
type LoadFailed struct {
	ConversationID string
	Err            error
}

// MarkedRead is the payload of unread.marked_read events.
type MarkedRead struct {
	ConversationID string
}

// Tracker owns unread bookkeeping for the single active conversation:
// the candidate/confirmed sets, the unread anchor, the at-most-one
// in-flight mark-as-read call, and the merge of live messages into the
// active backlog. All async completions carry the epoch they were
// issued under and are discarded when the active conversation has
// changed since.
type Tracker struct {
	mu      sync.Mutex
	backend Backend
	reads   ReadStore
	bus     *bus.Bus
	logger  *zap.Logger

	state    State
	epoch    uint64
	conv     model.Conversation
	res      *Resolution
	messages []model.Message

	markInFlight  bool
	marked        bool
	scrollPending bool

	cancel context.CancelFunc
}

// NewTracker creates a tracker in the Idle state.
func NewTracker(backend Backend, reads ReadStore, b *bus.Bus, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		backend: backend,
		reads:   reads,
		bus:     b,
		logger:  logger,
		state:   StateIdle,
	}
}

// Start subscribes to inbound real-time message events so live messages
// for the active conversation are merged into its backlog.
func (t *Tracker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	ch, unsub := t.bus.Subscribe("srv.message", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				if msg, ok := evt.Payload.(*model.Message); ok {
					t.MergeLive(*msg)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the live-merge subscription.
func (t *Tracker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Open activates a conversation: resets all per-conversation state and
// fetches its backlog. A previous activation's pending fetch or
// mark-as-read can no longer touch the tracker after this returns.
func (t *Tracker) Open(ctx context.Context, conv model.Conversation) {
	t.mu.Lock()
	t.epoch++
	epoch := t.epoch
	t.conv = conv
	t.res = nil
	t.messages = nil
	t.markInFlight = false
	t.marked = false
	t.scrollPending = false
	if err := t.transition(StateLoading); err != nil {
		t.logger.Warn("tracker transition rejected", zap.Error(err))
	}
	t.mu.Unlock()

	go t.loadBacklog(ctx, conv, epoch)
}

func (t *Tracker) loadBacklog(ctx context.Context, conv model.Conversation, epoch uint64) {
	msgs, err := t.backend.FetchMessages(ctx, conv.ID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if epoch != t.epoch {
		// The user moved on while the fetch was in flight.
		return
	}

	if err != nil {
		_ = t.transition(StateIdle)
		t.logger.Warn("backlog fetch failed",
			zap.String("conversation", conv.ID), zap.Error(err))
		t.publish("unread.load_failed", LoadFailed{ConversationID: conv.ID, Err: err})
		return
	}

	SortMessages(msgs)

	persisted, perr := t.reads.ReadSet(conv.ID)
	if perr != nil {
		// Degrade to "nothing previously read" rather than failing the open.
		t.logger.Warn("read store unavailable", zap.Error(perr))
		persisted = nil
	}

	res := Resolve(msgs, conv.UnreadCount, persisted)
	t.res = res
	t.messages = msgs
	t.scrollPending = true

	next := StateTracking
	if res.Remaining() == 0 {
		next = StateAllRead
	}
	if err := t.transition(next); err != nil {
		t.logger.Warn("tracker transition rejected", zap.Error(err))
	}

	t.publish("unread.loaded", Loaded{
		ConversationID: conv.ID,
		Anchor:         res.Anchor(),
		Remaining:      res.Remaining(),
	})
	t.publish("unread.count_changed", CountChange{
		ConversationID: conv.ID,
		Remaining:      res.Remaining(),
	})
}

// Close deactivates the current conversation and discards all
// per-conversation state. Pending async completions become stale.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	t.conv = model.Conversation{}
	t.res = nil
	t.messages = nil
	t.markInFlight = false
	t.marked = false
	t.scrollPending = false
	if t.state != StateIdle {
		_ = t.transition(StateIdle)
	}
}

// MessageViewed records that a rendered message crossed the visibility
// threshold. Confirming the last outstanding candidate transitions to
// AllRead and triggers the server-side mark-as-read; a failed mark is
// retried on the next qualifying view event.
func (t *Tracker) MessageViewed(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateTracking:
		if t.res == nil || !t.res.Confirm(id) {
			return
		}
		if err := t.reads.AddRead(t.conv.ID, id); err != nil {
			// The in-memory confirmation stands; only persistence lagged.
			t.logger.Warn("persist read mark failed",
				zap.String("conversation", t.conv.ID), zap.String("message", id), zap.Error(err))
		}
		remaining := t.res.Remaining()
		t.publish("unread.count_changed", CountChange{
			ConversationID: t.conv.ID,
			Remaining:      remaining,
		})
		if remaining == 0 && t.res.CandidateCount() > 0 {
			_ = t.transition(StateAllRead)
			t.markWholeConversationRead()
		}
	case StateAllRead:
		// Retry path for a previously failed mark-as-read.
		if t.res != nil && t.res.Candidate(id) && !t.marked {
			t.markWholeConversationRead()
		}
	}
}

// markWholeConversationRead issues the server call at most once while a
// prior call is outstanding. Callers hold t.mu.
func (t *Tracker) markWholeConversationRead() {
	if t.markInFlight || t.marked {
		return
	}
	t.markInFlight = true
	epoch := t.epoch
	convID := t.conv.ID

	go func() {
		err := t.backend.MarkConversationRead(context.Background(), convID)

		t.mu.Lock()
		defer t.mu.Unlock()
		if epoch != t.epoch {
			return
		}
		t.markInFlight = false
		if err != nil {
			t.logger.Error("mark conversation read failed",
				zap.String("conversation", convID), zap.Error(err))
			return
		}
		t.marked = true
		t.publish("unread.marked_read", MarkedRead{ConversationID: convID})
	}()
}

// MergeLive inserts a real-time message into the active conversation's
// backlog, de-duplicated by id, keeping ascending timestamp order.
func (t *Tracker) MergeLive(msg model.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateIdle || t.state == StateLoading {
		return
	}
	if msg.ConversationID == "" || msg.ConversationID != t.conv.ID {
		return
	}
	if msg.ID != "" {
		dup := slices.ContainsFunc(t.messages, func(m model.Message) bool {
			return m.ID == msg.ID
		})
		if dup {
			return
		}
	}

	t.messages = append(t.messages, msg)
	SortMessages(t.messages)
	t.publish("unread.messages_changed", CountChange{
		ConversationID: t.conv.ID,
		Remaining:      t.res.Remaining(),
	})
}

// State returns the current tracker state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// ActiveConversationID returns the id of the open conversation, or "".
func (t *Tracker) ActiveConversationID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateIdle {
		return ""
	}
	return t.conv.ID
}

// Messages returns a snapshot of the active backlog.
func (t *Tracker) Messages() []model.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Anchor returns the first unread message id, or "".
func (t *Tracker) Anchor() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.res == nil {
		return ""
	}
	return t.res.Anchor()
}

// Remaining returns the outstanding unread count.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.res == nil {
		return 0
	}
	return t.res.Remaining()
}

// Observable returns the candidate ids still needing view confirmation.
func (t *Tracker) Observable() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.res == nil {
		return nil
	}
	return t.res.Observable()
}

// ConsumeInitialScroll returns the scroll target for a freshly loaded
// conversation exactly once per activation: the anchor id when one
// exists, otherwise "" meaning scroll to the newest message.
func (t *Tracker) ConsumeInitialScroll() (anchor string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.scrollPending {
		return "", false
	}
	t.scrollPending = false
	if t.res == nil {
		return "", true
	}
	return t.res.Anchor(), true
}

func (t *Tracker) transition(to State) error {
	if !slices.Contains(validTransitions[t.state], to) {
		return fmt.Errorf("invalid transition from %s to %s", t.state, to)
	}
	t.state = to
	return nil
}

func (t *Tracker) publish(kind string, payload any) {
	if t.bus == nil {
		return
	}
	t.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}
