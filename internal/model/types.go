package model

// Conversation is a chat thread with one contact or group.
// UnreadCount is authoritative from the server at load time and never
// goes negative; live merges only apply deltas on top of it.
type Conversation struct {
	ID              string
	Name            string
	AvatarURL       string
	UnreadCount     int
	LastMessageText string
	Timestamp       int64 // last activity, unix seconds
}

// Message is a single chat message. Immutable once received.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	Body           string
	Kind           string // text, image, video, ...
	FromMe         bool
	Timestamp      int64 // unix seconds, 0 when absent
}

// Status is an ephemeral story item. Key is stable and unique: the
// backend id when present, otherwise a composite derived at the wire
// boundary.
type Status struct {
	Key         string
	ContactID   string
	ContactName string
	AvatarURL   string
	Kind        string // image, video, chat
	Body        string
	MediaURL    string
	Timestamp   int64
}

// ContactStatusGroup holds one contact's statuses sorted ascending by
// timestamp. LastTimestamp is the max timestamp in the group.
type ContactStatusGroup struct {
	ContactID     string
	ContactName   string
	AvatarURL     string
	Statuses      []Status
	LastTimestamp int64
}
