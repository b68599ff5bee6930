package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matheus3301/zapweb/internal/model"
)

// rawMessage mirrors the backend message payload. Ids are kept raw and
// normalized through DecodeID; everything else is tolerated as absent.
type rawMessage struct {
	ID         json.RawMessage `json:"id"`
	From       json.RawMessage `json:"from"`
	To         json.RawMessage `json:"to"`
	FromMe     bool            `json:"fromMe"`
	Body       string          `json:"body"`
	Type       string          `json:"type"`
	Timestamp  int64           `json:"timestamp"`
	NotifyName string          `json:"notifyName"`
	Data       *rawMessageData `json:"_data"`
}

type rawMessageData struct {
	Body       string `json:"body"`
	NotifyName string `json:"notifyName"`
	PushName   string `json:"pushname"`
}

// rawEnvelope unwraps real-time payloads that arrive nested under a
// `msg` or `message` key, or as the message itself.
type rawEnvelope struct {
	Msg     json.RawMessage `json:"msg"`
	Message json.RawMessage `json:"message"`
}

type rawConversation struct {
	ID             json.RawMessage `json:"id"`
	Name           string          `json:"name"`
	Title          string          `json:"title"`
	FormattedTitle string          `json:"formattedTitle"`
	NotifyName     string          `json:"notifyName"`
	AvatarURL      string          `json:"avatarUrl"`
	UnreadCount    *int            `json:"unreadCount"`
	Unread         *int            `json:"unread"`
	Timestamp      int64           `json:"timestamp"`
	LastMessage    *rawLastMessage `json:"lastMessage"`
}

type rawLastMessage struct {
	Text string `json:"text"`
	Body string `json:"body"`
}

type rawStatus struct {
	ID            json.RawMessage `json:"id"`
	ContactID     string          `json:"contactId"`
	From          string          `json:"from"`
	ContactName   string          `json:"contactName"`
	ContactAvatar string          `json:"contactAvatar"`
	AvatarURL     string          `json:"avatarUrl"`
	Type          string          `json:"type"`
	Body          string          `json:"body"`
	MediaURL      string          `json:"mediaUrl"`
	Timestamp     int64           `json:"timestamp"`
}

// DecodeMessage normalizes a single message payload.
func DecodeMessage(data []byte) (*model.Message, error) {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return messageFromRaw(&raw), nil
}

// DecodeMessageEvent normalizes a real-time message event, unwrapping
// the msg/message envelope when present.
func DecodeMessageEvent(data []byte) (*model.Message, error) {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		if inner := firstNonEmpty(env.Msg, env.Message); inner != nil {
			return DecodeMessage(inner)
		}
	}
	return DecodeMessage(data)
}

// DecodeMessages normalizes a backend message array. Entries that fail
// to decode are skipped rather than failing the batch.
func DecodeMessages(data []byte) ([]model.Message, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode message list: %w", err)
	}
	msgs := make([]model.Message, 0, len(raws))
	for _, r := range raws {
		m, err := DecodeMessage(r)
		if err != nil {
			continue
		}
		msgs = append(msgs, *m)
	}
	return msgs, nil
}

// DecodeConversations normalizes a backend conversation array.
func DecodeConversations(data []byte) ([]model.Conversation, error) {
	var raws []rawConversation
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode conversation list: %w", err)
	}
	convs := make([]model.Conversation, 0, len(raws))
	for _, r := range raws {
		convs = append(convs, conversationFromRaw(&r))
	}
	return convs, nil
}

// DecodeStatuses normalizes a backend status array.
func DecodeStatuses(data []byte) ([]model.Status, error) {
	var raws []rawStatus
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode status list: %w", err)
	}
	statuses := make([]model.Status, 0, len(raws))
	for _, r := range raws {
		statuses = append(statuses, statusFromRaw(&r))
	}
	return statuses, nil
}

func messageFromRaw(raw *rawMessage) *model.Message {
	body := raw.Body
	if body == "" && raw.Data != nil {
		body = raw.Data.Body
	}
	name := raw.NotifyName
	if name == "" && raw.Data != nil {
		name = firstNonBlank(raw.Data.NotifyName, raw.Data.PushName)
	}
	kind := raw.Type
	if kind == "" {
		kind = "chat"
	}

	senderID := DecodeID(raw.From)
	if raw.FromMe {
		senderID = DecodeID(raw.To)
	}

	return &model.Message{
		ID:             DecodeID(raw.ID),
		ConversationID: ConversationIDFromMessage(raw),
		SenderID:       senderID,
		SenderName:     name,
		Body:           body,
		Kind:           kind,
		FromMe:         raw.FromMe,
		Timestamp:      raw.Timestamp,
	}
}

func conversationFromRaw(raw *rawConversation) model.Conversation {
	id := DecodeID(raw.ID)
	name := firstNonBlank(raw.Name, raw.Title, raw.FormattedTitle, raw.NotifyName)
	if name == "" {
		name = DisplayNameFromID(id)
	}

	unread := 0
	switch {
	case raw.UnreadCount != nil:
		unread = *raw.UnreadCount
	case raw.Unread != nil:
		unread = *raw.Unread
	}
	if unread < 0 {
		unread = 0
	}

	last := ""
	if raw.LastMessage != nil {
		last = firstNonBlank(raw.LastMessage.Text, raw.LastMessage.Body)
	}

	return model.Conversation{
		ID:              id,
		Name:            name,
		AvatarURL:       raw.AvatarURL,
		UnreadCount:     unread,
		LastMessageText: last,
		Timestamp:       raw.Timestamp,
	}
}

func statusFromRaw(raw *rawStatus) model.Status {
	contactID := firstNonBlank(raw.ContactID, raw.From)
	if contactID == "" {
		contactID = DecodeID(raw.ID)
	}
	name := strings.TrimSpace(raw.ContactName)
	if name == "" {
		name = DisplayNameFromID(contactID)
	}
	kind := raw.Type
	if kind == "" {
		kind = "chat"
	}

	return model.Status{
		Key:         StatusKey(contactID, DecodeID(raw.ID), raw.Timestamp, kind, raw.Body, raw.MediaURL),
		ContactID:   contactID,
		ContactName: name,
		AvatarURL:   firstNonBlank(raw.ContactAvatar, raw.AvatarURL),
		Kind:        kind,
		Body:        raw.Body,
		MediaURL:    raw.MediaURL,
		Timestamp:   raw.Timestamp,
	}
}

func formatTimestamp(ts int64) string {
	if ts == 0 {
		return ""
	}
	return strconv.FormatInt(ts, 10)
}

func firstNonEmpty(raws ...json.RawMessage) json.RawMessage {
	for _, r := range raws {
		t := trimmed(r)
		if len(t) > 0 && string(t) != "null" {
			return r
		}
	}
	return nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
