package wire

import (
	"encoding/json"
	"strings"
)

// BroadcastConversationID is the reserved channel carrying status
// updates; messages addressed to it never belong to a chat.
const BroadcastConversationID = "status@broadcast"

// idObject covers the nested id shapes the backend emits.
type idObject struct {
	Serialized string          `json:"_serialized"`
	User       string          `json:"user"`
	Server     string          `json:"server"`
	ID         json.RawMessage `json:"id"`
}

// DecodeID normalizes a raw id field to a canonical string. It accepts
// a plain JSON string, an object with `_serialized`, an object with
// `{user, server}` parts, or an object with a nested `id`. Returns ""
// for anything else; never fails.
func DecodeID(raw json.RawMessage) string {
	raw = trimmed(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}

	if raw[0] == '{' {
		var obj idObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ""
		}
		if obj.Serialized != "" {
			return obj.Serialized
		}
		if obj.User != "" && obj.Server != "" {
			return obj.User + "@" + obj.Server
		}
		// Nested id may itself be a string or another object.
		return DecodeID(obj.ID)
	}

	// Numeric ids show up in some payloads; keep the literal text.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

// ConversationIDFromMessage returns the thread a message belongs to:
// the recipient when sent by us, otherwise the sender.
func ConversationIDFromMessage(m *rawMessage) string {
	if m.FromMe {
		return DecodeID(m.To)
	}
	return DecodeID(m.From)
}

// statusKeySeparator joins the composite fallback key parts.
const statusKeySeparator = "::"

// StatusKey derives a stable unique key for a status item. Explicit ids
// win; otherwise a deterministic composite of contact, timestamp, type,
// body, and media url, so two fetches of the same item collapse while
// distinct items never collide on a missing id.
func StatusKey(contactID string, explicitID string, timestamp int64, kind, body, mediaURL string) string {
	if explicitID != "" {
		return explicitID
	}
	parts := []string{
		contactID,
		formatTimestamp(timestamp),
		kind,
		body,
		mediaURL,
	}
	return strings.Join(parts, statusKeySeparator)
}

// DisplayNameFromID strips the server suffix from a canonical id for
// use as a human-readable fallback name.
func DisplayNameFromID(id string) string {
	if id == "" {
		return "Unknown contact"
	}
	for _, suffix := range []string{"@c.us", "@s.whatsapp.net", "@g.us"} {
		if name, ok := strings.CutSuffix(id, suffix); ok {
			return name
		}
	}
	return id
}

func trimmed(raw json.RawMessage) json.RawMessage {
	return json.RawMessage(strings.TrimSpace(string(raw)))
}
