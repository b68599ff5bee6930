package store

import (
	"time"

	"github.com/matheus3301/zapweb/internal/model"
)

// UpsertMessage caches a message (idempotent on conversation_id + msg_id).
func (db *DB) UpsertMessage(m *model.Message) error {
	if m.ID == "" {
		return nil
	}
	now := time.Now().Unix()
	_, err := db.Exec(`
		INSERT INTO messages (conversation_id, msg_id, sender_id, sender_name, body, kind, from_me, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id, msg_id) DO UPDATE SET
			sender_name = excluded.sender_name,
			body = excluded.body`,
		m.ConversationID, m.ID, m.SenderID, m.SenderName, m.Body, m.Kind, m.FromMe, m.Timestamp, now)
	return err
}

// ListMessages returns cached messages for a conversation in ascending
// timestamp order, ties broken by insertion order.
func (db *DB) ListMessages(conversationID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.Query(`
		SELECT msg_id, conversation_id, sender_id, sender_name, body, kind, from_me, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp ASC, id ASC
		LIMIT ?`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.Body, &m.Kind, &m.FromMe, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
