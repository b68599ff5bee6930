package store

import (
	"database/sql"
	"time"

	"github.com/matheus3301/zapweb/internal/model"
)

// UpsertConversation inserts or updates a cached conversation record.
func (db *DB) UpsertConversation(c *model.Conversation) error {
	now := time.Now().Unix()
	_, err := db.Exec(`
		INSERT INTO conversations (id, name, avatar_url, unread_count, last_message_text, timestamp, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			unread_count = excluded.unread_count,
			last_message_text = excluded.last_message_text,
			timestamp = excluded.timestamp,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.AvatarURL, c.UnreadCount, c.LastMessageText, c.Timestamp, now)
	return err
}

// ListConversations returns cached conversations, most recent activity first.
func (db *DB) ListConversations(limit int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT id, name, avatar_url, unread_count, last_message_text, timestamp
		FROM conversations
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.Name, &c.AvatarURL, &c.UnreadCount, &c.LastMessageText, &c.Timestamp); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// GetConversation returns a single cached conversation, or nil if absent.
func (db *DB) GetConversation(id string) (*model.Conversation, error) {
	var c model.Conversation
	err := db.QueryRow(`
		SELECT id, name, avatar_url, unread_count, last_message_text, timestamp
		FROM conversations
		WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.AvatarURL, &c.UnreadCount, &c.LastMessageText, &c.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
