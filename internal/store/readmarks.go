package store

import "time"

// The read-store proper: two independent namespaces of confirmed-read
// ids, one keyed by conversation, one by status contact. Adds are
// idempotent upserts, so concurrent adds within the process never lose
// marks.

// ReadSet returns the set of message ids confirmed read for a conversation.
func (db *DB) ReadSet(conversationID string) (map[string]struct{}, error) {
	return db.readSet(`SELECT msg_id FROM read_marks WHERE conversation_id = ?`, conversationID)
}

// AddRead records a message id as read for a conversation.
func (db *DB) AddRead(conversationID, msgID string) error {
	if conversationID == "" || msgID == "" {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO read_marks (conversation_id, msg_id, read_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id, msg_id) DO NOTHING`,
		conversationID, msgID, time.Now().Unix())
	return err
}

// StatusReadSet returns the set of status keys confirmed seen for a contact.
func (db *DB) StatusReadSet(contactID string) (map[string]struct{}, error) {
	return db.readSet(`SELECT status_key FROM status_read_marks WHERE contact_id = ?`, contactID)
}

// AddStatusRead records a status key as seen for a contact.
func (db *DB) AddStatusRead(contactID, statusKey string) error {
	if contactID == "" || statusKey == "" {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO status_read_marks (contact_id, status_key, read_at)
		VALUES (?, ?, ?)
		ON CONFLICT(contact_id, status_key) DO NOTHING`,
		contactID, statusKey, time.Now().Unix())
	return err
}

func (db *DB) readSet(query, scope string) (map[string]struct{}, error) {
	rows, err := db.Query(query, scope)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	set := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = struct{}{}
	}
	return set, rows.Err()
}
