package store

import (
	"database/sql"

	"github.com/texasoct/idod/internal/models"
)

// SaveConversation upserts a Conversation by id.
func SaveConversation(db *sql.DB, c *models.Conversation) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO conversations (id, title, deleted, created_at)
			VALUES (?, ?, ?, COALESCE((SELECT created_at FROM conversations WHERE id = ?), CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET title = excluded.title, deleted = excluded.deleted
		`, c.ID, c.Title, boolToInt(c.Deleted), c.ID)
		return err
	})
}

// SaveMessage appends a Message to a Conversation.
func SaveMessage(db *sql.DB, m *models.Message) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO messages (id, conversation_id, role, content, created_at)
			VALUES (?, ?, ?, ?, COALESCE((SELECT created_at FROM messages WHERE id = ?), CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET role = excluded.role, content = excluded.content
		`, m.ID, m.ConversationID, m.Role, m.Content, m.ID)
		return err
	})
}

// ListMessages returns every message for a conversation in insertion order.
func ListMessages(db *sql.DB, conversationID string) ([]*models.Message, error) {
	rows, err := db.Query(`SELECT id, conversation_id, role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		var m models.Message
		var createdAtStr string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &createdAtStr); err != nil {
			return nil, err
		}
		createdAt, err := parseFlexibleTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		m.CreatedAt = createdAt
		out = append(out, &m)
	}
	return out, rows.Err()
}
