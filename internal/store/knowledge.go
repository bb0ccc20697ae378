package store

import (
	"database/sql"

	"github.com/texasoct/idod/internal/models"
)

// SaveKnowledge upserts a Knowledge row by id.
func SaveKnowledge(db *sql.DB, k *models.Knowledge) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO knowledge (id, content, source_action_id, deleted, created_at)
			VALUES (?, ?, ?, ?, COALESCE((SELECT created_at FROM knowledge WHERE id = ?), CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET content = excluded.content, source_action_id = excluded.source_action_id, deleted = excluded.deleted
		`, k.ID, k.Content, nullableString(k.SourceActionID), boolToInt(k.Deleted), k.ID)
		return err
	})
}

// ListKnowledgeByAction returns non-deleted knowledge rows traced back to a
// given Action id.
func ListKnowledgeByAction(db *sql.DB, actionID string) ([]*models.Knowledge, error) {
	rows, err := db.Query(`SELECT id, content, source_action_id, deleted, created_at FROM knowledge WHERE deleted = 0 AND source_action_id = ? ORDER BY created_at ASC`, actionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Knowledge
	for rows.Next() {
		var k models.Knowledge
		var deleted int
		var sourceActionID sql.NullString
		var createdAtStr string
		if err := rows.Scan(&k.ID, &k.Content, &sourceActionID, &deleted, &createdAtStr); err != nil {
			return nil, err
		}
		k.Deleted = deleted != 0
		k.SourceActionID = sourceActionID.String
		createdAt, err := parseFlexibleTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		k.CreatedAt = createdAt
		out = append(out, &k)
	}
	return out, rows.Err()
}
