package store

import (
	"database/sql"

	"github.com/texasoct/idod/internal/models"
)

// SaveTodo upserts a Todo by id.
func SaveTodo(db *sql.DB, t *models.Todo) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO todos (id, content, done, source_action_id, deleted, created_at)
			VALUES (?, ?, ?, ?, ?, COALESCE((SELECT created_at FROM todos WHERE id = ?), CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET content = excluded.content, done = excluded.done, source_action_id = excluded.source_action_id, deleted = excluded.deleted
		`, t.ID, t.Content, boolToInt(t.Done), nullableString(t.SourceActionID), boolToInt(t.Deleted), t.ID)
		return err
	})
}

// ListOpenTodos returns every non-deleted, not-yet-done todo.
func ListOpenTodos(db *sql.DB) ([]*models.Todo, error) {
	rows, err := db.Query(`SELECT id, content, done, source_action_id, deleted, created_at FROM todos WHERE deleted = 0 AND done = 0 ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Todo
	for rows.Next() {
		var t models.Todo
		var done, deleted int
		var sourceActionID sql.NullString
		var createdAtStr string
		if err := rows.Scan(&t.ID, &t.Content, &done, &sourceActionID, &deleted, &createdAtStr); err != nil {
			return nil, err
		}
		t.Done = done != 0
		t.Deleted = deleted != 0
		t.SourceActionID = sourceActionID.String
		createdAt, err := parseFlexibleTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		t.CreatedAt = createdAt
		out = append(out, &t)
	}
	return out, rows.Err()
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
