package store

import (
	"database/sql"

	"github.com/texasoct/idod/internal/models"
)

// SaveDiary upserts a Diary by id. The date column carries a unique index
// (schema §00001), so callers that want "one diary per day" semantics should
// look up by date first via GetDiaryByDate.
func SaveDiary(db *sql.DB, d *models.Diary) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO diaries (id, date, content, deleted, created_at, updated_at)
			VALUES (?, ?, ?, ?, COALESCE((SELECT created_at FROM diaries WHERE id = ?), CURRENT_TIMESTAMP), CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET date = excluded.date, content = excluded.content, deleted = excluded.deleted, updated_at = CURRENT_TIMESTAMP
		`, d.ID, d.Date, d.Content, boolToInt(d.Deleted), d.ID)
		return err
	})
}

// GetDiaryByDate fetches the (at most one, enforced by a unique index) diary
// for a given ISO date string.
func GetDiaryByDate(db *sql.DB, date string) (*models.Diary, error) {
	row := db.QueryRow(`SELECT id, date, content, deleted, created_at, updated_at FROM diaries WHERE date = ? AND deleted = 0`, date)
	var d models.Diary
	var deleted int
	var createdAtStr, updatedAtStr string
	if err := row.Scan(&d.ID, &d.Date, &d.Content, &deleted, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	d.Deleted = deleted != 0
	var err error
	if d.CreatedAt, err = parseFlexibleTime(createdAtStr); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseFlexibleTime(updatedAtStr); err != nil {
		return nil, err
	}
	return &d, nil
}
