package store

import (
	"database/sql"

	"github.com/texasoct/idod/internal/models"
)

// SavePomodoroSession upserts a Pomodoro interval record.
func SavePomodoroSession(db *sql.DB, p *models.PomodoroSession) error {
	return Transact(db, func(tx *sql.Tx) error {
		var endTime sql.NullString
		if !p.EndTime.IsZero() {
			endTime = sql.NullString{String: p.EndTime.Format(timeLayout), Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO pomodoro_sessions (id, start_time, end_time, completed, created_at)
			VALUES (?, ?, ?, ?, COALESCE((SELECT created_at FROM pomodoro_sessions WHERE id = ?), CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET start_time = excluded.start_time, end_time = excluded.end_time, completed = excluded.completed
		`, p.ID, p.StartTime.Format(timeLayout), endTime, boolToInt(p.Completed), p.ID)
		return err
	})
}
