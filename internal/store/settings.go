package store

import (
	"database/sql"

	"github.com/texasoct/idod/internal/models"
)

// GetSetting fetches a single row from the settings table, used for runtime
// overrides layered on top of the YAML bootstrap config (distinct from
// internal/app's file-based Settings).
func GetSetting(db *sql.DB, key string) (*models.Setting, error) {
	row := db.QueryRow(`SELECT key, value, type, description FROM settings WHERE key = ?`, key)
	var s models.Setting
	var settingType string
	if err := row.Scan(&s.Key, &s.Value, &settingType, &s.Description); err != nil {
		return nil, err
	}
	s.Type = models.SettingType(settingType)
	return &s, nil
}

// SaveSetting upserts a settings row by key.
func SaveSetting(db *sql.DB, s *models.Setting) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO settings (key, value, type, description) VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, type = excluded.type, description = excluded.description
		`, s.Key, s.Value, string(s.Type), s.Description)
		return err
	})
}

// ListSettings returns every settings row.
func ListSettings(db *sql.DB) ([]*models.Setting, error) {
	rows, err := db.Query(`SELECT key, value, type, description FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Setting
	for rows.Next() {
		var s models.Setting
		var settingType string
		if err := rows.Scan(&s.Key, &s.Value, &settingType, &s.Description); err != nil {
			return nil, err
		}
		s.Type = models.SettingType(settingType)
		out = append(out, &s)
	}
	return out, rows.Err()
}
