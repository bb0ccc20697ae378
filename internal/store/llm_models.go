package store

import (
	"database/sql"
	"errors"

	"github.com/texasoct/idod/internal/models"
)

// SaveLLMModel upserts a configured model entry.
func SaveLLMModel(db *sql.DB, m *models.LLMModel) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO llm_models (id, name, provider, active) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, provider = excluded.provider, active = excluded.active
		`, m.ID, m.Name, m.Provider, boolToInt(m.Active))
		return err
	})
}

// SetActiveLLMModel marks exactly one model active, deactivating the rest.
// The Coordinator's restricted-mode check (spec §4.9) depends on there being
// at most one active row.
func SetActiveLLMModel(db *sql.DB, id string) error {
	return Transact(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE llm_models SET active = 0`); err != nil {
			return err
		}
		res, err := tx.Exec(`UPDATE llm_models SET active = 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("llm model not found: " + id)
		}
		return nil
	})
}

// GetActiveModelInfo reads the llm_models row with active=1, satisfying the
// Collaborator contract's GetActiveModelInfo (spec §6). Returns
// (models.LLMModel{}, sql.ErrNoRows) when no model is configured active,
// which is how the Coordinator detects restricted mode.
func GetActiveModelInfo(db *sql.DB) (models.LLMModel, error) {
	row := db.QueryRow(`SELECT id, name, provider, active FROM llm_models WHERE active = 1 LIMIT 1`)
	var m models.LLMModel
	var active int
	if err := row.Scan(&m.ID, &m.Name, &m.Provider, &active); err != nil {
		return models.LLMModel{}, err
	}
	m.Active = active != 0
	return m, nil
}
