package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/models"
)

// SaveSessionPreference upserts a learned SessionPreference.
func SaveSessionPreference(db *sql.DB, p *models.SessionPreference) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO session_preferences (id, kind, description, confidence, times_observed, last_observed, created_at)
			VALUES (?, ?, ?, ?, ?, ?, COALESCE((SELECT created_at FROM session_preferences WHERE id = ?), CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET
				kind = excluded.kind,
				description = excluded.description,
				confidence = excluded.confidence,
				times_observed = excluded.times_observed,
				last_observed = excluded.last_observed
		`,
			p.ID.String(), string(p.Kind), p.Description, p.Confidence, p.TimesObserved, p.LastObserved.Format(timeLayout),
			p.ID.String(),
		)
		return err
	})
}

// IncrementObservation bumps times_observed and refreshes last_observed for
// a preference that was seen again (spec §4.6.4: "reinforcement ... performed
// by separate calls").
func IncrementObservation(db *sql.DB, id uuid.UUID, observedAt time.Time) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE session_preferences SET times_observed = times_observed + 1, last_observed = ? WHERE id = ?`,
			observedAt.Format(timeLayout), id.String())
		return err
	})
}

// UpdateConfidence overwrites a preference's confidence score directly.
func UpdateConfidence(db *sql.DB, id uuid.UUID, confidence float64) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE session_preferences SET confidence = ? WHERE id = ?`, confidence, id.String())
		return err
	})
}

// DeleteSessionPreference hard-deletes a preference row — the one content
// table exempted from the soft-delete-only invariant (spec §4.5).
func DeleteSessionPreference(db *sql.DB, id uuid.UUID) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM session_preferences WHERE id = ?`, id.String())
		return err
	})
}

// ListSessionPreferences returns every learned preference, most recently
// observed first.
func ListSessionPreferences(db *sql.DB) ([]*models.SessionPreference, error) {
	rows, err := db.Query(`SELECT id, kind, description, confidence, times_observed, last_observed, created_at FROM session_preferences ORDER BY last_observed DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SessionPreference
	for rows.Next() {
		var (
			idStr, kind, description, lastObservedStr, createdAtStr string
			confidence                                               float64
			timesObserved                                            int
		)
		if err := rows.Scan(&idStr, &kind, &description, &confidence, &timesObserved, &lastObservedStr, &createdAtStr); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse session_preference id: %w", err)
		}
		lastObserved, err := parseFlexibleTime(lastObservedStr)
		if err != nil {
			return nil, fmt.Errorf("parse session_preference last_observed: %w", err)
		}
		createdAt, err := parseFlexibleTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parse session_preference created_at: %w", err)
		}
		out = append(out, &models.SessionPreference{
			ID:            id,
			Kind:          models.PreferenceKind(kind),
			Description:   description,
			Confidence:    confidence,
			TimesObserved: timesObserved,
			LastObserved:  lastObserved,
			CreatedAt:     createdAt,
		})
	}
	return out, rows.Err()
}
