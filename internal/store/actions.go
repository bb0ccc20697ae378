package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/models"
)

const timeLayout = time.RFC3339Nano

// SaveAction upserts an Action by primary key, matching the repository
// layer's idempotent-upsert invariant (spec §4.5: INSERT OR REPLACE).
func SaveAction(db *sql.DB, a *models.Action) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO actions (id, title, description, keywords, timestamp, aggregated_into_event_id, extract_knowledge, knowledge_extracted, deleted, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE((SELECT created_at FROM actions WHERE id = ?), CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				keywords = excluded.keywords,
				timestamp = excluded.timestamp,
				aggregated_into_event_id = excluded.aggregated_into_event_id,
				extract_knowledge = excluded.extract_knowledge,
				knowledge_extracted = excluded.knowledge_extracted,
				deleted = excluded.deleted
		`,
			a.ID.String(), a.Title, a.Description, encodeStringList(a.Keywords), a.Timestamp.Format(timeLayout),
			nullUUID(a.AggregatedIntoEventID), boolToInt(a.ExtractKnowledge), boolToInt(a.KnowledgeExtracted), boolToInt(a.Deleted),
			a.ID.String(),
		)
		return err
	})
}

// GetAction fetches a single Action by id, including soft-deleted rows.
func GetAction(db *sql.DB, id uuid.UUID) (*models.Action, error) {
	row := db.QueryRow(`
		SELECT id, title, description, keywords, timestamp, aggregated_into_event_id, extract_knowledge, knowledge_extracted, deleted, created_at
		FROM actions WHERE id = ?`, id.String())
	return scanAction(row)
}

// ListUnaggregatedActionsSince returns actions with no aggregated_into_event_id
// whose timestamp is at or after since, ordered oldest-first. This is the
// Session Agent's feed for grouping Actions into Events.
func ListUnaggregatedActionsSince(db *sql.DB, since time.Time) ([]*models.Action, error) {
	rows, err := db.Query(`
		SELECT id, title, description, keywords, timestamp, aggregated_into_event_id, extract_knowledge, knowledge_extracted, deleted, created_at
		FROM actions
		WHERE deleted = 0 AND aggregated_into_event_id IS NULL AND timestamp >= ?
		ORDER BY timestamp ASC`, since.Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Action
	for rows.Next() {
		a, err := scanActionRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkActionsAggregated sets aggregated_into_event_id for the given actions.
func MarkActionsAggregated(db *sql.DB, actionIDs []uuid.UUID, eventID uuid.UUID) error {
	return Transact(db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE actions SET aggregated_into_event_id = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range actionIDs {
			if _, err := stmt.Exec(eventID.String(), id.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkKnowledgeExtracted flags an Action as having had its knowledge
// extraction pass run, per SPEC_FULL.md's supplemented-feature decision.
func MarkKnowledgeExtracted(db *sql.DB, id uuid.UUID) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE actions SET knowledge_extracted = 1 WHERE id = ?`, id.String())
		return err
	})
}

// SaveActionImage records a distinct image hash observed within an Action's
// source segment. Idempotent: the (action_id, image_hash) pair is the
// primary key.
func SaveActionImage(db *sql.DB, actionID uuid.UUID, imageHash string) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO action_images (action_id, image_hash) VALUES (?, ?)
			ON CONFLICT(action_id, image_hash) DO NOTHING`, actionID.String(), imageHash)
		return err
	})
}

// GetAllReferencedImageHashes returns the full set of image hashes referenced
// by any action_images row. This is the authoritative set orphan GC must
// never delete (spec §4.5, §4.7).
func GetAllReferencedImageHashes(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT DISTINCT image_hash FROM action_images`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, err
		}
		out[hash] = true
	}
	return out, rows.Err()
}

func scanAction(row *sql.Row) (*models.Action, error) {
	var (
		idStr, title, description, keywordsJSON, timestampStr, createdAtStr string
		aggregatedInto                                                      sql.NullString
		extractKnowledge, knowledgeExtracted, deleted                       int
	)
	if err := row.Scan(&idStr, &title, &description, &keywordsJSON, &timestampStr, &aggregatedInto, &extractKnowledge, &knowledgeExtracted, &deleted, &createdAtStr); err != nil {
		return nil, err
	}
	return buildAction(idStr, title, description, keywordsJSON, timestampStr, aggregatedInto, extractKnowledge, knowledgeExtracted, deleted, createdAtStr)
}

func scanActionRows(rows *sql.Rows) (*models.Action, error) {
	var (
		idStr, title, description, keywordsJSON, timestampStr, createdAtStr string
		aggregatedInto                                                      sql.NullString
		extractKnowledge, knowledgeExtracted, deleted                       int
	)
	if err := rows.Scan(&idStr, &title, &description, &keywordsJSON, &timestampStr, &aggregatedInto, &extractKnowledge, &knowledgeExtracted, &deleted, &createdAtStr); err != nil {
		return nil, err
	}
	return buildAction(idStr, title, description, keywordsJSON, timestampStr, aggregatedInto, extractKnowledge, knowledgeExtracted, deleted, createdAtStr)
}

func buildAction(idStr, title, description, keywordsJSON, timestampStr string, aggregatedInto sql.NullString, extractKnowledge, knowledgeExtracted, deleted int, createdAtStr string) (*models.Action, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse action id: %w", err)
	}
	ts, err := time.Parse(timeLayout, timestampStr)
	if err != nil {
		return nil, fmt.Errorf("parse action timestamp: %w", err)
	}
	createdAt, err := parseFlexibleTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse action created_at: %w", err)
	}
	return &models.Action{
		ID:                    id,
		Title:                 title,
		Description:           description,
		Keywords:              decodeStringList(keywordsJSON),
		Timestamp:             ts,
		AggregatedIntoEventID: parseNullUUID(aggregatedInto),
		ExtractKnowledge:      extractKnowledge != 0,
		KnowledgeExtracted:    knowledgeExtracted != 0,
		Deleted:               deleted != 0,
		CreatedAt:             createdAt,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseFlexibleTime accepts both the RFC3339Nano layout idod writes and
// SQLite's own `datetime('now')` default format, since created_at/updated_at
// columns may be populated either by application code or by the column
// default.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
