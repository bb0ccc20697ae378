package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/models"
)

// SaveEvent upserts an Event by primary key.
func SaveEvent(db *sql.DB, e *models.Event) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO events (id, title, description, start_time, end_time, source_action_ids, aggregated_into_activity_id, version, deleted, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE((SELECT created_at FROM events WHERE id = ?), CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				start_time = excluded.start_time,
				end_time = excluded.end_time,
				source_action_ids = excluded.source_action_ids,
				aggregated_into_activity_id = excluded.aggregated_into_activity_id,
				version = excluded.version,
				deleted = excluded.deleted
		`,
			e.ID.String(), e.Title, e.Description, e.StartTime.Format(timeLayout), e.EndTime.Format(timeLayout),
			encodeUUIDList(e.SourceActionIDs), nullUUID(e.AggregatedIntoActivityID), e.Version, boolToInt(e.Deleted),
			e.ID.String(),
		)
		return err
	})
}

// GetEvent fetches a single Event by id.
func GetEvent(db *sql.DB, id uuid.UUID) (*models.Event, error) {
	row := db.QueryRow(`
		SELECT id, title, description, start_time, end_time, source_action_ids, aggregated_into_activity_id, version, deleted, created_at
		FROM events WHERE id = ?`, id.String())
	return scanEvent(row)
}

// ListUnaggregatedEventsSince returns events with no aggregated_into_activity_id
// whose start_time is at or after since, ordered oldest-first — the Session
// Agent's aggregation-cycle feed (spec §4.6 step 1).
func ListUnaggregatedEventsSince(db *sql.DB, since time.Time) ([]*models.Event, error) {
	rows, err := db.Query(`
		SELECT id, title, description, start_time, end_time, source_action_ids, aggregated_into_activity_id, version, deleted, created_at
		FROM events
		WHERE deleted = 0 AND aggregated_into_activity_id IS NULL AND start_time >= ?
		ORDER BY start_time ASC`, since.Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		e, err := scanEventRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkEventsAggregated sets aggregated_into_activity_id for the given events.
func MarkEventsAggregated(db *sql.DB, eventIDs []uuid.UUID, activityID uuid.UUID) error {
	return Transact(db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE events SET aggregated_into_activity_id = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range eventIDs {
			if _, err := stmt.Exec(activityID.String(), id.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanEvent(row *sql.Row) (*models.Event, error) {
	var (
		idStr, title, description, startStr, endStr, sourceActionIDsJSON, createdAtStr string
		aggregatedInto                                                                  sql.NullString
		version, deleted                                                                int
	)
	if err := row.Scan(&idStr, &title, &description, &startStr, &endStr, &sourceActionIDsJSON, &aggregatedInto, &version, &deleted, &createdAtStr); err != nil {
		return nil, err
	}
	return buildEvent(idStr, title, description, startStr, endStr, sourceActionIDsJSON, aggregatedInto, version, deleted, createdAtStr)
}

func scanEventRows(rows *sql.Rows) (*models.Event, error) {
	var (
		idStr, title, description, startStr, endStr, sourceActionIDsJSON, createdAtStr string
		aggregatedInto                                                                  sql.NullString
		version, deleted                                                                int
	)
	if err := rows.Scan(&idStr, &title, &description, &startStr, &endStr, &sourceActionIDsJSON, &aggregatedInto, &version, &deleted, &createdAtStr); err != nil {
		return nil, err
	}
	return buildEvent(idStr, title, description, startStr, endStr, sourceActionIDsJSON, aggregatedInto, version, deleted, createdAtStr)
}

func buildEvent(idStr, title, description, startStr, endStr, sourceActionIDsJSON string, aggregatedInto sql.NullString, version, deleted int, createdAtStr string) (*models.Event, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	start, err := time.Parse(timeLayout, startStr)
	if err != nil {
		return nil, fmt.Errorf("parse event start_time: %w", err)
	}
	end, err := time.Parse(timeLayout, endStr)
	if err != nil {
		return nil, fmt.Errorf("parse event end_time: %w", err)
	}
	createdAt, err := parseFlexibleTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse event created_at: %w", err)
	}
	return &models.Event{
		ID:                       id,
		Title:                    title,
		Description:              description,
		StartTime:                start,
		EndTime:                  end,
		SourceActionIDs:          decodeUUIDList(sourceActionIDsJSON),
		AggregatedIntoActivityID: parseNullUUID(aggregatedInto),
		Version:                  version,
		Deleted:                  deleted != 0,
		CreatedAt:                createdAt,
	}, nil
}
