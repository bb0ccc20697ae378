package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/models"
)

// SaveActivity upserts an Activity by primary key, always bumping updated_at.
func SaveActivity(db *sql.DB, a *models.Activity) error {
	return Transact(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO activities (id, title, description, start_time, end_time, source_event_ids, session_duration_minutes, topic_tags, user_merged_from_ids, user_split_into_ids, deleted, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE((SELECT created_at FROM activities WHERE id = ?), CURRENT_TIMESTAMP), CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				start_time = excluded.start_time,
				end_time = excluded.end_time,
				source_event_ids = excluded.source_event_ids,
				session_duration_minutes = excluded.session_duration_minutes,
				topic_tags = excluded.topic_tags,
				user_merged_from_ids = excluded.user_merged_from_ids,
				user_split_into_ids = excluded.user_split_into_ids,
				deleted = excluded.deleted,
				updated_at = CURRENT_TIMESTAMP
		`,
			a.ID.String(), a.Title, a.Description, a.StartTime.Format(timeLayout), a.EndTime.Format(timeLayout),
			encodeUUIDList(a.SourceEventIDs), a.SessionDurationMinutes, encodeStringList(a.TopicTags),
			encodeUUIDList(a.UserMergedFromIDs), encodeUUIDList(a.UserSplitIntoIDs), boolToInt(a.Deleted),
			a.ID.String(),
		)
		return err
	})
}

// GetActivity fetches a single Activity by id.
func GetActivity(db *sql.DB, id uuid.UUID) (*models.Activity, error) {
	row := db.QueryRow(`
		SELECT id, title, description, start_time, end_time, source_event_ids, session_duration_minutes, topic_tags, user_merged_from_ids, user_split_into_ids, deleted, created_at, updated_at
		FROM activities WHERE id = ?`, id.String())
	return scanActivity(row)
}

// ListActivitiesEndingSince returns non-deleted activities whose end_time is
// at or after since, ordered by end_time — the merge-with-existing lookback
// window from spec §4.6.3 (default 2h).
func ListActivitiesEndingSince(db *sql.DB, since time.Time) ([]*models.Activity, error) {
	rows, err := db.Query(`
		SELECT id, title, description, start_time, end_time, source_event_ids, session_duration_minutes, topic_tags, user_merged_from_ids, user_split_into_ids, deleted, created_at, updated_at
		FROM activities
		WHERE deleted = 0 AND end_time >= ?
		ORDER BY end_time ASC`, since.Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Activity
	for rows.Next() {
		a, err := scanActivityRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanActivity(row *sql.Row) (*models.Activity, error) {
	var (
		idStr, title, description, startStr, endStr, sourceEventIDsJSON, topicTagsJSON, mergedFromJSON, splitIntoJSON, createdAtStr, updatedAtStr string
		sessionDurationMinutes, deleted                                                                                                            int
	)
	if err := row.Scan(&idStr, &title, &description, &startStr, &endStr, &sourceEventIDsJSON, &sessionDurationMinutes, &topicTagsJSON, &mergedFromJSON, &splitIntoJSON, &deleted, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	return buildActivity(idStr, title, description, startStr, endStr, sourceEventIDsJSON, sessionDurationMinutes, topicTagsJSON, mergedFromJSON, splitIntoJSON, deleted, createdAtStr, updatedAtStr)
}

func scanActivityRows(rows *sql.Rows) (*models.Activity, error) {
	var (
		idStr, title, description, startStr, endStr, sourceEventIDsJSON, topicTagsJSON, mergedFromJSON, splitIntoJSON, createdAtStr, updatedAtStr string
		sessionDurationMinutes, deleted                                                                                                            int
	)
	if err := rows.Scan(&idStr, &title, &description, &startStr, &endStr, &sourceEventIDsJSON, &sessionDurationMinutes, &topicTagsJSON, &mergedFromJSON, &splitIntoJSON, &deleted, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	return buildActivity(idStr, title, description, startStr, endStr, sourceEventIDsJSON, sessionDurationMinutes, topicTagsJSON, mergedFromJSON, splitIntoJSON, deleted, createdAtStr, updatedAtStr)
}

func buildActivity(idStr, title, description, startStr, endStr, sourceEventIDsJSON string, sessionDurationMinutes int, topicTagsJSON, mergedFromJSON, splitIntoJSON string, deleted int, createdAtStr, updatedAtStr string) (*models.Activity, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse activity id: %w", err)
	}
	start, err := time.Parse(timeLayout, startStr)
	if err != nil {
		return nil, fmt.Errorf("parse activity start_time: %w", err)
	}
	end, err := time.Parse(timeLayout, endStr)
	if err != nil {
		return nil, fmt.Errorf("parse activity end_time: %w", err)
	}
	createdAt, err := parseFlexibleTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse activity created_at: %w", err)
	}
	updatedAt, err := parseFlexibleTime(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse activity updated_at: %w", err)
	}
	return &models.Activity{
		ID:                     id,
		Title:                  title,
		Description:            description,
		StartTime:              start,
		EndTime:                end,
		SourceEventIDs:         decodeUUIDList(sourceEventIDsJSON),
		SessionDurationMinutes: sessionDurationMinutes,
		TopicTags:              decodeStringList(topicTagsJSON),
		UserMergedFromIDs:      decodeUUIDList(mergedFromJSON),
		UserSplitIntoIDs:       decodeUUIDList(splitIntoJSON),
		Deleted:                deleted != 0,
		CreatedAt:              createdAt,
		UpdatedAt:              updatedAt,
	}, nil
}
