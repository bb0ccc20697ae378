package store

import (
	"database/sql"

	"github.com/google/uuid"
)

// encodeUUIDList renders a []uuid.UUID as the JSON-text idod uses for
// source_action_ids / source_event_ids-style columns.
func encodeUUIDList(ids []uuid.UUID) string {
	ss := make([]string, len(ids))
	for i, id := range ids {
		ss[i] = id.String()
	}
	return encodeStringList(ss)
}

// decodeUUIDList is the inverse of encodeUUIDList. Entries that fail to
// parse as a UUID are dropped rather than aborting the whole decode.
func decodeUUIDList(s string) []uuid.UUID {
	ss := decodeStringList(s)
	out := make([]uuid.UUID, 0, len(ss))
	for _, v := range ss {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// nullUUID converts a *uuid.UUID to the sql.NullString a TEXT column expects.
func nullUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

// parseNullUUID is the inverse of nullUUID.
func parseNullUUID(ns sql.NullString) *uuid.UUID {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	id, err := uuid.Parse(ns.String)
	if err != nil {
		return nil
	}
	return &id
}
