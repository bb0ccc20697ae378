package store

import "database/sql"

// DeleteOldData performs the Cleanup Agent's batch retention sweep (spec
// §4.5, §4.7). Events are append-only and safe to hard-delete outright;
// every other content table is soft-deleted (deleted 0 -> 1) so its rows
// remain addressable by id until a future hard-purge pass, if any.
//
// cutoffISO bounds the timestamp-typed columns (actions.timestamp,
// events.start_time, activities.end_time); cutoffDate bounds the
// date-typed columns (diaries.date). Returns the count of rows affected per
// table, matching the "count of rows whose deleted transitioned 0 -> 1"
// invariant for soft-deleted tables, and literal row count for the hard
// delete of events.
func DeleteOldData(db *sql.DB, cutoffISO, cutoffDate string) (map[string]int64, error) {
	counts := make(map[string]int64)

	err := Transact(db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM events WHERE start_time < ?`, cutoffISO)
		if err != nil {
			return err
		}
		counts["events"], err = res.RowsAffected()
		if err != nil {
			return err
		}

		softDeletes := []struct {
			table  string
			column string
			cutoff string
		}{
			{"actions", "timestamp", cutoffISO},
			{"activities", "end_time", cutoffISO},
			{"knowledge", "created_at", cutoffISO},
			{"todos", "created_at", cutoffISO},
			{"diaries", "date", cutoffDate},
		}
		for _, sd := range softDeletes {
			res, err := tx.Exec(`UPDATE `+sd.table+` SET deleted = 1 WHERE deleted = 0 AND `+sd.column+` < ?`, sd.cutoff)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			counts[sd.table] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
