package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MigrateDB runs the versioned goose schema followed by the additive-column
// registry, under a file lock to prevent concurrent migration races. For
// in-memory databases (tests), the lock is skipped.
func MigrateDB(db *sql.DB, dbPath string) error {
	if dbPath != ":memory:" && !strings.Contains(dbPath, ":memory:") {
		lockF, err := lockFile(dbPath)
		if err != nil {
			return fmt.Errorf("migration lock: %w", err)
		}
		defer unlockFile(lockF)
	}
	if err := RunMigrations(db); err != nil {
		return err
	}
	return RunAdditiveMigrations(db)
}

// SchemaVersion returns the current and latest goose migration versions.
// current comes from goose_db_version; latest is the highest version in the
// embedded migration files. Returns (0, latest, nil) for a fresh DB.
func SchemaVersion(db *sql.DB) (current int64, latest int64, err error) {
	goose.SetBaseFS(embedMigrations)
	goose.SetVerbose(false)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, 0, fmt.Errorf("set dialect: %w", err)
	}

	current, err = goose.GetDBVersion(db)
	if err != nil {
		current = 0
	}

	latest, err = latestMigrationVersion()
	if err != nil {
		return current, 0, fmt.Errorf("determine latest version: %w", err)
	}
	return current, latest, nil
}

// latestMigrationVersion reads the embedded migrations directory and returns
// the highest version number found.
func latestMigrationVersion() (int64, error) {
	entries, err := embedMigrations.ReadDir("migrations")
	if err != nil {
		return 0, fmt.Errorf("read migrations dir: %w", err)
	}
	var max int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		idx := strings.IndexByte(name, '_')
		if idx <= 0 {
			continue
		}
		v, err := strconv.ParseInt(name[:idx], 10, 64)
		if err != nil {
			continue
		}
		if v > max {
			max = v
		}
	}
	return max, nil
}

// RunMigrations applies the versioned goose schema (the initial table set).
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetVerbose(false)
	goose.SetLogger(goose.NopLogger())

	// goose uses "sqlite3" as its dialect name regardless of the underlying
	// driver; we use modernc.org/sqlite (registered as "sqlite"), but goose's
	// dialect only controls SQL generation, not the driver name.
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

// additiveMigration is one entry in the additive-column registry: an
// idempotent ALTER TABLE (or similar additive DDL) identified by a
// human-readable description for logging.
type additiveMigration struct {
	description string
	table       string
	column      string
	sql         string
}

// additiveMigrations is the registry described by spec §4.5/§9: additive-
// only schema changes applied every startup, after the versioned goose
// schema. Existing-column errors are benign (the registry replays on every
// startup); other errors are logged as warnings and do not abort.
//
// Grounded on original_source/backend/core/db/__init__.py's _run_migrations
// list (actions.extract_knowledge, actions.knowledge_extracted,
// knowledge.source_action_id), extended with idod's own additive columns.
var additiveMigrations = []additiveMigration{
	{
		description: "actions.extract_knowledge",
		table:       "actions",
		column:      "extract_knowledge",
		sql:         "ALTER TABLE actions ADD COLUMN extract_knowledge INTEGER NOT NULL DEFAULT 0",
	},
	{
		description: "actions.knowledge_extracted",
		table:       "actions",
		column:      "knowledge_extracted",
		sql:         "ALTER TABLE actions ADD COLUMN knowledge_extracted INTEGER NOT NULL DEFAULT 0",
	},
	{
		description: "knowledge.source_action_id",
		table:       "knowledge",
		column:      "source_action_id",
		sql:         "ALTER TABLE knowledge ADD COLUMN source_action_id TEXT",
	},
}

// RunAdditiveMigrations executes the additive-column registry under a
// transaction. Duplicate-column errors are logged at debug; any other
// OperationalError-equivalent is logged as a warning and does not abort the
// registry or the startup sequence.
func RunAdditiveMigrations(db *sql.DB) error {
	return Transact(db, func(tx *sql.Tx) error {
		for _, m := range additiveMigrations {
			_, err := tx.ExecContext(context.Background(), m.sql)
			if err == nil {
				continue
			}
			msg := err.Error()
			if strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists") {
				slog.Debug("additive migration skipped: column already present",
					"description", m.description, "table", m.table, "column", m.column)
				continue
			}
			slog.Warn("additive migration failed; continuing",
				"description", m.description, "table", m.table, "column", m.column, "error", err)
		}
		return nil
	})
}
