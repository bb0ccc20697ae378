package commands

import (
	"github.com/spf13/cobra"

	"github.com/texasoct/idod/internal/app"
	"github.com/texasoct/idod/internal/output"
	"github.com/texasoct/idod/internal/store"
)

// NewUpgradeCmd creates the schema-migration command.
func NewUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Apply pending database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := app.GetDBPath()
			if err != nil {
				return cmdErr(err)
			}

			db, err := store.InitDBWithPath(dbPath)
			if err != nil {
				return cmdErr(err)
			}
			defer func() { _ = db.Close() }()

			before, latest, err := store.SchemaVersion(db)
			if err != nil {
				return cmdErr(err)
			}

			if err := store.MigrateDB(db, dbPath); err != nil {
				return cmdErr(err)
			}

			after, _, err := store.SchemaVersion(db)
			if err != nil {
				return cmdErr(err)
			}

			type resp struct {
				DBPath        string `json:"db_path"`
				SchemaBefore  int64  `json:"schema_before"`
				SchemaAfter   int64  `json:"schema_after"`
				SchemaLatest  int64  `json:"schema_latest"`
				AlreadyCurrent bool  `json:"already_current"`
			}
			return output.PrintSuccess(resp{
				DBPath:         dbPath,
				SchemaBefore:   before,
				SchemaAfter:    after,
				SchemaLatest:   latest,
				AlreadyCurrent: before == latest,
			})
		},
	}

	return cmd
}
