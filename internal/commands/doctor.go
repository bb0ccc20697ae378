package commands

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/texasoct/idod/internal/app"
	"github.com/texasoct/idod/internal/output"
	"github.com/texasoct/idod/internal/store"
)

func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, schema version, and database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, dbSource, err := app.ResolveDBPathDetailed()
			if err != nil {
				return cmdErr(err)
			}

			var (
				dbOK                bool
				dbErr               string
				queryOK             bool
				queryErr            string
				schemaCurrent       int64
				schemaLatest        int64
				schemaErr           string
				dbSizeHuman         string
				imageStorageHuman   string
			)

			db, err := store.InitDBWithPath(dbPath)
			if err != nil {
				dbOK = false
				dbErr = err.Error()
			} else {
				dbOK = true
				defer func() { _ = db.Close() }()
			}

			if dbOK {
				var one int
				if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
					queryOK = false
					queryErr = err.Error()
				} else {
					queryOK = true
				}

				schemaCurrent, schemaLatest, err = store.SchemaVersion(db)
				if err != nil {
					schemaErr = err.Error()
				}

				if fi, err := os.Stat(dbPath); err == nil {
					dbSizeHuman = humanize.Bytes(uint64(fi.Size()))
				}
			} else {
				queryOK = false
				queryErr = "db not available"
			}

			snapshot, err := app.CurrentSnapshot()
			if err == nil && snapshot.ImageStoragePath != "" {
				if size, walkErr := dirSize(snapshot.ImageStoragePath); walkErr == nil {
					imageStorageHuman = humanize.Bytes(uint64(size))
				}
			}

			type resp struct {
				DBPath            string `json:"db_path"`
				DBSource          string `json:"db_source"`
				DBOK              bool   `json:"db_ok"`
				DBErr             string `json:"db_error,omitempty"`
				DBSizeHuman       string `json:"db_size,omitempty"`
				QueryOK           bool   `json:"query_ok"`
				QueryErr          string `json:"query_error,omitempty"`
				SchemaCurrent     int64  `json:"schema_current"`
				SchemaLatest      int64  `json:"schema_latest"`
				SchemaErr         string `json:"schema_error,omitempty"`
				ImageStorageHuman string `json:"image_storage_size,omitempty"`
				Hint              string `json:"hint,omitempty"`
			}
			hint := ""
			if !dbOK {
				hint = "If this is running in a sandboxed environment, set database.path to a writable location or use --db-path."
			} else if schemaCurrent < schemaLatest {
				hint = "Run 'idod upgrade' to apply pending migrations."
			}
			return output.PrintSuccess(resp{
				DBPath:            dbPath,
				DBSource:          dbSource,
				DBOK:              dbOK,
				DBErr:             dbErr,
				DBSizeHuman:       dbSizeHuman,
				QueryOK:           queryOK,
				QueryErr:          queryErr,
				SchemaCurrent:     schemaCurrent,
				SchemaLatest:      schemaLatest,
				SchemaErr:         schemaErr,
				ImageStorageHuman: imageStorageHuman,
				Hint:              hint,
			})
		},
	}

	return cmd
}

// dirSize sums the apparent size of regular files under root, one level deep
// is not enough for nested per-day image folders so this walks recursively.
func dirSize(root string) (int64, error) {
	var total int64
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		full := root + string(os.PathSeparator) + e.Name()
		if e.IsDir() {
			sub, err := dirSize(full)
			if err != nil {
				continue
			}
			total += sub
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total, nil
}
