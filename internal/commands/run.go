package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/texasoct/idod/internal/app"
	"github.com/texasoct/idod/internal/coordinator"
	"github.com/texasoct/idod/internal/store"
)

// NewRunCmd creates the daemon command: builds the Coordinator's component
// graph and blocks until a shutdown signal arrives.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the perception, distillation, and cleanup pipeline",
		Long: `Run starts the daemon: perception drivers feed the Processing Pipeline,
the Session Agent aggregates Actions into Events and Activities, and the
Cleanup Agent sweeps expired data on its own interval. Run blocks until
interrupted (Ctrl+C or SIGTERM), then shuts down every component
cooperatively before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
	return cmd
}

func runDaemon() error {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return cmdErr(err)
	}

	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		return cmdErr(err)
	}
	defer func() { _ = db.Close() }()

	if err := store.MigrateDB(db, dbPath); err != nil {
		return cmdErr(err)
	}

	c, err := coordinator.New(db)
	if err != nil {
		return cmdErr(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Start(ctx); err != nil {
		return cmdErr(err)
	}

	// Deferred and explicit calls to StopOnce both reach it on a normal
	// shutdown; its own sync.Once (matching runtime.py's atexit-plus-
	// signal-handler pair) makes only the first one actually run Stop.
	defer c.StopOnce(true)

	slog.Info("idod: running", "mode", c.Mode(), "db_path", dbPath)
	<-ctx.Done()
	slog.Info("idod: shutdown signal received")
	c.StopOnce(false)

	if c.Mode() == coordinator.ModeError {
		return cmdErr(fmt.Errorf("coordinator stopped in error state: %s", c.LastError()))
	}
	return nil
}
