// Package coordinator implements the Coordinator: the single process owner
// of every capture driver, agent, and the Processing Pipeline. It resolves
// the active LLM model, builds the component graph from the current
// settings snapshot, and exposes the Start/Stop/Pause/Resume lifecycle the
// CLI entrypoint drives. Grounded on
// original_source/backend/system/runtime.py for the lifecycle shape (restart
// guard, restricted-mode fallback, cooperative shutdown with a timeout, a
// once-only exit handler) and the teacher's cmd/vybe/main.go +
// internal/commands cobra wiring for how a Go CLI entrypoint constructs and
// runs a long-lived daemon.
package coordinator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/texasoct/idod/internal/app"
	"github.com/texasoct/idod/internal/cleanup"
	"github.com/texasoct/idod/internal/filter"
	"github.com/texasoct/idod/internal/imaging"
	"github.com/texasoct/idod/internal/llm"
	"github.com/texasoct/idod/internal/perception"
	"github.com/texasoct/idod/internal/pipeline"
	"github.com/texasoct/idod/internal/session"
	"github.com/texasoct/idod/internal/store"
)

// Mode reports the Coordinator's current operating state, mirroring the
// Python runtime's coordinator.mode string.
type Mode string

const (
	ModeStopped        Mode = "stopped"
	ModeRunning        Mode = "running"
	ModeRequiresModel  Mode = "requires_model"
	ModeError          Mode = "error"
)

// shutdownGrace bounds how long Stop waits for each owned task to exit
// cooperatively before moving on, matching runtime.py's 5-second cap.
const shutdownGrace = 5 * time.Second

// Coordinator owns the full component graph and its lifecycle.
type Coordinator struct {
	db *sql.DB

	bundle       *perception.Bundle
	tracker      *perception.ActiveMonitorTracker
	pipe         *pipeline.Pipeline
	sessionAgent *session.Agent
	cleanupAgent *cleanup.Agent

	running   atomic.Bool
	mu        sync.Mutex
	mode      Mode
	lastError string
	cancel    context.CancelFunc
	group     *errgroup.Group

	stopOnce sync.Once
}

// New builds a Coordinator's component graph from the current settings
// snapshot but does not start anything.
func New(db *sql.DB) (*Coordinator, error) {
	eff, err := app.CurrentSnapshot()
	if err != nil {
		return nil, fmt.Errorf("coordinator: reading settings snapshot: %w", err)
	}

	manager, err := imaging.NewManager(eff.ImageStoragePath, eff.ImageMemoryCacheSize, 24)
	if err != nil {
		return nil, fmt.Errorf("coordinator: building image manager: %w", err)
	}

	processor := imaging.NewProcessor(imaging.ProcessorConfig{
		EnableDeduplication:   true,
		SimilarityThreshold:   eff.PHashThreshold,
		EnableAdaptiveThresh:  true,
		EnableContentAnalysis: eff.EnableContentAnalysis,
		EnableCompression:     true,
		MinSampleInterval:     time.Duration(eff.MinSampleInterval * float64(time.Second)),
		MaxImagesPerEvent:     eff.MaxImagesPerEvent,
	})

	bundle, err := perception.NewBundle()
	if err != nil {
		return nil, fmt.Errorf("coordinator: resolving platform drivers: %w", err)
	}

	collab := func() (llm.Collaborator, error) { return resolveCollaborator(db) }

	pipe := pipeline.New(db, filter.New(0), processor, manager, collab)

	c := &Coordinator{
		db:           db,
		bundle:       bundle,
		tracker:      perception.NewActiveMonitorTracker(0),
		pipe:         pipe,
		sessionAgent: session.NewAgent(db, collab),
		cleanupAgent: cleanup.NewAgent(db, manager),
		mode:         ModeStopped,
	}
	return c, nil
}

// resolveCollaborator reads the active LLM model row and builds a
// Collaborator for it, returning sql.ErrNoRows unchanged when no model is
// configured active so callers can distinguish "not configured" from any
// other failure.
func resolveCollaborator(db *sql.DB) (llm.Collaborator, error) {
	model, err := store.GetActiveModelInfo(db)
	if err != nil {
		return nil, err
	}
	return llm.NewCollaborator(model)
}

// IsRunning reports whether Start has completed successfully and Stop has
// not since been called.
func (c *Coordinator) IsRunning() bool { return c.running.Load() }

// Mode returns the Coordinator's current mode.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// LastError returns the message recorded the last time the Coordinator
// entered a non-running mode, or "" if none.
func (c *Coordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Start resolves the active LLM model and, if one is configured, launches
// every driver, agent, and the pipeline. With no active model configured,
// Start returns nil and leaves the Coordinator in ModeRequiresModel rather
// than failing outright — capture still runs so nothing is lost while the
// user finishes configuring a model.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.running.Load() {
		slog.Debug("coordinator: already running, ignoring Start")
		return nil
	}

	if _, err := resolveCollaborator(c.db); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.setMode(ModeRequiresModel, "no active LLM model configured")
			slog.Warn("coordinator: starting in restricted mode, no active LLM model configured")
		} else {
			c.setMode(ModeError, err.Error())
			return fmt.Errorf("coordinator: checking active model: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if monitors, err := c.bundle.Window.Monitors(runCtx); err == nil {
		c.tracker.SetMonitors(monitors)
	} else {
		slog.Warn("coordinator: enumerating monitors failed, defaulting to monitor 0", "error", err)
	}

	drivers := []perception.Driver{
		perception.NewKeyboardDriver(c.bundle.Hooks),
		perception.NewMouseDriver(c.bundle.Hooks, c.tracker),
		perception.NewScreenshotDriver(c.bundle.Screen, c.tracker, time.Second),
	}

	// errgroup fans every driver, the lock observer, and the agents out onto
	// their own goroutine and logs each exit; a driver's own error never
	// tears down its siblings (each swallows everything but context.Canceled
	// before returning nil), so the group just tracks completion for
	// Stop's cooperative-shutdown wait.
	g := new(errgroup.Group)
	c.group = g

	sink := c.pipe.Sink()
	for _, d := range drivers {
		d := d
		g.Go(func() error {
			if err := d.Start(runCtx, sink); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("coordinator: driver exited with error", "driver", d.Name(), "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := c.bundle.Lock.Start(runCtx, c.onLock, c.onUnlock); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("coordinator: screen-lock observer exited with error", "error", err)
		}
		return nil
	})

	for _, task := range []func(context.Context) error{c.pipe.Start, c.sessionAgent.Start, c.cleanupAgent.Start} {
		task := task
		g.Go(func() error {
			if err := task(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("coordinator: background task exited with error", "error", err)
			}
			return nil
		})
	}

	c.running.Store(true)
	if c.Mode() != ModeRequiresModel {
		c.setMode(ModeRunning, "")
	}
	slog.Info("coordinator: started", "mode", c.Mode())
	return nil
}

// onLock pauses the aggregation and cleanup agents when the screen locks.
// Capture drivers and the pipeline keep running — the session window merely
// stops growing new Events/Activities from whatever trickles in while
// locked — so idle time behind a lock screen never turns into fabricated
// work sessions.
func (c *Coordinator) onLock() {
	slog.Debug("coordinator: screen locked, pausing agents")
	c.sessionAgent.Pause()
	c.cleanupAgent.Pause()
}

func (c *Coordinator) onUnlock() {
	slog.Debug("coordinator: screen unlocked, resuming agents")
	c.sessionAgent.Resume()
	c.cleanupAgent.Resume()
}

// Stop cancels every owned task and waits up to shutdownGrace for them to
// exit before returning. quiet suppresses info-level logging (used by the
// at-exit path, matching runtime.py's stop(quiet=True)).
func (c *Coordinator) Stop(quiet bool) {
	if !c.running.Load() {
		if !quiet {
			slog.Info("coordinator: stop requested but not running")
		}
		return
	}

	if !quiet {
		slog.Info("coordinator: stopping")
	}

	c.pipe.ForceFinalizeActivity(context.Background())

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		if c.group != nil {
			_ = c.group.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownGrace):
		if !quiet {
			slog.Warn("coordinator: shutdown grace period elapsed, proceeding anyway")
		}
	}

	c.running.Store(false)
	c.setMode(ModeStopped, "")
	if !quiet {
		slog.Info("coordinator: stopped")
	}
}

// StopOnce runs Stop exactly once regardless of how many times it is
// called, for use as a process-exit handler (signal handler and deferred
// main-function cleanup can both call it safely).
func (c *Coordinator) StopOnce(quiet bool) {
	c.stopOnce.Do(func() { c.Stop(quiet) })
}

func (c *Coordinator) setMode(m Mode, lastErr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	c.lastError = lastErr
}
