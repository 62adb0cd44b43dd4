// Package sync keeps the local cache consistent with the remote store.
//
// Three input sources feed the engine: local user mutations, the remote
// change-notification stream, and reconnection after an offline interval.
// The local cache is the single source of truth for rendering; only the
// engine writes remote-originated state to it, user-facing operations
// always go through the optimistic-update path.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/auth"
	"github.com/moneyfold/backend/internal/connectivity"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/remote"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Config holds the tunables of the engine.
type Config struct {
	// SyncInterval is how often connectivity is re-checked and, when
	// online, the pending queue is flushed.
	SyncInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SyncInterval: 30 * time.Second,
	}
}

// Engine reconciles the local cache, pending mutations and remote change
// notifications for one user session.
//
// It replaces ambient global state with an explicit object: construct with
// New, Start it, tear it down on logout.
type Engine struct {
	db      *gorm.DB
	store   remote.Store
	monitor *connectivity.Monitor
	grace   *auth.GraceController
	userID  uuid.UUID
	config  Config

	ready     chan struct{}
	readyOnce sync.Once

	// mu serializes all cache writes: optimistic mutations, snapshot
	// application and queue flushes never interleave.
	mu sync.Mutex

	running bool
	stateMu sync.Mutex
	stop    context.CancelFunc
	done    chan struct{}
}

// New returns an engine for the given user session.
func New(db *gorm.DB, store remote.Store, monitor *connectivity.Monitor, grace *auth.GraceController, userID uuid.UUID, config Config) *Engine {
	if config.SyncInterval <= 0 {
		config.SyncInterval = DefaultConfig().SyncInterval
	}

	return &Engine{
		db:      db,
		store:   store,
		monitor: monitor,
		grace:   grace,
		userID:  userID,
		config:  config,
		ready:   make(chan struct{}),
	}
}

// DB exposes the local cache for reads. Writes have to go through the
// engine.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// UserID returns the user this engine session belongs to.
func (e *Engine) UserID() uuid.UUID {
	return e.userID
}

// Ready is closed once the initial load (remote snapshot, cache or seed
// fallback) has completed. Callers that need a definitive "load complete"
// signal, like the rollover prompt, wait on it instead of a fixed delay.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

func (e *Engine) markReady() {
	e.readyOnce.Do(func() { close(e.ready) })
}

// Start begins the background loop. It returns an error when the engine is
// already running.
func (e *Engine) Start(ctx context.Context) error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	if e.running {
		return fmt.Errorf("the sync engine is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	e.running = true
	e.stop = cancel
	e.done = make(chan struct{})

	go e.run(ctx)
	return nil
}

// Teardown stops the background loop and waits for it to finish.
func (e *Engine) Teardown() {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	if !e.running {
		return
	}

	e.stop()
	<-e.done
	e.running = false
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	online := e.monitor.Check(ctx)
	recordOnline(online)

	// The pending queue survives restarts, the gauge starts from what is
	// already persisted instead of zero.
	var queued int64
	err := e.db.Model(&models.PendingMutation{}).Count(&queued).Error
	if err != nil {
		log.Warn().Err(err).Msg("counting pending mutations failed")
	} else {
		queueLength.Set(float64(queued))
	}

	err = e.FetchData(ctx)
	if err != nil {
		log.Error().Err(err).Msg("initial data load failed")
	}
	e.markReady()

	var events <-chan remote.Snapshot
	if online {
		if e.grace != nil {
			e.grace.RecordAuth()
		}

		err := e.SyncData(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("initial queue flush incomplete")
		}

		events = e.subscribe(ctx)
	}

	ticker := time.NewTicker(e.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case snapshot, ok := <-events:
			if !ok {
				// Stream broke, it is reopened on the next online check
				events = nil
				continue
			}

			err := e.ApplySnapshot(snapshot)
			if err != nil {
				log.Error().Err(err).Msg("applying remote snapshot failed")
			}

		case <-ticker.C:
			wasOnline := e.monitor.IsOnline()
			nowOnline := e.monitor.Check(ctx)
			recordOnline(nowOnline)
			if !nowOnline {
				continue
			}

			if !wasOnline || events == nil {
				// Reaching the remote again counts as an auth
				// confirmation, the same as the startup check
				if e.grace != nil {
					e.grace.RecordAuth()
				}

				err := e.SyncData(ctx)
				if err != nil {
					log.Warn().Err(err).Msg("queue flush incomplete")
				}

				err = e.FetchData(ctx)
				if err != nil {
					log.Warn().Err(err).Msg("reconnect snapshot load failed")
				}

				events = e.subscribe(ctx)
			}
		}
	}
}

func (e *Engine) subscribe(ctx context.Context) <-chan remote.Snapshot {
	events, err := e.store.Subscribe(ctx, e.userID)
	if err != nil {
		log.Warn().Err(err).Msg("subscribing to change notifications failed")
		return nil
	}

	return events
}

// FetchData pulls the authoritative remote snapshot and merges it into the
// local cache.
//
// When the remote is unreachable and the cache already has data, the cache
// stays as is. When the remote is unreachable and the cache is empty, a
// bundled seed snapshot is loaded as a bootstrap convenience.
func (e *Engine) FetchData(ctx context.Context) error {
	snapshot, err := e.store.ListByUser(ctx, e.userID)
	if err != nil {
		if !remote.IsNetworkError(err) {
			return err
		}

		empty, cacheErr := e.cacheEmpty()
		if cacheErr != nil {
			return cacheErr
		}

		if empty {
			log.Info().Msg("remote unreachable and cache empty, loading seed snapshot")
			return e.ApplySnapshot(seedSnapshot(e.userID))
		}

		log.Info().Msg("remote unreachable, keeping local cache")
		return nil
	}

	return e.ApplySnapshot(snapshot)
}

// Logout clears all local state of the session: cache content and pending
// queue. It must run before the authentication session is cleared so that
// the next login can not observe a stale previous user's cache.
func (e *Engine) Logout() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Foreign keys are checked, delete dependents before their targets
	resources := []any{
		models.PendingMutation{},
		models.Transaction{},
		models.Allocation{},
		models.IncomeSource{},
		models.TemplateShare{},
		models.DistributionTemplate{},
		models.AppSettings{},
		models.Envelope{},
	}

	tx := e.db.Begin()
	for _, model := range resources {
		err := tx.Unscoped().Where("true").Delete(&model).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// Status describes the engine state for display.
type Status struct {
	Online      bool          `json:"online"`
	Ready       bool          `json:"ready"`
	QueueLength int64         `json:"queueLength"`
	GraceState  auth.State    `json:"graceState"`
	GraceLeft   time.Duration `json:"graceLeft"`
}

// Status reports the current engine state.
func (e *Engine) Status() (Status, error) {
	var queued int64
	err := e.db.Model(&models.PendingMutation{}).Count(&queued).Error
	if err != nil {
		return Status{}, err
	}

	status := Status{
		Online:      e.monitor.IsOnline(),
		QueueLength: queued,
	}

	select {
	case <-e.ready:
		status.Ready = true
	default:
	}

	if e.grace != nil {
		status.GraceState = e.grace.State(status.Online)
		status.GraceLeft = max(e.grace.Remaining(), 0)
	}

	return status, nil
}

func (e *Engine) cacheEmpty() (bool, error) {
	var count int64
	err := e.db.Unscoped().Model(&models.Envelope{}).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count == 0, nil
}
