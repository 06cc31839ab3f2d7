// Package sync reconciles the pending-change queue against the backend.
// The engine runs only in cloud mode: a fixed 30-second ticker fires one
// reconciliation round trip, and failures leave the queue and checkpoint
// untouched so the next tick retries the same batch. There is no backoff;
// a long server outage means the queue keeps growing until it drains.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/existflow/zebra/internal/api"
	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/logger"
	"github.com/existflow/zebra/internal/model"
	"github.com/existflow/zebra/internal/pending"
)

// DefaultInterval is the fixed sync cadence
const DefaultInterval = 30 * time.Second

// Remote performs the reconciliation request
type Remote interface {
	Sync(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, error)
}

// Store is the slice of the local store the engine needs
type Store interface {
	PutProject(p model.Project) error
	PutSession(s model.Session) error
	State(key string) (string, bool)
	SetState(key, value string) error
	DeviceID() string
	Mode() string
}

type credentials interface {
	Token() string
}

// Engine drives periodic and on-demand sync
type Engine struct {
	remote   Remote
	store    Store
	queue    *pending.Queue
	creds    credentials
	interval time.Duration

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
	onMerge func()
}

// NewEngine creates a sync engine with the default interval
func NewEngine(remote Remote, store Store, queue *pending.Queue, creds credentials) *Engine {
	return &Engine{
		remote:   remote,
		store:    store,
		queue:    queue,
		creds:    creds,
		interval: DefaultInterval,
	}
}

// SetOnMerge registers a callback invoked after server state was merged
// into the local store. Used by the TUI to refresh its view.
func (e *Engine) SetOnMerge(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onMerge = fn
}

// Start begins periodic syncing, restarting the timer if one is already
// running, and triggers an immediate sync.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		close(e.stopCh)
	}
	e.stopCh = make(chan struct{})
	e.running = true
	stopCh := e.stopCh
	e.mu.Unlock()

	go e.loop(stopCh)
}

// Stop cancels the periodic timer. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		close(e.stopCh)
		e.running = false
	}
}

// Running reports whether the periodic timer is active
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) loop(stopCh chan struct{}) {
	if err := e.SyncOnce(context.Background()); err != nil {
		logger.Warn("sync failed", logger.F("error", err))
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := e.SyncOnce(context.Background()); err != nil {
				logger.Warn("sync failed", logger.F("error", err))
			}
		case <-stopCh:
			return
		}
	}
}

// SyncOnce performs one reconciliation round trip. It is a no-op outside
// cloud mode or when no credential is present. On failure the queue and
// checkpoint are left untouched; nothing is lost and the next tick retries
// the same batch plus anything queued meanwhile.
func (e *Engine) SyncOnce(ctx context.Context) error {
	if e.store.Mode() != localstore.ModeCloud || e.creds.Token() == "" {
		return nil
	}

	snap := e.queue.Snapshot()
	checkpoint, _ := e.store.State(localstore.KeyLastSyncTime)

	logger.Debug("sync round trip",
		logger.F("pending", snap.Len()),
		logger.F("checkpoint", checkpoint))

	resp, err := e.remote.Sync(ctx, api.SyncRequest{
		DeviceID:        e.store.DeviceID(),
		LastSyncTime:    checkpoint,
		LocalSessions:   snap.Sessions,
		LocalProjects:   snap.Projects,
		DeletedSessions: snap.DeletedSessions,
		DeletedProjects: snap.DeletedProjects,
	})
	if err != nil {
		return err
	}

	for _, p := range resp.ServerProjects {
		if err := e.store.PutProject(p); err != nil {
			logger.Warn("failed to cache project", logger.F("id", p.ID), logger.F("error", err))
		}
	}
	for _, s := range resp.ServerSessions {
		if err := e.store.PutSession(s); err != nil {
			logger.Warn("failed to cache session", logger.F("id", s.ID), logger.F("error", err))
		}
	}

	if resp.LastSyncTime != "" {
		if err := e.store.SetState(localstore.KeyLastSyncTime, resp.LastSyncTime); err != nil {
			logger.Warn("failed to advance checkpoint", logger.F("error", err))
		}
	}
	e.queue.ClearAcknowledged(snap)

	logger.Info("sync complete",
		logger.F("pushed", snap.Len()),
		logger.F("projects", len(resp.ServerProjects)),
		logger.F("sessions", len(resp.ServerSessions)))

	e.mu.Lock()
	merge := e.onMerge
	e.mu.Unlock()
	if merge != nil && (len(resp.ServerProjects) > 0 || len(resp.ServerSessions) > 0) {
		merge()
	}
	return nil
}
