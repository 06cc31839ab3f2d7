// Package pending buffers mutations that could not be delivered to the
// backend. The whole queue is persisted as one JSON document under a
// single state key, so it survives restarts and is rewritten on every
// mutation. Entries are never deduplicated: the server is idempotent
// under repeated upsert-by-id, last write wins by arrival order.
package pending

import (
	"encoding/json"
	"sync"

	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/logger"
	"github.com/existflow/zebra/internal/model"
)

type stateStore interface {
	State(key string) (string, bool)
	SetState(key, value string) error
}

// Changes holds the four ordered pending-change lists. Ordering within a
// list is insertion order; there is no cross-list ordering guarantee.
type Changes struct {
	Sessions        []model.Session `json:"sessions"`
	Projects        []model.Project `json:"projects"`
	DeletedSessions []string        `json:"deleted_sessions"`
	DeletedProjects []string        `json:"deleted_projects"`
}

// Empty reports whether no changes are pending
func (c Changes) Empty() bool {
	return len(c.Sessions) == 0 && len(c.Projects) == 0 &&
		len(c.DeletedSessions) == 0 && len(c.DeletedProjects) == 0
}

// Len returns the total number of pending entries
func (c Changes) Len() int {
	return len(c.Sessions) + len(c.Projects) + len(c.DeletedSessions) + len(c.DeletedProjects)
}

// Queue is the persisted pending-change buffer
type Queue struct {
	mu    sync.Mutex
	state stateStore
	ch    Changes
}

// Load reads the persisted queue from the state store
func Load(state stateStore) *Queue {
	q := &Queue{state: state}
	if data, ok := state.State(localstore.KeyPendingQueue); ok && data != "" {
		if err := json.Unmarshal([]byte(data), &q.ch); err != nil {
			logger.Warn("discarding corrupt pending queue", logger.F("error", err))
			q.ch = Changes{}
		}
	}
	return q
}

// AddSession queues a session upsert
func (q *Queue) AddSession(s model.Session) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ch.Sessions = append(q.ch.Sessions, s)
	q.save()
}

// AddProject queues a project upsert
func (q *Queue) AddProject(p model.Project) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ch.Projects = append(q.ch.Projects, p)
	q.save()
}

// AddDeletedSession queues a session deletion
func (q *Queue) AddDeletedSession(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ch.DeletedSessions = append(q.ch.DeletedSessions, id)
	q.save()
}

// AddDeletedProject queues a project deletion
func (q *Queue) AddDeletedProject(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ch.DeletedProjects = append(q.ch.DeletedProjects, id)
	q.save()
}

// Snapshot returns a copy of the pending changes without clearing them.
// The queue is cleared separately, and only after the server acknowledges
// the batch.
func (q *Queue) Snapshot() Changes {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Changes{
		Sessions:        append([]model.Session(nil), q.ch.Sessions...),
		Projects:        append([]model.Project(nil), q.ch.Projects...),
		DeletedSessions: append([]string(nil), q.ch.DeletedSessions...),
		DeletedProjects: append([]string(nil), q.ch.DeletedProjects...),
	}
}

// ClearAcknowledged drops the entries covered by an acknowledged snapshot.
// Lists are append-only, so a snapshot is always a prefix of the live
// queue; anything enqueued while the sync round trip was in flight stays
// queued for the next one.
func (q *Queue) ClearAcknowledged(snap Changes) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ch.Sessions = dropPrefix(q.ch.Sessions, len(snap.Sessions))
	q.ch.Projects = dropPrefix(q.ch.Projects, len(snap.Projects))
	q.ch.DeletedSessions = dropPrefix(q.ch.DeletedSessions, len(snap.DeletedSessions))
	q.ch.DeletedProjects = dropPrefix(q.ch.DeletedProjects, len(snap.DeletedProjects))
	q.save()
}

func dropPrefix[T any](list []T, n int) []T {
	if n >= len(list) {
		return nil
	}
	return append([]T(nil), list[n:]...)
}

// Clear drops all pending changes
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ch = Changes{}
	q.save()
}

// Empty reports whether the queue holds no entries
func (q *Queue) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.Empty()
}

// Len returns the total number of queued entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.Len()
}

// save persists the queue; callers hold the lock. Persistence failures are
// logged and the in-memory queue stays authoritative for this process.
func (q *Queue) save() {
	data, err := json.Marshal(q.ch)
	if err != nil {
		logger.Error("failed to encode pending queue", logger.F("error", err))
		return
	}
	if err := q.state.SetState(localstore.KeyPendingQueue, string(data)); err != nil {
		logger.Error("failed to persist pending queue", logger.F("error", err))
	}
}
