// Package tracker is the in-memory aggregate of projects, sessions and
// timer state that the UI layers read and mutate. It owns the record
// graph while the process lives; the local store and the backend are
// write-through persistence targets, never the live source of truth.
// Trackers are constructed explicitly and injected where needed; there is
// no package-level instance.
package tracker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/existflow/zebra/internal/api"
	"github.com/existflow/zebra/internal/auth"
	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/logger"
	"github.com/existflow/zebra/internal/model"
	"github.com/existflow/zebra/internal/pending"

	"github.com/google/uuid"
)

// Remote is the backend surface the tracker writes through in cloud mode
type Remote interface {
	GetProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*api.ProjectDetail, error)
	CreateProject(ctx context.Context, p model.Project) (*model.Project, error)
	SaveSession(ctx context.Context, s model.Session) (*model.Session, error)
	DeleteProject(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
}

// Tracker is the application state facade
type Tracker struct {
	mu     sync.Mutex
	store  *localstore.Store
	remote Remote
	queue  *pending.Queue
	creds  *auth.Store
	now    func() time.Time

	projects  []model.Project
	sessions  []model.Session
	currentID string

	timer timerState

	payloads       map[string]Payload
	payloadOrder   []string
	maxStoredFiles int
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithMaxStoredFiles overrides the in-memory payload cap
func WithMaxStoredFiles(n int) Option {
	return func(t *Tracker) { t.maxStoredFiles = n }
}

// New builds a tracker over the local store, hydrating cached records and
// any persisted timer state so a restarted process resumes where it left
// off.
func New(store *localstore.Store, remote Remote, queue *pending.Queue, creds *auth.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:          store,
		remote:         remote,
		queue:          queue,
		creds:          creds,
		now:            time.Now,
		payloads:       make(map[string]Payload),
		maxStoredFiles: DefaultMaxStoredFiles,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.projects = store.Projects()
	t.sessions = store.Sessions()
	t.currentID, _ = store.State(localstore.KeyCurrentProject)
	t.loadTimer()
	return t
}

// Mode returns the active storage mode
func (t *Tracker) Mode() string {
	return t.store.Mode()
}

// SetMode switches between local and cloud storage
func (t *Tracker) SetMode(mode string) error {
	return t.store.SetMode(mode)
}

// cloudMode reports whether writes should go to the backend
func (t *Tracker) cloudMode() bool {
	return t.store.Mode() == localstore.ModeCloud && t.creds.LoggedIn()
}

// AddProject creates a project and makes it current. In cloud mode the
// project is created on the backend; if that fails for a non-auth reason
// the client-generated id is kept, the mutation is queued, and the caller
// sees a deferred (not failed) result.
func (t *Tracker) AddProject(ctx context.Context, name, description string) (*model.Project, bool, error) {
	p := model.NewProject(uuid.NewString(), name, description)
	p.DeviceID = t.store.DeviceID()

	deferred := false
	if t.cloudMode() {
		saved, err := t.remote.CreateProject(ctx, p)
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			return nil, false, err
		case err != nil:
			logger.Warn("project create deferred", logger.F("name", name), logger.F("error", err))
			t.queue.AddProject(p)
			deferred = true
		default:
			p = *saved
		}
	}

	if err := t.store.PutProject(p); err != nil {
		logger.Warn("failed to cache project", logger.F("error", err))
	}

	t.mu.Lock()
	t.projects = append(t.projects, p)
	t.currentID = p.ID
	t.mu.Unlock()
	t.persistCurrent(p.ID)

	return &p, deferred, nil
}

// SetCurrentProject selects the active project
func (t *Tracker) SetCurrentProject(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.projects {
		if p.ID == id {
			t.currentID = id
			t.persistCurrent(id)
			return nil
		}
	}
	return ErrNotFound
}

// CurrentProject returns the selected project, falling back to the most
// recently added one. Returns nil when no project exists.
func (t *Tracker) CurrentProject() *model.Project {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentProjectLocked()
}

func (t *Tracker) currentProjectLocked() *model.Project {
	if t.currentID != "" {
		for i := range t.projects {
			if t.projects[i].ID == t.currentID {
				p := t.projects[i]
				return &p
			}
		}
	}
	if len(t.projects) > 0 {
		p := t.projects[len(t.projects)-1]
		t.currentID = p.ID
		t.persistCurrent(p.ID)
		return &p
	}
	return nil
}

// Projects returns a copy of the project list
func (t *Tracker) Projects() []model.Project {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Project(nil), t.projects...)
}

// ProjectByID returns a project by id, or nil
func (t *Tracker) ProjectByID(id string) *model.Project {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.projects {
		if t.projects[i].ID == id {
			p := t.projects[i]
			return &p
		}
	}
	return nil
}

// SessionsByProjectID returns a project's sessions, newest first
func (t *Tracker) SessionsByProjectID(id string) []model.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.Session
	for _, s := range t.sessions {
		if s.ProjectID == id {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

// LoadProjects refreshes the project graph. In cloud mode it fetches the
// project list and then each project's session detail; one failed detail
// fetch degrades that project to an empty session list instead of
// aborting the load. Queued-but-unsynced mutations are re-applied on top
// of the fetched state so a save in flight during the load is not
// clobbered by stale server data.
func (t *Tracker) LoadProjects(ctx context.Context) error {
	if !t.cloudMode() {
		t.mu.Lock()
		t.projects = t.store.Projects()
		t.sessions = t.store.Sessions()
		t.applyPendingLocked()
		t.mu.Unlock()
		return nil
	}

	projects, err := t.remote.GetProjects(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		// Degrade to the local cache; the sync engine will catch up later.
		logger.Warn("project list fetch failed, using cache", logger.F("error", err))
		t.mu.Lock()
		t.projects = t.store.Projects()
		t.sessions = t.store.Sessions()
		t.applyPendingLocked()
		t.mu.Unlock()
		return err
	}

	var sessions []model.Session
	for _, p := range projects {
		if err := t.store.PutProject(p); err != nil {
			logger.Warn("failed to cache project", logger.F("id", p.ID), logger.F("error", err))
		}
		detail, err := t.remote.GetProject(ctx, p.ID)
		if err != nil || detail == nil {
			logger.Warn("project detail fetch failed",
				logger.F("id", p.ID), logger.F("error", err))
			continue
		}
		for _, s := range detail.Sessions {
			sessions = append(sessions, s)
			if err := t.store.PutSession(s); err != nil {
				logger.Warn("failed to cache session", logger.F("id", s.ID), logger.F("error", err))
			}
		}
	}

	t.mu.Lock()
	t.projects = projects
	t.sessions = sessions
	t.applyPendingLocked()
	t.mu.Unlock()
	return nil
}

// applyPendingLocked re-applies queued mutations over freshly loaded
// state; callers hold the lock.
func (t *Tracker) applyPendingLocked() {
	snap := t.queue.Snapshot()
	for _, p := range snap.Projects {
		t.upsertProjectLocked(p)
	}
	for _, s := range snap.Sessions {
		t.upsertSessionLocked(s)
	}
	for _, id := range snap.DeletedProjects {
		t.removeProjectLocked(id)
	}
	for _, id := range snap.DeletedSessions {
		t.removeSessionLocked(id)
	}
}

func (t *Tracker) upsertProjectLocked(p model.Project) {
	for i := range t.projects {
		if t.projects[i].ID == p.ID {
			t.projects[i] = p
			return
		}
	}
	t.projects = append(t.projects, p)
}

func (t *Tracker) upsertSessionLocked(s model.Session) {
	for i := range t.sessions {
		if t.sessions[i].ID == s.ID {
			t.sessions[i] = s
			return
		}
	}
	t.sessions = append(t.sessions, s)
}

func (t *Tracker) removeProjectLocked(id string) {
	for i := range t.projects {
		if t.projects[i].ID == id {
			t.projects = append(t.projects[:i], t.projects[i+1:]...)
			return
		}
	}
}

func (t *Tracker) removeSessionLocked(id string) {
	for i := range t.sessions {
		if t.sessions[i].ID == id {
			t.sessions = append(t.sessions[:i], t.sessions[i+1:]...)
			return
		}
	}
}

// DeleteProject removes a project. A failed backend delete is queued for
// replay; the project disappears locally either way.
func (t *Tracker) DeleteProject(ctx context.Context, id string) error {
	if t.cloudMode() {
		if err := t.remote.DeleteProject(ctx, id); err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return err
			}
			logger.Warn("project delete deferred", logger.F("id", id), logger.F("error", err))
			t.queue.AddDeletedProject(id)
		}
	}
	if err := t.store.DeleteProject(id); err != nil {
		logger.Warn("failed to delete cached project", logger.F("error", err))
	}

	t.mu.Lock()
	t.removeProjectLocked(id)
	if t.currentID == id {
		t.currentID = ""
		t.persistCurrent("")
	}
	t.mu.Unlock()
	return nil
}

// DeleteSession removes a session, queueing the backend delete on failure
func (t *Tracker) DeleteSession(ctx context.Context, id string) error {
	if t.cloudMode() {
		if err := t.remote.DeleteSession(ctx, id); err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return err
			}
			logger.Warn("session delete deferred", logger.F("id", id), logger.F("error", err))
			t.queue.AddDeletedSession(id)
		}
	}
	if err := t.store.DeleteSession(id); err != nil {
		logger.Warn("failed to delete cached session", logger.F("error", err))
	}

	t.mu.Lock()
	t.removeSessionLocked(id)
	t.mu.Unlock()
	return nil
}

// PendingCount returns the number of queued, not-yet-synced mutations
func (t *Tracker) PendingCount() int {
	return t.queue.Len()
}

func (t *Tracker) persistCurrent(id string) {
	var err error
	if id == "" {
		err = t.store.DeleteState(localstore.KeyCurrentProject)
	} else {
		err = t.store.SetState(localstore.KeyCurrentProject, id)
	}
	if err != nil {
		logger.Warn("failed to persist project selection", logger.F("error", err))
	}
}
