package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/zebra/internal/api"
	"github.com/existflow/zebra/internal/auth"
	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/model"
	"github.com/existflow/zebra/internal/pending"
	"github.com/stretchr/testify/require"
)

// fakeRemote is a scriptable backend for tracker tests
type fakeRemote struct {
	failWith       error
	projects       []model.Project
	details        map[string]*api.ProjectDetail
	savedSessions  []model.Session
	createdProject *model.Project
}

func (f *fakeRemote) GetProjects(ctx context.Context) ([]model.Project, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.projects, nil
}

func (f *fakeRemote) GetProject(ctx context.Context, id string) (*api.ProjectDetail, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return &api.ProjectDetail{}, nil
}

func (f *fakeRemote) CreateProject(ctx context.Context, p model.Project) (*model.Project, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.createdProject = &p
	return &p, nil
}

func (f *fakeRemote) SaveSession(ctx context.Context, s model.Session) (*model.Session, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.savedSessions = append(f.savedSessions, s)
	return &s, nil
}

func (f *fakeRemote) DeleteProject(ctx context.Context, id string) error { return f.failWith }
func (f *fakeRemote) DeleteSession(ctx context.Context, id string) error { return f.failWith }

// fakeClock is a settable time source
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	store  *localstore.Store
	remote *fakeRemote
	queue  *pending.Queue
	creds  *auth.Store
	clock  *fakeClock
	t      *Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := localstore.Open(filepath.Join(t.TempDir(), "zebra.db"))
	require.True(t, store.Available())
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	remote := &fakeRemote{details: map[string]*api.ProjectDetail{}}
	queue := pending.Load(store)
	creds := auth.New(store, "")

	return &fixture{
		store:  store,
		remote: remote,
		queue:  queue,
		creds:  creds,
		clock:  clock,
		t:      New(store, remote, queue, creds, WithClock(clock.Now)),
	}
}

func (f *fixture) goCloud(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.SetMode(localstore.ModeCloud))
	require.NoError(t, f.creds.SetCredentials("tok", "dev@example.com"))
}

func TestAddProjectLocalMode(t *testing.T) {
	f := newFixture(t)

	p, deferred, err := f.t.AddProject(context.Background(), "Alpha", "first")
	require.NoError(t, err)
	require.False(t, deferred)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "Alpha", p.Name)

	// The new project is current and cached.
	cur := f.t.CurrentProject()
	require.NotNil(t, cur)
	require.Equal(t, p.ID, cur.ID)
	require.Len(t, f.store.Projects(), 1)
	require.Equal(t, 0, f.t.PendingCount())
}

func TestAddProjectCloudFailureDefers(t *testing.T) {
	f := newFixture(t)
	f.goCloud(t)
	f.remote.failWith = errors.New("server down")

	p, deferred, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	require.True(t, deferred)
	require.NotNil(t, p)
	require.Equal(t, 1, f.t.PendingCount())

	snap := f.queue.Snapshot()
	require.Len(t, snap.Projects, 1)
	require.Equal(t, p.ID, snap.Projects[0].ID)
}

func TestAddProjectUnauthorizedAborts(t *testing.T) {
	f := newFixture(t)
	f.goCloud(t)
	f.remote.failWith = api.ErrUnauthorized

	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, 0, f.t.PendingCount(), "auth failures are never queued")
	require.Empty(t, f.t.Projects())
}

func TestCurrentProjectFallsBackToNewest(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	p2, _, err := f.t.AddProject(context.Background(), "Beta", "")
	require.NoError(t, err)

	// Simulate a stale selection.
	require.NoError(t, f.store.DeleteState(localstore.KeyCurrentProject))
	tr := New(f.store, f.remote, f.queue, f.creds, WithClock(f.clock.Now))

	cur := tr.CurrentProject()
	require.NotNil(t, cur)
	require.Equal(t, p2.ID, cur.ID)
}

func TestSetCurrentProjectUnknown(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.t.SetCurrentProject("nope"), ErrNotFound)
}

func TestStartRequiresProject(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.t.StartTimer(), ErrNoProject)
}

func TestTimerLifecycle(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)

	require.NoError(t, f.t.StartTimer())
	require.True(t, f.t.Running())
	require.ErrorIs(t, f.t.StartTimer(), ErrTimerRunning)

	f.clock.Advance(30 * time.Second)
	require.Equal(t, 30*time.Second, f.t.Elapsed())

	require.NoError(t, f.t.PauseTimer())
	require.False(t, f.t.Running())
	f.clock.Advance(10 * time.Minute)
	require.Equal(t, 30*time.Second, f.t.Elapsed(), "paused time does not count")

	require.NoError(t, f.t.StartTimer())
	f.clock.Advance(35 * time.Second)

	res, err := f.t.StopTimer(context.Background())
	require.NoError(t, err)
	require.False(t, res.Deferred)
	require.Equal(t, int64(65000), res.Session.Duration)
	require.Nil(t, f.t.OpenSession())

	// The finished session is cached and visible in the aggregate.
	require.Len(t, f.store.Sessions(), 1)
	sessions := f.t.SessionsByProjectID(res.Session.ProjectID)
	require.Len(t, sessions, 1)
	require.Equal(t, int64(65000), sessions[0].EffectiveDuration())
}

func TestStopWithoutTimer(t *testing.T) {
	f := newFixture(t)
	_, err := f.t.StopTimer(context.Background())
	require.ErrorIs(t, err, ErrNoTimer)
}

func TestPauseWithoutTimer(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.t.PauseTimer(), ErrNoTimer)
}

func TestTimerSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	require.NoError(t, f.t.StartTimer())
	f.clock.Advance(20 * time.Second)
	require.NoError(t, f.t.PauseTimer())

	// A new tracker over the same store resumes the open session.
	tr := New(f.store, f.remote, f.queue, f.creds, WithClock(f.clock.Now))
	require.False(t, tr.Running())
	require.NotNil(t, tr.OpenSession())
	require.Equal(t, 20*time.Second, tr.Elapsed())

	require.NoError(t, tr.StartTimer())
	f.clock.Advance(5 * time.Second)
	res, err := tr.StopTimer(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(25000), res.Session.Duration)
}

func TestStopCloudFailureDefers(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	f.goCloud(t)
	f.remote.failWith = errors.New("server down")

	require.NoError(t, f.t.StartTimer())
	f.clock.Advance(time.Minute)

	res, err := f.t.StopTimer(context.Background())
	require.NoError(t, err)
	require.True(t, res.Deferred)

	snap := f.queue.Snapshot()
	require.Len(t, snap.Sessions, 1)
	require.Equal(t, res.Session.ID, snap.Sessions[0].ID)

	// The session is still cached locally.
	require.Len(t, f.store.Sessions(), 1)
}

func TestStopUnauthorizedNotQueued(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	f.goCloud(t)
	f.remote.failWith = api.ErrUnauthorized

	require.NoError(t, f.t.StartTimer())
	f.clock.Advance(time.Minute)

	_, err = f.t.StopTimer(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.True(t, f.queue.Empty(), "a dead token must not queue work")

	// The session data survives in memory for this process.
	require.Len(t, f.t.SessionsByProjectID(f.t.CurrentProject().ID), 1)
}

func TestAddRecordRequiresOpenSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.t.AddRecord(RecordInput{Text: "note"})
	require.ErrorIs(t, err, ErrNoTimer)
}

func TestAddRecordAttachesToSession(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	require.NoError(t, f.t.StartTimer())

	f.clock.Advance(10 * time.Second)
	rec, err := f.t.AddRecord(RecordInput{Text: "fixed the parser", GitLink: "https://example.com/c/abc"})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, f.clock.Now(), rec.Timestamp)

	open := f.t.OpenSession()
	require.Len(t, open.Records, 1)
	require.Equal(t, "fixed the parser", open.Records[0].Text)

	res, err := f.t.StopTimer(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Session.Records, 1)
}

func TestPayloadEviction(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	require.NoError(t, f.t.StartTimer())

	var ids []string
	for i := 0; i < 12; i++ {
		rec, err := f.t.AddRecord(RecordInput{
			Text:  "with payload",
			Blobs: [][]byte{{byte(i)}},
		})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	// Cap is 10: the two oldest-inserted payloads are gone.
	_, ok := f.t.RecordPayload(ids[0])
	require.False(t, ok)
	_, ok = f.t.RecordPayload(ids[1])
	require.False(t, ok)
	for _, id := range ids[2:] {
		_, ok := f.t.RecordPayload(id)
		require.True(t, ok)
	}

	// Records themselves are never evicted, only payloads.
	require.Len(t, f.t.OpenSession().Records, 12)
}

func TestSessionsSortedNewestFirst(t *testing.T) {
	f := newFixture(t)
	p, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.t.StartTimer())
		f.clock.Advance(time.Minute)
		_, err := f.t.StopTimer(context.Background())
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
	}

	sessions := f.t.SessionsByProjectID(p.ID)
	require.Len(t, sessions, 3)
	require.True(t, sessions[0].StartTime.After(sessions[1].StartTime))
	require.True(t, sessions[1].StartTime.After(sessions[2].StartTime))
}

func TestLoadProjectsCloud(t *testing.T) {
	f := newFixture(t)
	f.goCloud(t)

	p := model.Project{ID: "p1", Name: "Alpha", CreatedAt: f.clock.Now()}
	sess := model.Session{ID: "s1", ProjectID: "p1", StartTime: f.clock.Now(), Duration: 1000}
	f.remote.projects = []model.Project{p}
	f.remote.details["p1"] = &api.ProjectDetail{Project: p, Sessions: []model.Session{sess}}

	require.NoError(t, f.t.LoadProjects(context.Background()))
	require.Len(t, f.t.Projects(), 1)
	require.Len(t, f.t.SessionsByProjectID("p1"), 1)

	// Fetched state is cached for offline use.
	require.Len(t, f.store.Projects(), 1)
	require.Len(t, f.store.Sessions(), 1)
}

func TestLoadProjectsCloudFailureUsesCache(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	f.goCloud(t)
	f.remote.failWith = errors.New("server down")

	err = f.t.LoadProjects(context.Background())
	require.Error(t, err)
	require.Len(t, f.t.Projects(), 1, "cache survives a failed refresh")
}

func TestLoadProjectsReappliesQueued(t *testing.T) {
	f := newFixture(t)
	f.goCloud(t)

	// A queued-but-unsynced session must not vanish when a load returns
	// stale server state.
	queued := model.Session{ID: "s-queued", ProjectID: "p1", StartTime: f.clock.Now(), Duration: 500}
	f.queue.AddSession(queued)

	p := model.Project{ID: "p1", Name: "Alpha", CreatedAt: f.clock.Now()}
	f.remote.projects = []model.Project{p}
	f.remote.details["p1"] = &api.ProjectDetail{Project: p}

	require.NoError(t, f.t.LoadProjects(context.Background()))
	sessions := f.t.SessionsByProjectID("p1")
	require.Len(t, sessions, 1)
	require.Equal(t, "s-queued", sessions[0].ID)
}

func TestDeleteProjectClearsSelection(t *testing.T) {
	f := newFixture(t)
	p, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)

	require.NoError(t, f.t.DeleteProject(context.Background(), p.ID))
	require.Empty(t, f.t.Projects())
	require.Nil(t, f.t.CurrentProject())
	require.Empty(t, f.store.Projects())
}

func TestDeleteCloudFailureQueues(t *testing.T) {
	f := newFixture(t)
	p, _, err := f.t.AddProject(context.Background(), "Alpha", "")
	require.NoError(t, err)
	f.goCloud(t)
	f.remote.failWith = errors.New("server down")

	require.NoError(t, f.t.DeleteProject(context.Background(), p.ID))
	snap := f.queue.Snapshot()
	require.Equal(t, []string{p.ID}, snap.DeletedProjects)
	require.Empty(t, f.t.Projects(), "local removal happens regardless")
}
