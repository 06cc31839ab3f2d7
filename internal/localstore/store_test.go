package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/zebra/internal/model"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a store over a throwaway database file
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s := Open(filepath.Join(t.TempDir(), "zebra.db"))
	require.True(t, s.Available(), "expected durable store")

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestProjectRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := model.Project{
		ID:          "p1",
		Name:        "Alpha",
		Description: "first",
		CreatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		DeviceID:    "dev-1",
	}
	require.NoError(t, s.PutProject(p))

	got := s.Projects()
	require.Len(t, got, 1)
	require.Equal(t, p.ID, got[0].ID)
	require.Equal(t, p.Name, got[0].Name)
	require.Equal(t, p.Description, got[0].Description)
	require.True(t, p.CreatedAt.Equal(got[0].CreatedAt))
	require.Equal(t, p.DeviceID, got[0].DeviceID)
}

func TestPutProjectReplaces(t *testing.T) {
	s := newTestStore(t)

	p := model.Project{ID: "p1", Name: "Alpha", CreatedAt: time.Now()}
	require.NoError(t, s.PutProject(p))

	p.Name = "Alpha renamed"
	require.NoError(t, s.PutProject(p))

	got := s.Projects()
	require.Len(t, got, 1)
	require.Equal(t, "Alpha renamed", got[0].Name)
}

func TestProjectsSortedByCreation(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.PutProject(model.Project{ID: "b", Name: "second", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.PutProject(model.Project{ID: "a", Name: "first", CreatedAt: base}))

	got := s.Projects()
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].Name)
	require.Equal(t, "second", got[1].Name)
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sess := model.Session{
		ID:        "s1",
		ProjectID: "p1",
		StartTime: start,
		EndTime:   start.Add(time.Minute),
		Duration:  60000,
		Records: []model.Record{
			{ID: "r1", Text: "note", Timestamp: start.Add(30 * time.Second)},
		},
	}
	require.NoError(t, s.PutSession(sess))

	got := s.Sessions()
	require.Len(t, got, 1)
	require.Equal(t, sess.ID, got[0].ID)
	require.Equal(t, sess.Duration, got[0].Duration)
	require.Len(t, got[0].Records, 1)
	require.Equal(t, "note", got[0].Records[0].Text)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutProject(model.Project{ID: "p1", Name: "Alpha", CreatedAt: time.Now()}))
	require.NoError(t, s.PutSession(model.Session{ID: "s1", ProjectID: "p1", StartTime: time.Now()}))

	require.NoError(t, s.DeleteProject("p1"))
	require.NoError(t, s.DeleteSession("s1"))

	require.Empty(t, s.Projects())
	require.Empty(t, s.Sessions())
}

func TestStateKV(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.State("missing")
	require.False(t, ok)

	require.NoError(t, s.SetState("k", "v1"))
	v, ok := s.State("k")
	require.True(t, ok)
	require.Equal(t, "v1", v)

	require.NoError(t, s.SetState("k", "v2"))
	v, _ = s.State("k")
	require.Equal(t, "v2", v)

	require.NoError(t, s.DeleteState("k"))
	_, ok = s.State("k")
	require.False(t, ok)
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zebra.db")

	s := Open(path)
	require.True(t, s.Available())
	require.NoError(t, s.SetState("k", "v"))
	require.NoError(t, s.Close())

	s = Open(path)
	defer s.Close()
	v, ok := s.State("k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestDegradedStoreKeepsWorking(t *testing.T) {
	// A path under a file cannot be created, so the store falls back to
	// memory and every operation still succeeds.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := Open(filepath.Join(blocker, "nested", "zebra.db"))
	require.False(t, s.Available())

	require.NoError(t, s.PutProject(model.Project{ID: "p1", Name: "Alpha", CreatedAt: time.Now()}))
	require.Len(t, s.Projects(), 1)

	require.NoError(t, s.SetState("k", "v"))
	v, ok := s.State("k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestDeviceIDStable(t *testing.T) {
	s := newTestStore(t)

	id := s.DeviceID()
	require.NotEmpty(t, id)
	require.Equal(t, id, s.DeviceID())
}

func TestModeDefaultsToLocal(t *testing.T) {
	s := newTestStore(t)

	require.Equal(t, ModeLocal, s.Mode())
	require.NoError(t, s.SetMode(ModeCloud))
	require.Equal(t, ModeCloud, s.Mode())
	require.NoError(t, s.SetMode(ModeLocal))
	require.Equal(t, ModeLocal, s.Mode())
}
