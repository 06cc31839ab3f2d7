package pending

import (
	"testing"
	"time"

	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/model"
	"github.com/stretchr/testify/require"
)

// mapState is an in-memory state store for queue tests
type mapState map[string]string

func (m mapState) State(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapState) SetState(key, value string) error {
	m[key] = value
	return nil
}

func testSession(id string) model.Session {
	return model.Session{
		ID:        id,
		ProjectID: "p1",
		StartTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Duration:  1000,
	}
}

func TestQueueStartsEmpty(t *testing.T) {
	q := Load(mapState{})
	require.True(t, q.Empty())
	require.Equal(t, 0, q.Len())
}

func TestQueuePersistsAcrossLoads(t *testing.T) {
	state := mapState{}

	q := Load(state)
	q.AddSession(testSession("s1"))
	q.AddProject(model.Project{ID: "p1", Name: "Alpha"})
	q.AddDeletedSession("s2")
	q.AddDeletedProject("p2")
	require.Equal(t, 4, q.Len())

	// A fresh load over the same state sees the same entries.
	q2 := Load(state)
	snap := q2.Snapshot()
	require.Len(t, snap.Sessions, 1)
	require.Equal(t, "s1", snap.Sessions[0].ID)
	require.Len(t, snap.Projects, 1)
	require.Equal(t, []string{"s2"}, snap.DeletedSessions)
	require.Equal(t, []string{"p2"}, snap.DeletedProjects)
}

func TestSnapshotDoesNotClear(t *testing.T) {
	q := Load(mapState{})
	q.AddSession(testSession("s1"))

	snap := q.Snapshot()
	require.Len(t, snap.Sessions, 1)
	require.Equal(t, 1, q.Len(), "snapshot must leave the queue intact")

	// Repeated snapshots return the same batch until acknowledged.
	snap2 := q.Snapshot()
	require.Len(t, snap2.Sessions, 1)
}

func TestClearAcknowledgedDropsPrefixOnly(t *testing.T) {
	q := Load(mapState{})
	q.AddSession(testSession("s1"))

	snap := q.Snapshot()

	// A session queued while the batch was in flight must survive.
	q.AddSession(testSession("s2"))

	q.ClearAcknowledged(snap)
	require.Equal(t, 1, q.Len())
	remaining := q.Snapshot()
	require.Equal(t, "s2", remaining.Sessions[0].ID)
}

func TestClearAcknowledgedExactBatch(t *testing.T) {
	q := Load(mapState{})
	q.AddSession(testSession("s1"))
	q.AddDeletedProject("p1")

	q.ClearAcknowledged(q.Snapshot())
	require.True(t, q.Empty())
}

func TestClear(t *testing.T) {
	state := mapState{}
	q := Load(state)
	q.AddSession(testSession("s1"))
	q.Clear()

	require.True(t, q.Empty())
	require.True(t, Load(state).Empty(), "clear must persist")
}

func TestCorruptQueueDiscarded(t *testing.T) {
	state := mapState{localstore.KeyPendingQueue: "{not json"}
	q := Load(state)
	require.True(t, q.Empty())
}

func TestDuplicatesKept(t *testing.T) {
	// The server upsert is idempotent by id, so the queue does not
	// deduplicate; later entries win by arrival order.
	q := Load(mapState{})
	q.AddSession(testSession("s1"))
	q.AddSession(testSession("s1"))
	require.Equal(t, 2, q.Len())
}
