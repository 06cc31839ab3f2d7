package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProjectUnmarshalSnakeCase(t *testing.T) {
	data := []byte(`{
		"id": "p1",
		"name": "Alpha",
		"description": "first",
		"created_at": "2026-03-01T09:00:00Z",
		"device_id": "dev-1"
	}`)

	var p Project
	require.NoError(t, json.Unmarshal(data, &p))
	require.Equal(t, "p1", p.ID)
	require.Equal(t, "Alpha", p.Name)
	require.Equal(t, "first", p.Description)
	require.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), p.CreatedAt.UTC())
	require.Equal(t, "dev-1", p.DeviceID)
}

func TestProjectUnmarshalCamelCase(t *testing.T) {
	data := []byte(`{
		"id": "p1",
		"name": "Alpha",
		"createdAt": 1740819600000,
		"deviceId": "dev-2"
	}`)

	var p Project
	require.NoError(t, json.Unmarshal(data, &p))
	require.Equal(t, time.UnixMilli(1740819600000).UTC(), p.CreatedAt)
	require.Equal(t, "dev-2", p.DeviceID)
}

func TestSessionUnmarshalDerivesDuration(t *testing.T) {
	data := []byte(`{
		"id": "s1",
		"projectId": "p1",
		"startTime": "2026-03-01T09:00:00Z",
		"endTime": "2026-03-01T09:01:05Z"
	}`)

	var s Session
	require.NoError(t, json.Unmarshal(data, &s))
	require.Equal(t, "p1", s.ProjectID)
	require.Equal(t, int64(65000), s.Duration)
}

func TestSessionUnmarshalKeepsExplicitDuration(t *testing.T) {
	data := []byte(`{
		"id": "s1",
		"project_id": "p1",
		"start_time": "2026-03-01T09:00:00Z",
		"end_time": "2026-03-01T10:00:00Z",
		"duration": 42
	}`)

	var s Session
	require.NoError(t, json.Unmarshal(data, &s))
	require.Equal(t, int64(42), s.Duration)
}

func TestSessionUnmarshalUnsetEndDate(t *testing.T) {
	// Year-one end date is the backend's "unset" marker; no derivation.
	data := []byte(`{
		"id": "s1",
		"project_id": "p1",
		"start_time": "2026-03-01T09:00:00Z",
		"end_time": "0001-01-01T00:00:00Z"
	}`)

	var s Session
	require.NoError(t, json.Unmarshal(data, &s))
	require.Equal(t, int64(0), s.Duration)
	require.False(t, ValidDate(s.EndTime))
}

func TestSessionUnmarshalFiltersSentinelRecords(t *testing.T) {
	data := []byte(`{
		"id": "s1",
		"project_id": "p1",
		"start_time": "2026-03-01T09:00:00Z",
		"records": [
			{"id": "r1", "text": "kept", "timestamp": "2026-03-01T09:10:00Z"},
			{"id": "00000000-0000-0000-0000-000000000000", "text": "dropped"},
			{"id": "", "text": "also dropped"},
			"not an object"
		]
	}`)

	var s Session
	require.NoError(t, json.Unmarshal(data, &s))
	require.Len(t, s.Records, 1)
	require.Equal(t, "r1", s.Records[0].ID)
	require.Equal(t, "kept", s.Records[0].Text)
}

func TestRecordUnmarshalTimestampFallback(t *testing.T) {
	data := []byte(`{
		"id": "r1",
		"text": "note",
		"created_at": "2026-03-01T09:10:00Z"
	}`)

	var r Record
	require.NoError(t, json.Unmarshal(data, &r))
	require.Equal(t, time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC), r.Timestamp.UTC())
}

func TestRecordUnmarshalFiltersSentinelFiles(t *testing.T) {
	data := []byte(`{
		"id": "r1",
		"gitLink": "https://example.com/commit/abc",
		"audioUrl": "/audio/a1",
		"files": [
			{"id": "f1", "name": "log.txt", "mime_type": "text/plain", "size": 12},
			{"id": "00000000-0000-0000-0000-000000000000", "name": "ghost"}
		]
	}`)

	var r Record
	require.NoError(t, json.Unmarshal(data, &r))
	require.Equal(t, "https://example.com/commit/abc", r.GitLink)
	require.Equal(t, "/audio/a1", r.AudioURL)
	require.Len(t, r.Files, 1)
	require.Equal(t, "f1", r.Files[0].ID)
	require.Equal(t, "text/plain", r.Files[0].Type)
}

func TestUnmarshalUnparseableTimestamp(t *testing.T) {
	data := []byte(`{"id": "p1", "name": "Alpha", "created_at": "yesterday"}`)

	var p Project
	require.NoError(t, json.Unmarshal(data, &p))
	require.True(t, p.CreatedAt.IsZero())
}

func TestUnmarshalRoundTripStable(t *testing.T) {
	// Canonical output must re-parse to the same value, so documents can
	// pass through the local store any number of times.
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	orig := Session{
		ID:        "s1",
		ProjectID: "p1",
		StartTime: start,
		EndTime:   start.Add(time.Minute),
		Duration:  60000,
		Records: []Record{
			{ID: "r1", Text: "note", Timestamp: start.Add(30 * time.Second)},
		},
	}

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Session
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, orig.ID, back.ID)
	require.Equal(t, orig.ProjectID, back.ProjectID)
	require.True(t, orig.StartTime.Equal(back.StartTime))
	require.True(t, orig.EndTime.Equal(back.EndTime))
	require.Equal(t, orig.Duration, back.Duration)
	require.Len(t, back.Records, 1)
	require.Equal(t, "note", back.Records[0].Text)
}
