package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/existflow/zebra/internal/api"
	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/logger"
	"github.com/existflow/zebra/internal/model"

	"github.com/google/uuid"
)

// DefaultMaxStoredFiles caps the in-memory record payload side table.
// Raw binary payloads are never written to durable snapshots; once the
// cap is hit the oldest-inserted payload is evicted.
const DefaultMaxStoredFiles = 10

// Payload holds the binary attachments of one record, in memory only
type Payload struct {
	Files [][]byte
	Audio []byte
}

// RecordInput is the caller-supplied content of a new record
type RecordInput struct {
	Text    string
	GitLink string
	Files   []model.FileRef
	Blobs   [][]byte
	Audio   []byte
}

// StopResult reports how a finished session was persisted. Deferred means
// the save failed transiently and was queued; the session is safe locally
// and will reach the backend on a later sync.
type StopResult struct {
	Session  model.Session
	Deferred bool
}

// timerState is the persisted shape of an in-progress timer, so a process
// restart picks the open session back up.
type timerState struct {
	Running     bool           `json:"running"`
	StartedAt   time.Time      `json:"started_at,omitzero"`
	Accumulated int64          `json:"accumulated_ms"`
	Session     *model.Session `json:"session,omitempty"`
}

func (t *Tracker) loadTimer() {
	data, ok := t.store.State(localstore.KeyTimerState)
	if !ok || data == "" {
		return
	}
	if err := json.Unmarshal([]byte(data), &t.timer); err != nil {
		logger.Warn("discarding corrupt timer state", logger.F("error", err))
		t.timer = timerState{}
	}
}

// saveTimerLocked persists the timer state; callers hold the lock
func (t *Tracker) saveTimerLocked() {
	if t.timer.Session == nil {
		if err := t.store.DeleteState(localstore.KeyTimerState); err != nil {
			logger.Warn("failed to clear timer state", logger.F("error", err))
		}
		return
	}
	data, err := json.Marshal(t.timer)
	if err != nil {
		logger.Error("failed to encode timer state", logger.F("error", err))
		return
	}
	if err := t.store.SetState(localstore.KeyTimerState, string(data)); err != nil {
		logger.Warn("failed to persist timer state", logger.F("error", err))
	}
}

// StartTimer opens a session against the current project, or resumes a
// paused one. Requires a resolvable current project.
func (t *Tracker) StartTimer() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer.Running {
		return ErrTimerRunning
	}

	now := t.now()
	if t.timer.Session != nil {
		// Paused session carries its accumulated time forward.
		t.timer.Running = true
		t.timer.StartedAt = now
		t.saveTimerLocked()
		return nil
	}

	project := t.currentProjectLocked()
	if project == nil {
		logger.Warn("start requested with no project")
		return ErrNoProject
	}

	t.timer = timerState{
		Running:   true,
		StartedAt: now,
		Session: &model.Session{
			ID:        uuid.NewString(),
			ProjectID: project.ID,
			StartTime: now,
			DeviceID:  t.store.DeviceID(),
		},
	}
	t.saveTimerLocked()
	logger.Info("timer started", logger.F("project", project.ID))
	return nil
}

// PauseTimer suspends the running timer, banking the elapsed time
func (t *Tracker) PauseTimer() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.timer.Running {
		return ErrNoTimer
	}
	t.timer.Accumulated += t.now().Sub(t.timer.StartedAt).Milliseconds()
	t.timer.Running = false
	t.saveTimerLocked()
	return nil
}

// Running reports whether a timer is actively counting
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer.Running
}

// OpenSession returns a copy of the in-progress session, or nil
func (t *Tracker) OpenSession() *model.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer.Session == nil {
		return nil
	}
	s := *t.timer.Session
	return &s
}

// Elapsed returns the running total for the open timer
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Duration(t.timer.Accumulated) * time.Millisecond
	if t.timer.Running {
		elapsed += t.now().Sub(t.timer.StartedAt)
	}
	return elapsed
}

// StopTimer finalizes the open session and persists it. On a transient
// save failure the session still lands in in-memory state and the
// mutation is queued for sync; only an auth failure aborts outright.
func (t *Tracker) StopTimer(ctx context.Context) (*StopResult, error) {
	t.mu.Lock()
	if t.timer.Session == nil {
		t.mu.Unlock()
		return nil, ErrNoTimer
	}

	now := t.now()
	duration := t.timer.Accumulated
	if t.timer.Running {
		duration += now.Sub(t.timer.StartedAt).Milliseconds()
	}

	sess := *t.timer.Session
	sess.EndTime = now
	sess.Duration = duration

	t.timer = timerState{}
	t.saveTimerLocked()
	cloud := t.cloudMode()
	t.mu.Unlock()

	deferred := false
	if cloud {
		saved, err := t.remote.SaveSession(ctx, sess)
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			// Session stays in memory; nothing is queued for a dead token.
			t.mu.Lock()
			t.upsertSessionLocked(sess)
			t.mu.Unlock()
			return nil, err
		case err != nil:
			logger.Warn("session save deferred", logger.F("id", sess.ID), logger.F("error", err))
			t.queue.AddSession(sess)
			deferred = true
		default:
			sess = *saved
		}
	}

	if err := t.store.PutSession(sess); err != nil {
		logger.Warn("session cache write failed", logger.F("id", sess.ID), logger.F("error", err))
		if !cloud {
			t.queue.AddSession(sess)
			deferred = true
		}
	}

	t.mu.Lock()
	t.upsertSessionLocked(sess)
	t.mu.Unlock()

	logger.Info("timer stopped",
		logger.F("session", sess.ID),
		logger.F("durationMs", duration),
		logger.F("deferred", deferred))
	return &StopResult{Session: sess, Deferred: deferred}, nil
}

// AddRecord attaches a note to the open session. Binary payloads go into
// the bounded in-memory side table only.
func (t *Tracker) AddRecord(input RecordInput) (*model.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer.Session == nil {
		return nil, ErrNoTimer
	}

	rec := model.Record{
		ID:        uuid.NewString(),
		Text:      input.Text,
		GitLink:   input.GitLink,
		Timestamp: t.now(),
		Files:     input.Files,
	}

	if len(input.Blobs) > 0 || len(input.Audio) > 0 {
		t.storePayloadLocked(rec.ID, Payload{Files: input.Blobs, Audio: input.Audio})
	}

	t.timer.Session.Records = append(t.timer.Session.Records, rec)
	t.saveTimerLocked()
	return &rec, nil
}

// RecordPayload returns the in-memory binary payload for a record, if it
// has not been evicted.
func (t *Tracker) RecordPayload(recordID string) (Payload, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.payloads[recordID]
	return p, ok
}

// storePayloadLocked inserts a payload, evicting the oldest-inserted
// entry once the cap is reached; callers hold the lock.
func (t *Tracker) storePayloadLocked(id string, p Payload) {
	for len(t.payloadOrder) >= t.maxStoredFiles {
		oldest := t.payloadOrder[0]
		t.payloadOrder = t.payloadOrder[1:]
		delete(t.payloads, oldest)
	}
	t.payloads[id] = p
	t.payloadOrder = append(t.payloadOrder, id)
}
