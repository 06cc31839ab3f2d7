package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/zebra/internal/tracker"
)

// tickMsg is sent every second for timer updates
type tickMsg time.Time

// syncRefreshMsg is sent when remote changes are merged
type syncRefreshMsg struct{}

// syncDoneMsg is sent when a manual sync finishes
type syncDoneMsg struct {
	err error
}

// Init initializes the model with a tick command
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForSyncRefresh())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSyncRefresh listens for merge signals from the sync engine
func (m Model) waitForSyncRefresh() tea.Cmd {
	if m.syncRefreshChan == nil {
		return nil
	}
	return func() tea.Msg {
		<-m.syncRefreshChan
		return syncRefreshMsg{}
	}
}

func (m Model) syncNowCmd() tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return syncDoneMsg{err: eng.SyncOnce(ctx)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		// Elapsed time is recomputed on render
		return m, tickCmd()

	case syncRefreshMsg:
		m.refresh()
		m.message = "Synced from cloud"
		return m, m.waitForSyncRefresh()

	case syncDoneMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Sync failed: %v", msg.err)
		} else {
			m.refresh()
			m.message = "Synced"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddProject, ModeAddRecord:
			return m.updateInput(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, cmd
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneProjects {
			m.pane = PaneSessions
		} else {
			m.pane = PaneProjects
		}

	case key.Matches(msg, keys.Left):
		m.pane = PaneProjects

	case key.Matches(msg, keys.Right):
		m.pane = PaneSessions

	case key.Matches(msg, keys.Up):
		m.handleUp()

	case key.Matches(msg, keys.Down):
		m.handleDown()

	case key.Matches(msg, keys.Enter):
		if m.pane == PaneProjects {
			if p := m.currentProject(); p != nil {
				if err := m.tracker.SetCurrentProject(p.ID); err != nil {
					m.message = err.Error()
				} else {
					m.message = fmt.Sprintf("Tracking %s", p.Name)
				}
			}
		}

	case key.Matches(msg, keys.Start):
		if err := m.tracker.StartTimer(); err != nil {
			if errors.Is(err, tracker.ErrNoProject) {
				m.message = "Select a project first (enter)"
			} else if errors.Is(err, tracker.ErrTimerRunning) {
				m.message = "Timer already running"
			} else {
				m.message = err.Error()
			}
		} else {
			m.message = "Timer started"
		}

	case key.Matches(msg, keys.Pause):
		m.handlePause()

	case key.Matches(msg, keys.Stop):
		m.handleStop()

	case key.Matches(msg, keys.Record):
		return m.startAddRecord()

	case key.Matches(msg, keys.Project):
		return m.startAddProject()

	case key.Matches(msg, keys.Delete):
		m.handleDelete()

	case key.Matches(msg, keys.Sync):
		if m.engine == nil {
			m.message = "Sync not available in local mode"
			return m, nil
		}
		m.message = "Syncing..."
		return m, m.syncNowCmd()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) handleUp() {
	if m.pane == PaneProjects {
		if m.projCursor > 0 {
			m.projCursor--
			m.sessCursor = 0
			m.loadSessions()
		}
	} else if m.sessCursor > 0 {
		m.sessCursor--
	}
}

func (m *Model) handleDown() {
	if m.pane == PaneProjects {
		if m.projCursor < len(m.projects)-1 {
			m.projCursor++
			m.sessCursor = 0
			m.loadSessions()
		}
	} else if m.sessCursor < len(m.sessions)-1 {
		m.sessCursor++
	}
}

func (m *Model) loadSessions() {
	if p := m.currentProject(); p != nil {
		m.sessions = m.tracker.SessionsByProjectID(p.ID)
	} else {
		m.sessions = nil
	}
}

func (m *Model) handlePause() {
	if m.tracker.Running() {
		if err := m.tracker.PauseTimer(); err != nil {
			m.message = err.Error()
		} else {
			m.message = "Timer paused"
		}
		return
	}
	if m.tracker.OpenSession() == nil {
		m.message = "No timer to resume"
		return
	}
	if err := m.tracker.StartTimer(); err != nil {
		m.message = err.Error()
	} else {
		m.message = "Timer resumed"
	}
}

func (m *Model) handleStop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := m.tracker.StopTimer(ctx)
	if err != nil {
		if errors.Is(err, tracker.ErrNoTimer) {
			m.message = "No timer running"
		} else {
			m.message = fmt.Sprintf("Stop failed: %v", err)
		}
		return
	}
	m.loadData()
	if res.Deferred {
		m.message = fmt.Sprintf("Session saved locally (%s), will sync later", formatElapsed(res.Session.EffectiveDuration()))
	} else {
		m.message = fmt.Sprintf("Session saved (%s)", formatElapsed(res.Session.EffectiveDuration()))
	}
}

func (m *Model) handleDelete() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if m.pane == PaneSessions {
		s := m.currentSession()
		if s == nil {
			return
		}
		if err := m.tracker.DeleteSession(ctx, s.ID); err != nil {
			m.message = fmt.Sprintf("Delete failed: %v", err)
			return
		}
		m.message = "Session deleted"
	} else {
		p := m.currentProject()
		if p == nil {
			return
		}
		if err := m.tracker.DeleteProject(ctx, p.ID); err != nil {
			m.message = fmt.Sprintf("Delete failed: %v", err)
			return
		}
		m.message = fmt.Sprintf("Deleted %s", p.Name)
	}
	m.loadData()
}

func (m Model) startAddProject() (tea.Model, tea.Cmd) {
	m.mode = ModeAddProject
	m.input.Placeholder = "Project name..."
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) startAddRecord() (tea.Model, tea.Cmd) {
	if m.tracker.OpenSession() == nil {
		m.message = "Start the timer before adding a note"
		return m, nil
	}
	m.mode = ModeAddRecord
	m.input.Placeholder = "Note..."
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

// updateInput handles key presses while the input modal is open
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		switch mode {
		case ModeAddProject:
			m.commitProject(value)
		case ModeAddRecord:
			m.commitRecord(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitProject(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, deferred, err := m.tracker.AddProject(ctx, name, "")
	if err != nil {
		m.message = fmt.Sprintf("Add project failed: %v", err)
		return
	}
	m.loadData()
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projCursor = i
			break
		}
	}
	if deferred {
		m.message = fmt.Sprintf("Created %s locally, will sync later", p.Name)
	} else {
		m.message = fmt.Sprintf("Created %s", p.Name)
	}
}

func (m *Model) commitRecord(text string) {
	rec, err := m.tracker.AddRecord(tracker.RecordInput{Text: text})
	if err != nil {
		m.message = fmt.Sprintf("Add note failed: %v", err)
		return
	}
	m.message = fmt.Sprintf("Noted at %s", rec.Timestamp.Format("15:04:05"))
}
