package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/zebra/internal/logger"
	"github.com/existflow/zebra/internal/model"
	syncer "github.com/existflow/zebra/internal/sync"
	"github.com/existflow/zebra/internal/tracker"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneProjects Pane = iota
	PaneSessions
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddProject
	ModeAddRecord
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	tracker  *tracker.Tracker
	engine   *syncer.Engine
	projects []model.Project
	sessions []model.Session

	// Channel to trigger UI refresh when the engine merges remote data
	syncRefreshChan chan struct{}

	// UI state
	width      int
	height     int
	pane       Pane
	mode       Mode
	projCursor int
	sessCursor int

	// Input
	input textinput.Model

	message string
}

// NewModel creates a new TUI model
func NewModel(tr *tracker.Tracker, eng *syncer.Engine) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Project name..."
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		tracker:         tr,
		engine:          eng,
		pane:            PaneProjects,
		mode:            ModeNormal,
		input:           ti,
		syncRefreshChan: make(chan struct{}, 1), // Buffered to avoid blocking
	}

	if eng != nil {
		ch := m.syncRefreshChan
		eng.SetOnMerge(func() {
			logger.Debug("Sync merge callback triggered")
			select {
			case ch <- struct{}{}:
			default:
			}
		})
	}

	m.loadData()
	logger.Debug("TUI model initialized",
		logger.F("projects", len(m.projects)),
		logger.F("sessions", len(m.sessions)))
	return m
}

func (m *Model) loadData() {
	m.projects = m.tracker.Projects()
	if m.projCursor >= len(m.projects) {
		m.projCursor = 0
	}
	// Track the selected project so the timer starts against it
	if cur := m.tracker.CurrentProject(); cur != nil {
		for i := range m.projects {
			if m.projects[i].ID == cur.ID {
				m.projCursor = i
				break
			}
		}
	}
	if len(m.projects) > 0 {
		m.sessions = m.tracker.SessionsByProjectID(m.projects[m.projCursor].ID)
	} else {
		m.sessions = nil
	}
	if m.sessCursor >= len(m.sessions) {
		m.sessCursor = 0
	}
}

// refresh pulls the latest remote state before reloading the cursors
func (m *Model) refresh() {
	if err := m.tracker.LoadProjects(context.Background()); err != nil {
		logger.Warn("refresh failed, using cached data", logger.F("error", err.Error()))
	}
	m.loadData()
}

func (m *Model) currentProject() *model.Project {
	if m.projCursor < len(m.projects) {
		return &m.projects[m.projCursor]
	}
	return nil
}

func (m *Model) currentSession() *model.Session {
	if m.sessCursor < len(m.sessions) {
		return &m.sessions[m.sessCursor]
	}
	return nil
}
