package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/zebra/internal/localstore"
	"github.com/existflow/zebra/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	main := m.renderMain()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	if m.mode == ModeAddProject || m.mode == ModeAddRecord {
		modal := m.renderModal()
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			modal,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) renderSidebar() string {
	sidebarWidth := 26
	var s string

	now := time.Now().Format("15:04:05")
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("Zebra") + "\n"
	s += HelpStyle.Render(now) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render("─────────────────────") + "\n\n"

	if len(m.projects) == 0 {
		s += HelpStyle.Render("No projects yet.") + "\n"
		s += HelpStyle.Render("Press 'p' to add one.")
	}

	for i, p := range m.projects {
		sessions := m.tracker.SessionsByProjectID(p.ID)
		var total int64
		for _, sess := range sessions {
			total += sess.EffectiveDuration()
		}

		cursor := "  "
		style := ProjectItemStyle
		if i == m.projCursor {
			cursor = "❯ "
			if m.pane == PaneProjects {
				style = ProjectItemSelectedStyle
			}
		}

		line := fmt.Sprintf("%s%-12s %s", cursor, truncate(p.Name, 12), formatElapsed(total))
		s += style.Render(line) + "\n"
	}

	s += "\n" + lipgloss.NewStyle().Foreground(Border).Render("─────────────────────") + "\n"
	s += HelpStyle.Render("p new project")

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(s)
}

func (m Model) renderMain() string {
	width := m.width - 28
	var s string

	s += m.renderTimer(width)
	s += "\n"
	s += m.renderSessions(width)

	return MainStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderTimer(width int) string {
	var s string

	open := m.tracker.OpenSession()
	running := m.tracker.Running()

	var state, readout string
	switch {
	case running:
		state = TimerRunningStyle.Render("● RUNNING")
		readout = TimerRunningStyle.Render(formatElapsed(m.tracker.Elapsed().Milliseconds()))
	case open != nil:
		state = TimerPausedStyle.Render("⏸ PAUSED")
		readout = TimerPausedStyle.Render(formatElapsed(m.tracker.Elapsed().Milliseconds()))
	default:
		state = TimerIdleStyle.Render("○ idle")
		readout = TimerIdleStyle.Render("0:00:00")
	}

	projName := "no project"
	if open != nil {
		if p := m.tracker.ProjectByID(open.ProjectID); p != nil {
			projName = p.Name
		}
	} else if p := m.tracker.CurrentProject(); p != nil {
		projName = p.Name
	}

	s += fmt.Sprintf("%s  %s  %s\n", state, readout, HelpStyle.Render(projName))
	s += lipgloss.NewStyle().Foreground(Border).Render(repeat("─", max(width-4, 1))) + "\n"

	if open != nil && len(open.Records) > 0 {
		for _, r := range open.Records {
			line := fmt.Sprintf("  %s  %s", r.Timestamp.Format("15:04"), truncate(r.Text, width-14))
			s += HelpStyle.Render(line) + "\n"
		}
	} else if open != nil {
		s += HelpStyle.Render("  Press 'r' to attach a note.") + "\n"
	}

	return s
}

func (m Model) renderSessions(width int) string {
	var s string

	proj := m.currentProject()
	if proj == nil {
		return s
	}

	header := fmt.Sprintf("%s (%d sessions)", proj.Name, len(m.sessions))
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(header) + "\n\n"

	if len(m.sessions) == 0 {
		s += HelpStyle.Render("  No sessions. Press 's' to start the timer.")
		return s
	}

	for i, sess := range m.sessions {
		cursor := "  "
		style := SessionItemStyle
		if i == m.sessCursor && m.pane == PaneSessions {
			cursor = "❯ "
			style = SessionItemSelectedStyle
		}

		when := "unknown"
		if model.ValidDate(sess.StartTime) {
			when = sess.StartTime.Format("Jan 02 15:04")
		}
		line := fmt.Sprintf("%s%-14s %-9s %d note(s)", cursor, when, formatElapsed(sess.EffectiveDuration()), len(sess.Records))
		s += style.Render(line) + "\n"
	}

	return s
}

func (m Model) renderStatusBar() string {
	mode := m.tracker.Mode()
	var sync string
	if mode == localstore.ModeCloud {
		if pending := m.tracker.PendingCount(); pending > 0 {
			sync = lipgloss.NewStyle().Foreground(SyncPending).Render(fmt.Sprintf("cloud ⇅ %d pending", pending))
		} else {
			sync = lipgloss.NewStyle().Foreground(SyncOK).Render("cloud ✓")
		}
	} else {
		sync = lipgloss.NewStyle().Foreground(Offline).Render("local")
	}

	left := sync
	if m.message != "" {
		left += "  " + m.message
	}
	right := HelpStyle.Render("s start · space pause · x stop · r note · S sync · ? help · q quit")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return StatusBarStyle.Width(m.width).Render(left + repeat(" ", gap) + right)
}

func (m Model) renderModal() string {
	title := "New project"
	if m.mode == ModeAddRecord {
		title = "Add note"
	}
	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n" +
		m.input.View() + "\n\n" +
		HelpStyle.Render("enter confirm · esc cancel")
	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `Zebra key bindings

  ↑/k ↓/j      move
  tab h l      switch pane
  enter        select project for tracking
  s            start timer
  space        pause / resume
  x            stop timer and save session
  r            attach note to running session
  p            new project
  d            delete selected project/session
  S            sync with server now
  q            quit

Press any key to close.`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, ModalStyle.Render(help))
}
