package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Timer state colors
	TimerRunning = lipgloss.Color("#95E1A3") // Green
	TimerPaused  = lipgloss.Color("#FFE66D") // Yellow
	TimerIdle    = lipgloss.Color("#6C757D") // Gray

	// Sync colors
	SyncOK      = lipgloss.Color("#95E1A3")
	SyncPending = lipgloss.Color("#FFE66D")
	Offline     = lipgloss.Color("#6C757D")

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			Width(24).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Main pane
	MainStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Project item
	ProjectItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	ProjectItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	// Session rows
	SessionItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	SessionItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	// Big timer readout
	TimerRunningStyle = lipgloss.NewStyle().Bold(true).Foreground(TimerRunning)
	TimerPausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(TimerPaused)
	TimerIdleStyle    = lipgloss.NewStyle().Foreground(TimerIdle)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
