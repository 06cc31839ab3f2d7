package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Tab     key.Binding
	Enter   key.Binding
	Start   key.Binding
	Pause   key.Binding
	Stop    key.Binding
	Record  key.Binding
	Project key.Binding
	Delete  key.Binding
	Sync    key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left pane")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right pane")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select project")),
	Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start timer")),
	Pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
	Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop timer")),
	Record:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "add note")),
	Project: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "new project")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Sync:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sync now")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
