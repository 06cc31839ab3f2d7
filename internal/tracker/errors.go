package tracker

import "errors"

var (
	ErrNoProject    = errors.New("no project available")
	ErrNotFound     = errors.New("project not found")
	ErrTimerRunning = errors.New("timer already running")
	ErrNoTimer      = errors.New("no timer in progress")
)
