package tui

import (
	"time"

	"github.com/roach88/logicflow/internal/engine"
)

// StepMsg carries the outcome of one editor tick back into Update.
type StepMsg struct {
	Result engine.StepResult
	Err    error
}

// TickMsg drives the background sweep.
type TickMsg time.Time

// SavedMsg reports a finished workspace save.
type SavedMsg struct {
	ID  string
	Err error
}
