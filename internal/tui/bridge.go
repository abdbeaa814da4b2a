package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/logicflow/internal/engine"
)

// StepBridge returns a step handler for engine.WithStepHandler that forwards
// every result of the editor's Run loop to the program as a StepMsg.
func StepBridge(send func(tea.Msg)) func(engine.StepResult, error) {
	return func(res engine.StepResult, err error) {
		send(StepMsg{Result: res, Err: err})
	}
}

// TickCmd schedules the next background sweep.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
