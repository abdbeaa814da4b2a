package tui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/logicflow/internal/engine"
	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/interaction"
)

// Saver persists the editor's graph. *workspace.Workspace satisfies it.
type Saver interface {
	Save(ctx context.Context, name string, store *graph.Store, container image.Rectangle) (string, error)
}

// Model is the bubbletea model for one editor.
type Model struct {
	ctx    context.Context
	editor *engine.Editor
	keys   keyMap
	help   help.Model

	saver    Saver
	saveName string

	// queued routes input through the editor's Run loop instead of
	// stepping inline; results come back as StepMsg via StepBridge.
	queued bool
	tick   time.Duration

	frame   engine.Frame
	pointer image.Point
	held    interaction.Button
	width   int
	height  int
	status  string
	err     error
	done    bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithSaver enables ctrl+s, saving snapshots under name.
func WithSaver(s Saver, name string) ModelOption {
	return func(m *Model) {
		m.saver = s
		m.saveName = name
	}
}

// WithTick sets the background sweep interval. Zero disables it.
func WithTick(d time.Duration) ModelOption {
	return func(m *Model) {
		m.tick = d
	}
}

// WithQueuedInput enqueues events for the editor's Run loop. The caller
// must run the loop with engine.WithStepHandler(StepBridge(program.Send)).
func WithQueuedInput() ModelOption {
	return func(m *Model) {
		m.queued = true
	}
}

// WithContext sets the context used for saves.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// New creates a Model over editor.
func New(editor *engine.Editor, opts ...ModelOption) Model {
	m := Model{
		ctx:    context.Background(),
		editor: editor,
		keys:   defaultKeyMap(),
		help:   help.New(),
		frame:  editor.Frame(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.tick <= 0 {
		return nil
	}
	return TickCmd(m.tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		ev, ok := m.mouseEvent(msg)
		if !ok {
			return m, nil
		}
		return m, m.submit(ev)

	case StepMsg:
		if msg.Err != nil {
			m.err = msg.Err
			slog.Warn("step failed", "seq", msg.Result.Seq, "error", msg.Err)
		} else if msg.Result.Connected != nil || msg.Result.Rejected != nil {
			m.err = nil
		}
		m.status = describe(msg.Result)
		m.frame = m.editor.Frame()
		return m, nil

	case TickMsg:
		m.editor.Background()
		m.frame = m.editor.Frame()
		return m, TickCmd(m.tick)

	case SavedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.status = "saved " + msg.ID
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		n := m.toggleSources()
		m.status = fmt.Sprintf("toggled %d source(s)", n)
		m.frame = m.editor.Frame()
		return m, nil

	case key.Matches(msg, m.keys.Force):
		m.editor.ForceUpdate()
		m.status = "outputs force-updated"
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if m.saver == nil {
			m.status = "no workspace open"
			return m, nil
		}
		m.status = "saving..."
		return m, m.save()
	}

	ev, ok := keyEvent(msg, m.pointer)
	if !ok {
		return m, nil
	}
	return m, m.submit(ev)
}

// submit hands one event to the editor.
func (m Model) submit(ev interaction.Event) tea.Cmd {
	if m.queued {
		if !m.editor.Enqueue(ev) {
			slog.Debug("event dropped: editor stopped", "action", ev.Action.String())
		}
		return nil
	}
	res, err := m.editor.Step(ev)
	return func() tea.Msg {
		return StepMsg{Result: res, Err: err}
	}
}

// toggleSources flips every selected source node and re-evaluates outputs.
func (m Model) toggleSources() int {
	var n int
	_ = m.editor.Update(func(s engine.Session) error {
		for _, id := range s.Selection.IDs() {
			node, ok := s.Store.Get(id)
			if !ok {
				continue
			}
			if src, ok := node.(*graph.SourceNode); ok {
				src.Toggle()
				n++
			}
		}
		return nil
	})
	if n > 0 {
		m.editor.Background()
	}
	return n
}

func (m Model) save() tea.Cmd {
	ctx, saver, name, editor := m.ctx, m.saver, m.saveName, m.editor
	return func() tea.Msg {
		var id string
		err := editor.View(func(s engine.Session) error {
			var err error
			id, err = saver.Save(ctx, name, s.Store, s.Machine.Container())
			return err
		})
		return SavedMsg{ID: id, Err: err}
	}
}

// mouseEvent translates a terminal mouse report. Motion with a button held
// is a drag; wheel reports are ignored. Updates the tracked pointer and
// held button on m.
func (m *Model) mouseEvent(msg tea.MouseMsg) (interaction.Event, bool) {
	ev := interaction.Event{Pointer: image.Pt(msg.X, msg.Y)}
	if msg.Shift {
		ev.Mods |= interaction.ModShift
	}
	if msg.Ctrl {
		ev.Mods |= interaction.ModCtrl
	}
	if msg.Alt {
		ev.Mods |= interaction.ModAlt
	}

	switch msg.Action {
	case tea.MouseActionPress:
		btn, ok := buttonOf(msg.Button)
		if !ok {
			return ev, false
		}
		ev.Action, ev.Button = interaction.ActionDown, btn
		m.held = btn
	case tea.MouseActionMotion:
		if m.held != interaction.ButtonNone {
			ev.Action, ev.Button = interaction.ActionDrag, m.held
		} else {
			ev.Action = interaction.ActionMove
		}
	case tea.MouseActionRelease:
		btn, ok := buttonOf(msg.Button)
		if !ok || btn == interaction.ButtonNone {
			btn = m.held
		}
		ev.Action, ev.Button = interaction.ActionUp, btn
		m.held = interaction.ButtonNone
	default:
		return ev, false
	}
	m.pointer = ev.Pointer
	return ev, true
}

func buttonOf(b tea.MouseButton) (interaction.Button, bool) {
	switch b {
	case tea.MouseButtonNone:
		return interaction.ButtonNone, true
	case tea.MouseButtonLeft:
		return interaction.ButtonLeft, true
	case tea.MouseButtonRight:
		return interaction.ButtonRight, true
	}
	return interaction.ButtonNone, false
}

// keyEvent turns a key press into an editor key event at the last pointer
// position. "ctrl+t" becomes key "t" with ModCtrl.
func keyEvent(msg tea.KeyMsg, at image.Point) (interaction.Event, bool) {
	name := msg.String()
	ev := interaction.Event{Pointer: at}
	for {
		switch {
		case strings.HasPrefix(name, "ctrl+"):
			ev.Mods |= interaction.ModCtrl
			name = strings.TrimPrefix(name, "ctrl+")
			continue
		case strings.HasPrefix(name, "alt+"):
			ev.Mods |= interaction.ModAlt
			name = strings.TrimPrefix(name, "alt+")
			continue
		case strings.HasPrefix(name, "shift+"):
			ev.Mods |= interaction.ModShift
			name = strings.TrimPrefix(name, "shift+")
			continue
		}
		break
	}
	if name == "" {
		return ev, false
	}
	ev.Key = name
	return ev, true
}

// describe summarizes what a tick changed for the status bar.
func describe(res engine.StepResult) string {
	switch {
	case res.Connected != nil:
		return fmt.Sprintf("connected %d → %d[%d]", res.Connected.Source, res.Connected.Target, res.Connected.Slot)
	case res.Rejected != nil:
		return fmt.Sprintf("rejected %d → %d[%d]", res.Rejected.Source, res.Rejected.Target, res.Rejected.Slot)
	case res.Disconnected != nil:
		return fmt.Sprintf("cleared %d[%d]", res.Disconnected.Target, res.Disconnected.Slot)
	case len(res.Removed) > 0:
		return fmt.Sprintf("removed %d node(s)", len(res.Removed))
	case len(res.Toggled) > 0:
		return fmt.Sprintf("toggled %d node(s)", len(res.Toggled))
	}
	return ""
}

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		return ""
	}
	w, h := m.canvasSize()
	var b strings.Builder
	b.WriteString(drawFrame(m.frame, w, h).render())
	b.WriteByte('\n')
	b.WriteString(m.statusLine(w))
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// canvasSize leaves two rows for the status bar and help. Before the first
// WindowSizeMsg the canvas is sized to fit the container.
func (m Model) canvasSize() (int, int) {
	if m.width > 0 && m.height > 0 {
		return m.width, max(m.height-2, 0)
	}
	c := m.frame.Container
	return max(c.X+c.W+2, 0), max(c.Y+c.H+1, 0)
}

func (m Model) statusLine(w int) string {
	parts := []string{
		fmt.Sprintf("seq %d", m.frame.Seq),
		m.frame.Mode,
		fmt.Sprintf("%d selected", len(m.frame.Selection)),
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	line := StatusBarStyle.Width(w).Render(strings.Join(parts, " · "))
	if m.err != nil {
		line += "\n" + ErrorStyle.Render(m.err.Error())
	}
	return line
}
