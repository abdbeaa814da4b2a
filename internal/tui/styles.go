package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/logicflow/internal/graph"
)

// style indexes a cell's look on the canvas.
type style int

const (
	styleNone style = iota
	styleBody
	styleHeader
	styleEdge
	styleFalse
	styleTrue
	styleDisabled
	styleSelected
	styleHovered
	stylePort
	styleDrop
	styleDropInvalid
	styleBox
	styleGrip
)

var (
	// Container chrome
	BodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	HeaderStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Bold(true)
	GripStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Node display states
	FalseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	TrueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	DisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	HoveredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))

	// Wires and overlays
	EdgeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	PortStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DropStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	DropInvalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	BoxStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var styles = map[style]lipgloss.Style{
	styleBody:        BodyStyle,
	styleHeader:      HeaderStyle,
	styleEdge:        EdgeStyle,
	styleFalse:       FalseStyle,
	styleTrue:        TrueStyle,
	styleDisabled:    DisabledStyle,
	styleSelected:    SelectedStyle,
	styleHovered:     HoveredStyle,
	stylePort:        PortStyle,
	styleDrop:        DropStyle,
	styleDropInvalid: DropInvalidStyle,
	styleBox:         BoxStyle,
	styleGrip:        GripStyle,
}

// styleForDisplay maps a node's display state (as rendered in a Frame) to
// its canvas style.
func styleForDisplay(display string) style {
	switch display {
	case graph.DisplayTrue.String():
		return styleTrue
	case graph.DisplayDisabled.String():
		return styleDisabled
	default:
		return styleFalse
	}
}
