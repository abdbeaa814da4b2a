package interaction

import (
	"image"

	"github.com/roach88/logicflow/internal/graph"
)

// Mode names the active State variant.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDraggingContainer
	ModeDraggingConnection
	ModeBoxSelecting
	ModeDraggingResize
	ModeDraggingNodes
)

var modeNames = [...]string{
	"idle",
	"dragging-container",
	"dragging-connection",
	"box-selecting",
	"dragging-resize",
	"dragging-nodes",
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// State is the machine's single active mode with its transient data.
// It is a closed set: Idle, DraggingContainer, DraggingConnection,
// BoxSelecting, DraggingResize and DraggingNodes.
type State interface {
	Mode() Mode
	isState()
}

// Idle is the resting state.
type Idle struct{}

// DraggingContainer moves the container; origin = pointer - Offset.
type DraggingContainer struct {
	Offset image.Point
}

// DraggingConnection drags a new edge out of Source's output port.
type DraggingConnection struct {
	Source graph.NodeID
}

// BoxSelecting tracks a rubber-band selection anchored at Anchor.
type BoxSelecting struct {
	Anchor image.Point
}

// DraggingResize resizes the container from its bottom-right grip.
type DraggingResize struct{}

// DraggingNodes moves the selected nodes by the pointer delta since Last.
type DraggingNodes struct {
	Last image.Point
}

func (Idle) Mode() Mode               { return ModeIdle }
func (DraggingContainer) Mode() Mode  { return ModeDraggingContainer }
func (DraggingConnection) Mode() Mode { return ModeDraggingConnection }
func (BoxSelecting) Mode() Mode       { return ModeBoxSelecting }
func (DraggingResize) Mode() Mode     { return ModeDraggingResize }
func (DraggingNodes) Mode() Mode      { return ModeDraggingNodes }

func (Idle) isState()               {}
func (DraggingContainer) isState()  {}
func (DraggingConnection) isState() {}
func (BoxSelecting) isState()       {}
func (DraggingResize) isState()     {}
func (DraggingNodes) isState()      {}
