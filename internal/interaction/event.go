package interaction

import (
	"fmt"
	"image"
	"strings"
)

// Action is the pointer transition carried by an Event.
type Action int

const (
	ActionNone Action = iota
	ActionMove
	ActionDown
	ActionDrag
	ActionUp
)

var actionNames = [...]string{"none", "move", "down", "drag", "up"}

// String implements fmt.Stringer.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction parses the names produced by Action.String. Empty means none.
func ParseAction(s string) (Action, error) {
	if s == "" {
		return ActionNone, nil
	}
	for i, name := range actionNames {
		if strings.EqualFold(s, name) {
			return Action(i), nil
		}
	}
	return ActionNone, fmt.Errorf("unknown pointer action %q", s)
}

// Button identifies the pointer button of a down, drag or up.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
)

// ParseButton parses "left", "right" or "" (none).
func ParseButton(s string) (Button, error) {
	switch strings.ToLower(s) {
	case "":
		return ButtonNone, nil
	case "left":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	default:
		return ButtonNone, fmt.Errorf("unknown pointer button %q", s)
	}
}

// Mods is a bitmask of held modifier keys.
type Mods uint8

const (
	ModShift Mods = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every modifier in m2 is held.
func (m Mods) Has(m2 Mods) bool { return m&m2 == m2 }

// Event is one immutable input snapshot. Key is the name of a key pressed
// this tick, or empty.
type Event struct {
	Pointer image.Point
	Action  Action
	Button  Button
	Mods    Mods
	Key     string
}

func (e Event) pressing() bool {
	return e.Action == ActionDown || e.Action == ActionDrag
}

func (e Event) left() bool { return e.Button == ButtonLeft }
