package graph

import (
	"image"

	"golang.org/x/text/unicode/norm"
)

// Resolver looks nodes up by id. Store is the canonical implementation.
type Resolver interface {
	Get(id NodeID) (Node, bool)
}

// Node is a vertex in the logic graph.
//
// Every variant embeds Base, which carries identity, input slots, the enabled
// flag, a display label and the node's rectangle relative to the container.
// Value is the variant-specific evaluation rule; it pulls upstream values
// through the Resolver on every call.
type Node interface {
	ID() NodeID
	Inputs() []InputRef
	Enabled() bool
	SetEnabled(enabled bool)
	Label() string
	Bounds() image.Rectangle
	SetBounds(r image.Rectangle)
	Value(r Resolver) bool

	base() *Base
}

// Base holds the state shared by all node variants.
type Base struct {
	id      NodeID
	inputs  []InputRef
	enabled bool
	label   string
	bounds  image.Rectangle
}

// NodeOption configures a node at construction.
type NodeOption func(*Base)

// WithBounds sets the node rectangle, relative to the container origin.
func WithBounds(r image.Rectangle) NodeOption {
	return func(b *Base) {
		b.bounds = r.Canon()
	}
}

// Disabled constructs the node in the disabled state.
func Disabled() NodeOption {
	return func(b *Base) {
		b.enabled = false
	}
}

func newBase(label string, arity int, opts []NodeOption) Base {
	b := Base{
		inputs:  make([]InputRef, arity),
		enabled: true,
		label:   norm.NFC.String(label),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *Base) base() *Base { return b }

// ID returns the id assigned by the owning Store, or 0 before insertion.
func (b *Base) ID() NodeID { return b.id }

// Inputs returns a copy of the input slots.
func (b *Base) Inputs() []InputRef {
	out := make([]InputRef, len(b.inputs))
	copy(out, b.inputs)
	return out
}

// Arity is the number of input slots.
func (b *Base) Arity() int { return len(b.inputs) }

func (b *Base) Enabled() bool               { return b.enabled }
func (b *Base) SetEnabled(enabled bool)     { b.enabled = enabled }
func (b *Base) Label() string               { return b.label }
func (b *Base) Bounds() image.Rectangle     { return b.bounds }
func (b *Base) SetBounds(r image.Rectangle) { b.bounds = r.Canon() }

// SetLabel replaces the label. Labels are stored NFC-normalized.
func (b *Base) SetLabel(label string) {
	b.label = norm.NFC.String(label)
}

// upstream resolves input slot i. ok is false when the slot is unset,
// out of range, or points at a node that no longer exists.
func (b *Base) upstream(r Resolver, i int) (Node, bool) {
	if i < 0 || i >= len(b.inputs) || !b.inputs[i].Valid {
		return nil, false
	}
	return r.Get(b.inputs[i].Source)
}

// Arity returns the number of input slots of n.
func Arity(n Node) int {
	return len(n.base().inputs)
}

// SourceNode is a leaf whose value is set externally.
// A disabled source evaluates to false.
type SourceNode struct {
	Base
	value bool
}

// NewSource creates a source node with no inputs.
func NewSource(label string, value bool, opts ...NodeOption) *SourceNode {
	return &SourceNode{Base: newBase(label, 0, opts), value: value}
}

// Set assigns the externally driven value.
func (n *SourceNode) Set(value bool) { n.value = value }

// Toggle flips the externally driven value.
func (n *SourceNode) Toggle() { n.value = !n.value }

// Raw returns the assigned value regardless of the enabled flag.
func (n *SourceNode) Raw() bool { return n.value }

// Value implements Node.
func (n *SourceNode) Value(Resolver) bool {
	return n.enabled && n.value
}
