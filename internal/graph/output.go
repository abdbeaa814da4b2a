package graph

// Output is the side-effect capability of an OutputNode.
type Output interface {
	Invoke(value bool)
}

// OutputFunc adapts a plain function to Output.
type OutputFunc func(value bool)

// Invoke calls f(value).
func (f OutputFunc) Invoke(value bool) { f(value) }

// OutputNode is a one-input sink that drives an Output with its upstream value.
//
// A direct output invokes on every evaluation. A cached output invokes only
// when the evaluated value differs from the last observed one; the first
// observation always invokes. An unconnected output evaluates to false and
// neither invokes nor records a sample.
//
// The enabled flag is display-only for outputs: a disabled output still
// evaluates and drives its Output.
type OutputNode struct {
	Base
	out         Output
	cached      bool
	last        bool
	observed    bool
	invocations uint64
}

// NewOutput creates a direct output.
func NewOutput(label string, out Output, opts ...NodeOption) *OutputNode {
	return &OutputNode{Base: newBase(label, 1, opts), out: out}
}

// NewCachedOutput creates an output that only invokes on change.
func NewCachedOutput(label string, out Output, opts ...NodeOption) *OutputNode {
	n := NewOutput(label, out, opts...)
	n.cached = true
	return n
}

// Cached reports whether the output only invokes on change.
func (n *OutputNode) Cached() bool { return n.cached }

// SetOutput replaces the bound capability. A nil Output swallows invocations.
func (n *OutputNode) SetOutput(out Output) { n.out = out }

// LastValue returns the last observed value. ok is false until the first
// evaluation of a connected cached output.
func (n *OutputNode) LastValue() (value bool, ok bool) {
	return n.last, n.observed
}

// Invocations is the number of times the Output has been driven.
func (n *OutputNode) Invocations() uint64 { return n.invocations }

// Value implements Node.
func (n *OutputNode) Value(r Resolver) bool {
	up, ok := n.upstream(r, 0)
	if !ok {
		return false
	}
	value := up.Value(r)
	if !n.cached || !n.observed || value != n.last {
		n.invoke(value)
	}
	n.last, n.observed = value, true
	return value
}

// ForceUpdate drives the Output with the current upstream value regardless of
// the cache. The cached sample is left alone. Unconnected outputs do nothing.
func (n *OutputNode) ForceUpdate(r Resolver) {
	up, ok := n.upstream(r, 0)
	if !ok {
		return
	}
	n.invoke(up.Value(r))
}

func (n *OutputNode) invoke(value bool) {
	n.invocations++
	if n.out != nil {
		n.out.Invoke(value)
	}
}
