package graph

import (
	"fmt"
	"sort"
)

// GateFunc combines input values into one. Unset or stale inputs arrive as false.
type GateFunc func(in []bool) bool

// Gate describes a combinational operator.
type Gate struct {
	Name  string
	Arity int
	Eval  GateFunc
}

// Gates is a gate table keyed by name.
type Gates map[string]Gate

// StandardGates returns the built-in gate table.
func StandardGates() Gates {
	return Gates{
		"and":  {Name: "and", Arity: 2, Eval: func(in []bool) bool { return in[0] && in[1] }},
		"or":   {Name: "or", Arity: 2, Eval: func(in []bool) bool { return in[0] || in[1] }},
		"xor":  {Name: "xor", Arity: 2, Eval: func(in []bool) bool { return in[0] != in[1] }},
		"nand": {Name: "nand", Arity: 2, Eval: func(in []bool) bool { return !(in[0] && in[1]) }},
		"nor":  {Name: "nor", Arity: 2, Eval: func(in []bool) bool { return !(in[0] || in[1]) }},
		"not":  {Name: "not", Arity: 1, Eval: func(in []bool) bool { return !in[0] }},
		"buf":  {Name: "buf", Arity: 1, Eval: func(in []bool) bool { return in[0] }},
	}
}

// Names returns the gate names in sorted order.
func (g Gates) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named gate.
func (g Gates) Lookup(name string) (Gate, error) {
	gate, ok := g[name]
	if !ok {
		return Gate{}, fmt.Errorf("unknown gate %q (known: %v)", name, g.Names())
	}
	return gate, nil
}

// GateNode applies a Gate to its inputs. A disabled gate evaluates to false
// without pulling its inputs.
type GateNode struct {
	Base
	gate Gate
}

// NewGate creates a gate node with one input slot per gate operand.
func NewGate(label string, gate Gate, opts ...NodeOption) *GateNode {
	return &GateNode{Base: newBase(label, gate.Arity, opts), gate: gate}
}

// Op returns the gate name.
func (n *GateNode) Op() string { return n.gate.Name }

// Value implements Node.
func (n *GateNode) Value(r Resolver) bool {
	if !n.enabled {
		return false
	}
	in := make([]bool, len(n.inputs))
	for i := range in {
		if up, ok := n.upstream(r, i); ok {
			in[i] = up.Value(r)
		}
	}
	return n.gate.Eval(in)
}
