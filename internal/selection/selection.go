// Package selection tracks the editor's ordered set of selected nodes.
//
// Order is insertion order and has no semantic meaning beyond display.
// The closure operations replace the selection with the union of some roots
// and their graph closures; with no roots given they close over the current
// selection.
package selection

import (
	"slices"

	"github.com/roach88/logicflow/internal/graph"
)

// Graph is the subset of graph.Store the controller walks.
type Graph interface {
	Contains(id graph.NodeID) bool
	InputTree(root graph.NodeID) []graph.NodeID
	NodeNetwork(start graph.NodeID) []graph.NodeID
}

// Controller is an ordered, duplicate-free list of node ids.
type Controller struct {
	g   Graph
	ids []graph.NodeID
}

// New creates an empty selection over g.
func New(g Graph) *Controller {
	return &Controller{g: g}
}

// Add appends id unless already selected. Returns true if it was added.
func (c *Controller) Add(id graph.NodeID) bool {
	if c.Contains(id) {
		return false
	}
	c.ids = append(c.ids, id)
	return true
}

// Remove drops id from the selection.
func (c *Controller) Remove(id graph.NodeID) {
	if i := slices.Index(c.ids, id); i >= 0 {
		c.ids = slices.Delete(c.ids, i, i+1)
	}
}

// Clear empties the selection.
func (c *Controller) Clear() {
	c.ids = c.ids[:0]
}

// Contains reports whether id is selected.
func (c *Controller) Contains(id graph.NodeID) bool {
	return slices.Contains(c.ids, id)
}

// IDs returns a copy of the selection in insertion order.
func (c *Controller) IDs() []graph.NodeID {
	return slices.Clone(c.ids)
}

// Len returns the number of selected ids.
func (c *Controller) Len() int { return len(c.ids) }

// Prune drops ids that are no longer live in the graph.
func (c *Controller) Prune() {
	c.ids = slices.DeleteFunc(c.ids, func(id graph.NodeID) bool {
		return !c.g.Contains(id)
	})
}

// SelectTree replaces the selection with roots plus every ancestor of each root.
func (c *Controller) SelectTree(roots ...graph.NodeID) {
	c.closeOver(roots, c.g.InputTree)
}

// SelectNetwork replaces the selection with roots plus each root's node network.
func (c *Controller) SelectNetwork(roots ...graph.NodeID) {
	c.closeOver(roots, c.g.NodeNetwork)
}

// closeOver is a no-op when there are neither roots nor a current selection.
// Roots come first in the result, then each root's closure in root order.
func (c *Controller) closeOver(roots []graph.NodeID, closure func(graph.NodeID) []graph.NodeID) {
	if len(roots) == 0 {
		roots = c.IDs()
	}
	if len(roots) == 0 {
		return
	}
	next := make([]graph.NodeID, 0, len(roots))
	seen := make(map[graph.NodeID]bool, len(roots))
	add := func(id graph.NodeID) {
		if !seen[id] {
			seen[id] = true
			next = append(next, id)
		}
	}
	for _, r := range roots {
		add(r)
	}
	for _, r := range roots {
		for _, id := range closure(r) {
			add(id)
		}
	}
	c.ids = next
}
