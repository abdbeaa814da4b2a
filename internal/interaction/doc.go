// Package interaction turns per-tick input snapshots into editor mutations.
//
// A Machine holds exactly one State at a time. Each call to Tick consumes one
// Event and applies the rules below in priority order, highest first:
//
//  1. Connection completion: while dragging a connection, releasing over a
//     valid input slot connects it. Valid means a different node that is not
//     already upstream of the source.
//  2. Connection start: down or drag on an output port while Idle.
//  3. Resize start: down or drag on the resize grip while Idle and no node is
//     hovered.
//  4. Selection clear: plain down inside the body, outside the header, with
//     no node hovered.
//  5. Node pick: down on a hovered node selects it (shift adds). A left press
//     also starts dragging the selected nodes. A right press on a hovered
//     input slot clears that slot.
//  6. Box select: down or drag in the body starts a box; releasing commits it.
//  7. Keys, only while the pointer is over the body: ctrl+tree and
//     ctrl+network close the selection; the disable key toggles and the delete
//     key removes the selected nodes.
//  8. Container drag: down or drag on the header while Idle.
//
// Any pointer-up returns the machine to Idle and drops every transient field.
//
// Coordinates are y-down. Node bounds are relative to the container origin;
// event pointers and the container are absolute. The header sits directly
// above the body.
package interaction
