// Package graph implements the logic graph underneath the editor.
//
// The graph is an arena: a Store owns every node by id, and edges are plain
// id lookups held in each node's ordered input slots. Nothing in a node points
// at another node directly, so removing a node simply leaves stale ids behind.
// Stale and unset inputs evaluate to false rather than failing.
//
// ACYCLICITY:
//
// Evaluation is a recursive pull over input slots with no runtime cycle
// detection. The only place cycles are prevented is Store.Connect, which
// refuses any edge whose target already lies in the source's input tree.
// Every mutation path that creates edges (the interaction machine, workspace
// loading, the harness) goes through Connect.
//
// IDENTITY:
//
// Node ids are strictly negative. The Store mints them from a KeyAllocator
// passed in at construction (RandomKeys for sessions, SequentialKeys for
// tests and deterministic replays) and retries on collision. Ids freed by
// Remove are retired and never minted again within the same Store.
//
// Thread-safety: a Store is not safe for concurrent use. The engine owns it
// from a single goroutine; anything else must serialize access.
package graph
