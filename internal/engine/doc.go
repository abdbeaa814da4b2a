// Package engine runs the editor tick loop.
//
// An Editor owns a graph.Store, a selection.Controller and an
// interaction.Machine. Hosts either call Step directly with one event per
// tick, or Enqueue events and let Run step them from a single goroutine.
//
// TICK:
//
//  1. The clock advances; the new seq stamps the tick.
//  2. The interaction machine consumes the event.
//  3. Every output node is evaluated once (edge-triggered side effects fire).
//  4. A Frame is rebuilt for renderers and the HTTP server.
//
// Telemetry goes to a Recorder (metrics.Registry in production) and log/slog.
// Connection errors are returned from Step, never swallowed.
package engine
