// Package harness replays scripted editor sessions and checks the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: connect_and_light
//	description: "Dragging a wire lights a cached output"
//	config: logicflow.cue          # optional, relative to the scenario
//	container: [0, 1, 60, 20]      # optional x, y, width, height
//	nodes:
//	  - {ref: S, kind: source, value: true, bounds: [2, 2, 8, 5]}
//	  - {ref: G, kind: gate, op: and, bounds: [20, 2, 26, 5]}
//	  - {ref: O, kind: output, cached: true, bounds: [40, 2, 46, 5]}
//	connections:
//	  - {target: G, slot: 0, source: S}
//	steps:
//	  - {action: down, at: [8, 4], button: left}
//	  - {action: up, at: [39, 4], button: left}
//	  - {key: n, mods: [ctrl]}
//	  - set: {S: false}
//	  - background: true
//	  - force: true
//	assertions:
//	  - {type: connected, target: O, slot: 0, source: S}
//	  - {type: output_calls, node: O, values: [true, false]}
//	  - {type: trace_contains, event: connect, fields: {target: O}}
//
// Node bounds are relative to the container origin; pointer positions are
// host coordinates. Each pointer or key step is one editor tick.
//
// # Assertion Types
//
//   - mode, selection, node_count, container: final editor state
//   - connected, display, enabled, bounds: one node's final state
//   - output_calls: every value an output was driven with, in order
//   - trace_contains, trace_count: events by type and field subset
//
// # Deterministic Testing
//
// Node ids come from SequentialKeys and ticks from a fresh logical clock, and
// the trace is canonical JSON lines, so identical scenarios produce identical
// bytes for golden comparison.
package harness
