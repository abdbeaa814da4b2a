package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/interaction"
)

// Scenario is a scripted editor session: a graph, a tick-by-tick input
// script, and assertions on the outcome.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Config is an optional CUE config file, relative to the scenario file.
	Config string `yaml:"config,omitempty"`

	// Container overrides the initial container as [x, y, width, height].
	Container []int `yaml:"container,omitempty"`

	// Nodes are inserted in order. Refs name them everywhere else.
	Nodes []NodeSpec `yaml:"nodes"`

	// Connections are made before the first step.
	Connections []ConnectionSpec `yaml:"connections,omitempty"`

	// Steps run in order; each pointer or key step is one tick.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the final state and the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// NodeSpec declares one node.
type NodeSpec struct {
	Ref      string `yaml:"ref"`
	Kind     string `yaml:"kind"`
	Label    string `yaml:"label,omitempty"`
	Op       string `yaml:"op,omitempty"`
	Value    bool   `yaml:"value,omitempty"`
	Cached   bool   `yaml:"cached,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`

	// Bounds is [x0, y0, x1, y1] relative to the container origin.
	Bounds []int `yaml:"bounds"`
}

// ConnectionSpec wires target's input slot to source.
type ConnectionSpec struct {
	Target string `yaml:"target"`
	Slot   int    `yaml:"slot"`
	Source string `yaml:"source"`
}

// Step is one scripted action. Exactly one of the pointer/key fields, Set,
// Background or Force is used per step.
type Step struct {
	// Action is none, move, down, drag or up.
	Action string `yaml:"action,omitempty"`

	// At is the pointer position [x, y]. Defaults to the previous position.
	At []int `yaml:"at,omitempty"`

	Button string   `yaml:"button,omitempty"`
	Mods   []string `yaml:"mods,omitempty"`
	Key    string   `yaml:"key,omitempty"`

	// Set assigns source node values outside of a tick.
	Set map[string]bool `yaml:"set,omitempty"`

	// Background runs an evaluation sweep without an input event.
	Background bool `yaml:"background,omitempty"`

	// Force re-announces every output regardless of caches.
	Force bool `yaml:"force,omitempty"`
}

func (s Step) isInput() bool {
	return s.Action != "" || s.Key != "" || len(s.At) > 0
}

// Assertion checks the outcome of a scenario.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	Node    string   `yaml:"node,omitempty"`
	Nodes   []string `yaml:"nodes,omitempty"`
	Target  string   `yaml:"target,omitempty"`
	Slot    int      `yaml:"slot,omitempty"`
	Source  string   `yaml:"source,omitempty"`
	Mode    string   `yaml:"mode,omitempty"`
	Display string   `yaml:"display,omitempty"`
	Enabled *bool    `yaml:"enabled,omitempty"`
	Values  []bool   `yaml:"values,omitempty"`

	// Bounds is [x0, y0, x1, y1]; Container is [x, y, width, height].
	Bounds    []int `yaml:"bounds,omitempty"`
	Container []int `yaml:"container,omitempty"`

	Count int `yaml:"count,omitempty"`

	// Event and Fields match trace events by type and field subset.
	Event  string         `yaml:"event,omitempty"`
	Fields map[string]any `yaml:"fields,omitempty"`
}

// Assertion type constants.
const (
	AssertMode          = "mode"
	AssertSelection     = "selection"
	AssertConnected     = "connected"
	AssertDisplay       = "display"
	AssertEnabled       = "enabled"
	AssertBounds        = "bounds"
	AssertContainer     = "container"
	AssertNodeCount     = "node_count"
	AssertOutputCalls   = "output_calls"
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected. A relative Config path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Config != "" && !filepath.IsAbs(s.Config) {
		s.Config = filepath.Join(filepath.Dir(path), s.Config)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.Container != nil && len(s.Container) != 4 {
		return fmt.Errorf("container must be [x, y, width, height]")
	}

	refs := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.Ref == "" {
			return fmt.Errorf("nodes[%d]: ref is required", i)
		}
		if refs[n.Ref] {
			return fmt.Errorf("nodes[%d]: duplicate ref %q", i, n.Ref)
		}
		refs[n.Ref] = true
		switch graph.Kind(n.Kind) {
		case graph.KindSource, graph.KindOutput:
		case graph.KindGate:
			if n.Op == "" {
				return fmt.Errorf("nodes[%d]: op is required for gate", i)
			}
		default:
			return fmt.Errorf("nodes[%d]: unknown kind %q", i, n.Kind)
		}
		if len(n.Bounds) != 4 {
			return fmt.Errorf("nodes[%d]: bounds must be [x0, y0, x1, y1]", i)
		}
	}

	for i, c := range s.Connections {
		if !refs[c.Target] || !refs[c.Source] {
			return fmt.Errorf("connections[%d]: unknown node ref", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(step, refs); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step, refs map[string]bool) error {
	kinds := 0
	for _, used := range []bool{step.isInput(), len(step.Set) > 0, step.Background, step.Force} {
		if used {
			kinds++
		}
	}
	if kinds != 1 {
		return fmt.Errorf("exactly one of action/key, set, background or force is required")
	}
	if step.At != nil && len(step.At) != 2 {
		return fmt.Errorf("at must be [x, y]")
	}
	if _, err := interaction.ParseAction(step.Action); err != nil {
		return err
	}
	if _, err := interaction.ParseButton(step.Button); err != nil {
		return err
	}
	if _, err := parseMods(step.Mods); err != nil {
		return err
	}
	for ref := range step.Set {
		if !refs[ref] {
			return fmt.Errorf("set: unknown node ref %q", ref)
		}
	}
	return nil
}

func parseMods(names []string) (interaction.Mods, error) {
	var mods interaction.Mods
	for _, name := range names {
		switch name {
		case "shift":
			mods |= interaction.ModShift
		case "ctrl":
			mods |= interaction.ModCtrl
		case "alt":
			mods |= interaction.ModAlt
		default:
			return 0, fmt.Errorf("unknown modifier %q", name)
		}
	}
	return mods, nil
}

var modeNames = []string{
	interaction.ModeIdle.String(),
	interaction.ModeDraggingContainer.String(),
	interaction.ModeDraggingConnection.String(),
	interaction.ModeBoxSelecting.String(),
	interaction.ModeDraggingResize.String(),
	interaction.ModeDraggingNodes.String(),
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMode:
		if !slices.Contains(modeNames, a.Mode) {
			return fmt.Errorf("assertions[%d]: unknown mode %q", index, a.Mode)
		}
	case AssertSelection:
	case AssertConnected:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for connected", index)
		}
	case AssertDisplay:
		if a.Node == "" || a.Display == "" {
			return fmt.Errorf("assertions[%d]: node and display are required for display", index)
		}
	case AssertEnabled:
		if a.Node == "" || a.Enabled == nil {
			return fmt.Errorf("assertions[%d]: node and enabled are required for enabled", index)
		}
	case AssertBounds:
		if a.Node == "" || len(a.Bounds) != 4 {
			return fmt.Errorf("assertions[%d]: node and bounds [x0, y0, x1, y1] are required for bounds", index)
		}
	case AssertContainer:
		if len(a.Container) != 4 {
			return fmt.Errorf("assertions[%d]: container must be [x, y, width, height]", index)
		}
	case AssertNodeCount, AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
		if a.Type == AssertTraceCount && a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", index)
		}
	case AssertOutputCalls:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for output_calls", index)
		}
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
