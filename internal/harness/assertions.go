package harness

import (
	"fmt"
	"image"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/logicflow/internal/trace"
)

// AssertionError is a failed assertion with enough context to debug it.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    trace.Trace
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v\n", event.Tick, event.Type, event.Fields)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	final := r.Final
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: r.Trace}
	}
	node := func(ref string) (NodeState, error) {
		n, ok := final.Nodes[ref]
		if !ok {
			return NodeState{}, fail(fmt.Sprintf("live node %q", ref), "node not found")
		}
		return n, nil
	}

	switch a.Type {
	case AssertMode:
		if final.Mode != a.Mode {
			return fail(a.Mode, final.Mode)
		}

	case AssertSelection:
		want := a.Nodes
		if want == nil {
			want = []string{}
		}
		if !slices.Equal(final.Selection, want) {
			return fail(fmt.Sprint(want), fmt.Sprint(final.Selection))
		}

	case AssertConnected:
		n, err := node(a.Target)
		if err != nil {
			return err
		}
		if a.Slot < 0 || a.Slot >= len(n.Inputs) {
			return fail(fmt.Sprintf("slot %d", a.Slot), fmt.Sprintf("%d slots", len(n.Inputs)))
		}
		if got := n.Inputs[a.Slot]; got != a.Source {
			return fail(fmt.Sprintf("%s[%d] <- %q", a.Target, a.Slot, a.Source), fmt.Sprintf("%q", got))
		}

	case AssertDisplay:
		n, err := node(a.Node)
		if err != nil {
			return err
		}
		if n.Display != a.Display {
			return fail(a.Display, n.Display)
		}

	case AssertEnabled:
		n, err := node(a.Node)
		if err != nil {
			return err
		}
		if n.Enabled != *a.Enabled {
			return fail(fmt.Sprint(*a.Enabled), fmt.Sprint(n.Enabled))
		}

	case AssertBounds:
		n, err := node(a.Node)
		if err != nil {
			return err
		}
		want := image.Rect(a.Bounds[0], a.Bounds[1], a.Bounds[2], a.Bounds[3])
		if n.Bounds != want {
			return fail(want.String(), n.Bounds.String())
		}

	case AssertContainer:
		c := a.Container
		want := image.Rect(c[0], c[1], c[0]+c[2], c[1]+c[3])
		if final.Container != want {
			return fail(want.String(), final.Container.String())
		}

	case AssertNodeCount:
		if len(final.Nodes) != a.Count {
			return fail(fmt.Sprint(a.Count), fmt.Sprint(len(final.Nodes)))
		}

	case AssertOutputCalls:
		got := final.Outputs[a.Node]
		if !slices.Equal(got, a.Values) {
			return fail(fmt.Sprint(a.Values), fmt.Sprint(got))
		}

	case AssertTraceContains:
		for _, e := range r.Trace {
			if e.Type == a.Event && matchFields(e.Fields, a.Fields) {
				return nil
			}
		}
		return fail(fmt.Sprintf("%s event with %v", a.Event, a.Fields), "not found in trace")

	case AssertTraceCount:
		n := 0
		for _, e := range r.Trace {
			if e.Type == a.Event && matchFields(e.Fields, a.Fields) {
				n++
			}
		}
		if n != a.Count {
			return fail(fmt.Sprintf("%d %s events", a.Count, a.Event), fmt.Sprintf("%d", n))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// matchFields reports whether every expected field is present in got with an
// equal value. YAML numbers arrive as int and lists as []any, so values are
// compared in a normalized form.
func matchFields(got trace.Object, expected map[string]any) bool {
	for k, want := range expected {
		have, ok := got[k]
		if !ok || !reflect.DeepEqual(normalize(have), normalize(want)) {
			return false
		}
	}
	return true
}

func normalize(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case uint64:
		return int64(val)
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []bool:
		out := make([]any, len(val))
		for i, b := range val {
			out[i] = b
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
