package graph

// Kind names a node variant. Used by persistence and by frame snapshots.
type Kind string

const (
	KindSource Kind = "source"
	KindOutput Kind = "output"
	KindGate   Kind = "gate"
)

// KindOf returns the variant of n, or "" for foreign implementations.
func KindOf(n Node) Kind {
	switch n.(type) {
	case *SourceNode:
		return KindSource
	case *OutputNode:
		return KindOutput
	case *GateNode:
		return KindGate
	default:
		return ""
	}
}
