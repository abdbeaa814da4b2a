package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"

	"github.com/roach88/logicflow/internal/graph"
)

// Snapshot describes a saved session.
type Snapshot struct {
	ID        string
	Name      string
	Seq       int64
	Container image.Rectangle
	Nodes     int
}

type nodeRow struct {
	id      graph.NodeID
	kind    graph.Kind
	op      string
	label   string
	enabled bool
	cached  bool
	value   bool
	bounds  image.Rectangle
}

type inputRow struct {
	target graph.NodeID
	slot   int
	source graph.NodeID
}

// Save writes every live node of store and its connected inputs as a new
// snapshot named name, in one transaction. Inputs that reference removed
// nodes are dropped; they evaluate as unset either way.
func (w *Workspace) Save(ctx context.Context, name string, store *graph.Store, container image.Rectangle) (string, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots`).Scan(&seq); err != nil {
		return "", fmt.Errorf("save snapshot: next seq: %w", err)
	}

	id := w.ids.Generate()
	c := container.Canon()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, seq, container_x, container_y, container_w, container_h)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, name, seq, c.Min.X, c.Min.Y, c.Dx(), c.Dy())
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}

	for pos, n := range store.All() {
		row, err := rowOf(n)
		if err != nil {
			return "", fmt.Errorf("save snapshot: %w", err)
		}
		b := row.bounds
		_, err = tx.ExecContext(ctx, `
			INSERT INTO nodes
			(snapshot_id, node_id, position, kind, op, label, enabled, cached, value, min_x, min_y, max_x, max_y)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, int64(row.id), pos, string(row.kind), row.op, row.label,
			row.enabled, row.cached, row.value, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
		if err != nil {
			return "", fmt.Errorf("save snapshot: node %d: %w", row.id, err)
		}

		for slot, ref := range n.Inputs() {
			if !ref.Valid || !store.Contains(ref.Source) {
				continue
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO inputs (snapshot_id, node_id, slot, source_id)
				VALUES (?, ?, ?, ?)
			`, id, int64(row.id), slot, int64(ref.Source))
			if err != nil {
				return "", fmt.Errorf("save snapshot: node %d slot %d: %w", row.id, slot, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save snapshot: commit: %w", err)
	}
	return id, nil
}

func rowOf(n graph.Node) (nodeRow, error) {
	row := nodeRow{
		id:      n.ID(),
		kind:    graph.KindOf(n),
		label:   n.Label(),
		enabled: n.Enabled(),
		bounds:  n.Bounds(),
	}
	switch v := n.(type) {
	case *graph.SourceNode:
		row.value = v.Raw()
	case *graph.OutputNode:
		row.cached = v.Cached()
	case *graph.GateNode:
		row.op = v.Op()
	default:
		return nodeRow{}, fmt.Errorf("node %d: unsupported node type %T", n.ID(), n)
	}
	return row, nil
}

// Load rebuilds the snapshot id into a fresh store. Nodes are restored with
// their saved ids in saved order; edges are restored through Connect, so a
// corrupted snapshot that encodes a cycle fails with a graph.CycleError.
func (w *Workspace) Load(ctx context.Context, id string, b Binder) (*graph.Store, image.Rectangle, error) {
	snap, err := w.snapshot(ctx, w.db, id)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	nodes, err := w.nodeRows(ctx, id)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	inputs, err := w.inputRows(ctx, id)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}

	store := graph.NewStore(w.keys())
	for _, row := range nodes {
		n, err := row.build(b)
		if err != nil {
			return nil, image.Rectangle{}, fmt.Errorf("load snapshot %s: node %d: %w", id, row.id, err)
		}
		if _, err := store.InsertWithID(row.id, n); err != nil {
			return nil, image.Rectangle{}, fmt.Errorf("load snapshot %s: %w", id, err)
		}
	}
	for _, in := range inputs {
		if err := store.Connect(in.target, in.slot, in.source); err != nil {
			return nil, image.Rectangle{}, fmt.Errorf("load snapshot %s: %w", id, err)
		}
	}
	return store, snap.Container, nil
}

func (row nodeRow) build(b Binder) (graph.Node, error) {
	opts := []graph.NodeOption{graph.WithBounds(row.bounds)}
	if !row.enabled {
		opts = append(opts, graph.Disabled())
	}
	switch row.kind {
	case graph.KindSource:
		return graph.NewSource(row.label, row.value, opts...), nil
	case graph.KindOutput:
		out := b.Output(row.id, row.label)
		if row.cached {
			return graph.NewCachedOutput(row.label, out, opts...), nil
		}
		return graph.NewOutput(row.label, out, opts...), nil
	case graph.KindGate:
		gate, err := b.Gate(row.op)
		if err != nil {
			return nil, err
		}
		return graph.NewGate(row.label, gate, opts...), nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", row.kind)
	}
}

func (w *Workspace) nodeRows(ctx context.Context, id string) ([]nodeRow, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT node_id, kind, op, label, enabled, cached, value, min_x, min_y, max_x, max_y
		FROM nodes
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var out []nodeRow
	for rows.Next() {
		var (
			row                    nodeRow
			nodeID                 int64
			kind                   string
			minX, minY, maxX, maxY int
		)
		if err := rows.Scan(&nodeID, &kind, &row.op, &row.label, &row.enabled, &row.cached, &row.value,
			&minX, &minY, &maxX, &maxY); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		row.id = graph.NodeID(nodeID)
		row.kind = graph.Kind(kind)
		row.bounds = image.Rect(minX, minY, maxX, maxY)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (w *Workspace) inputRows(ctx context.Context, id string) ([]inputRow, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT i.node_id, i.slot, i.source_id
		FROM inputs i
		JOIN nodes n ON n.snapshot_id = i.snapshot_id AND n.node_id = i.node_id
		WHERE i.snapshot_id = ?
		ORDER BY n.position ASC, i.slot ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query inputs: %w", err)
	}
	defer rows.Close()

	var out []inputRow
	for rows.Next() {
		var target, source int64
		var in inputRow
		if err := rows.Scan(&target, &in.slot, &source); err != nil {
			return nil, fmt.Errorf("scan input: %w", err)
		}
		in.target, in.source = graph.NodeID(target), graph.NodeID(source)
		out = append(out, in)
	}
	return out, rows.Err()
}

const snapshotColumns = `
	s.id, s.name, s.seq, s.container_x, s.container_y, s.container_w, s.container_h,
	(SELECT COUNT(*) FROM nodes n WHERE n.snapshot_id = s.id)
`

func scanSnapshot(scan func(dest ...any) error) (Snapshot, error) {
	var (
		s          Snapshot
		x, y, w, h int
	)
	if err := scan(&s.ID, &s.Name, &s.Seq, &x, &y, &w, &h, &s.Nodes); err != nil {
		return Snapshot{}, err
	}
	s.Container = image.Rect(x, y, x+w, y+h)
	return s, nil
}

func (w *Workspace) snapshot(ctx context.Context, q queryer, id string) (Snapshot, error) {
	row := q.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots s WHERE s.id = ?`, id)
	s, err := scanSnapshot(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("query snapshot %s: %w", id, err)
	}
	return s, nil
}

// List returns every snapshot ordered by seq, then id.
func (w *Workspace) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots s
		ORDER BY s.seq ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Resolve finds a snapshot by exact id, or else the latest one with the
// given name.
func (w *Workspace) Resolve(ctx context.Context, ref string) (Snapshot, error) {
	s, err := w.snapshot(ctx, w.db, ref)
	if err == nil || !errors.Is(err, ErrSnapshotNotFound) {
		return s, err
	}

	row := w.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots s
		WHERE s.name = ?
		ORDER BY s.seq DESC, s.id DESC
		LIMIT 1
	`, ref)
	s, err = scanSnapshot(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, ref)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("resolve snapshot %s: %w", ref, err)
	}
	return s, nil
}

// Delete removes a snapshot and its rows.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	res, err := w.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return nil
}
