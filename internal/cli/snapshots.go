package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/workspace"
)

// SnapshotsOptions holds flags for the snapshots commands.
type SnapshotsOptions struct {
	*RootOptions
	Database string
}

// SnapshotView is one snapshot in command output.
type SnapshotView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seq       int64  `json:"seq"`
	Nodes     int    `json:"nodes"`
	Container [4]int `json:"container"` // x, y, width, height
}

// NodeView is one stored node in `snapshots show` output.
type NodeView struct {
	ID      graph.NodeID `json:"id"`
	Kind    graph.Kind   `json:"kind"`
	Label   string       `json:"label"`
	Enabled bool         `json:"enabled"`
	Bounds  [4]int       `json:"bounds"`
	Inputs  []*int64     `json:"inputs"`
}

// NewSnapshotsCommand creates the snapshots command group.
func NewSnapshotsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect and prune workspace snapshots",
		Long: `List, show and delete the editor snapshots stored in a workspace.

Example:
  logicflow snapshots list --db ./logicflow.db
  logicflow snapshots show demo --db ./logicflow.db
  logicflow snapshots delete 0192f0c4-... --db ./logicflow.db`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite workspace (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List snapshots oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(opts, func(ws *workspace.Workspace) error {
				return listSnapshots(cmd.Context(), ws, newFormatter(opts.RootOptions, cmd))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show <id|name>",
		Short:         "Show the nodes of a snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(opts, func(ws *workspace.Workspace) error {
				return showSnapshot(cmd.Context(), ws, args[0], newFormatter(opts.RootOptions, cmd))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(opts, func(ws *workspace.Workspace) error {
				return deleteSnapshot(cmd.Context(), ws, args[0], newFormatter(opts.RootOptions, cmd))
			})
		},
	})

	return cmd
}

func withWorkspace(opts *SnapshotsOptions, fn func(*workspace.Workspace) error) error {
	ws, err := workspace.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open workspace", err)
	}
	defer ws.Close()
	return fn(ws)
}

func snapshotView(s workspace.Snapshot) SnapshotView {
	c := s.Container
	return SnapshotView{
		ID:        s.ID,
		Name:      s.Name,
		Seq:       s.Seq,
		Nodes:     s.Nodes,
		Container: [4]int{c.Min.X, c.Min.Y, c.Dx(), c.Dy()},
	}
}

func listSnapshots(ctx context.Context, ws *workspace.Workspace, f *OutputFormatter) error {
	snaps, err := ws.List(orBackground(ctx))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list snapshots", err)
	}
	views := make([]SnapshotView, len(snaps))
	for i, s := range snaps {
		views[i] = snapshotView(s)
	}

	return f.Success(views, func(w io.Writer) {
		if len(views) == 0 {
			fmt.Fprintln(w, "No snapshots.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tID\tNAME\tNODES")
		for _, v := range views {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", v.Seq, v.ID, v.Name, v.Nodes)
		}
		tw.Flush()
	})
}

func showSnapshot(ctx context.Context, ws *workspace.Workspace, ref string, f *OutputFormatter) error {
	ctx = orBackground(ctx)
	snap, err := ws.Resolve(ctx, ref)
	if errors.Is(err, workspace.ErrSnapshotNotFound) {
		return WrapExitError(ExitFailure, "snapshot not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve snapshot", err)
	}
	store, _, err := ws.Load(ctx, snap.ID, workspace.StandardBinder())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}

	nodes := make([]NodeView, 0, store.Len())
	for _, n := range store.All() {
		b := n.Bounds()
		v := NodeView{
			ID:      n.ID(),
			Kind:    graph.KindOf(n),
			Label:   n.Label(),
			Enabled: n.Enabled(),
			Bounds:  [4]int{b.Min.X, b.Min.Y, b.Dx(), b.Dy()},
			Inputs:  make([]*int64, 0, len(n.Inputs())),
		}
		for _, in := range n.Inputs() {
			if !in.Valid {
				v.Inputs = append(v.Inputs, nil)
				continue
			}
			src := int64(in.Source)
			v.Inputs = append(v.Inputs, &src)
		}
		nodes = append(nodes, v)
	}

	data := struct {
		Snapshot SnapshotView `json:"snapshot"`
		Nodes    []NodeView   `json:"nodes"`
	}{snapshotView(snap), nodes}

	return f.Success(data, func(w io.Writer) {
		fmt.Fprintf(w, "%s  %s  (seq %d)\n", snap.ID, snap.Name, snap.Seq)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tKIND\tLABEL\tENABLED\tINPUTS")
		for _, v := range nodes {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", v.ID, v.Kind, v.Label, v.Enabled, formatInputs(v.Inputs))
		}
		tw.Flush()
	})
}

func formatInputs(inputs []*int64) string {
	if len(inputs) == 0 {
		return "-"
	}
	s := ""
	for i, in := range inputs {
		if i > 0 {
			s += ","
		}
		if in == nil {
			s += "_"
		} else {
			s += fmt.Sprint(*in)
		}
	}
	return s
}

func deleteSnapshot(ctx context.Context, ws *workspace.Workspace, id string, f *OutputFormatter) error {
	err := ws.Delete(orBackground(ctx), id)
	if errors.Is(err, workspace.ErrSnapshotNotFound) {
		return WrapExitError(ExitFailure, "snapshot not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to delete snapshot", err)
	}
	return f.Success(map[string]string{"deleted": id}, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted %s\n", id)
	})
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
