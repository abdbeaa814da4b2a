package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/logicflow/internal/config"
	"github.com/roach88/logicflow/internal/engine"
	"github.com/roach88/logicflow/internal/graph"
	"github.com/roach88/logicflow/internal/metrics"
	"github.com/roach88/logicflow/internal/server"
	"github.com/roach88/logicflow/internal/tui"
	"github.com/roach88/logicflow/internal/workspace"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Config   string
	Database string
	Snapshot string
	Name     string
	Listen   string
	LogFile  string
	Tick     time.Duration
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the terminal editor",
		Long: `Open a graph in the terminal editor.

Drag from an output port to an input slot to connect, right-click a slot to
clear it, drag the header to move the canvas and the corner grip to resize it.
With --db, ctrl+s saves a snapshot and --snapshot reopens one by id or name.
With --listen, a read-only HTTP server exposes /healthz, /metrics and
/api/frame while the editor runs.

Example:
  logicflow edit
  logicflow edit --db ./logicflow.db --snapshot demo --config ./editor.cue
  logicflow edit --listen :9090 --log-file ./logicflow.log`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to a CUE editor config")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to a SQLite workspace")
	cmd.Flags().StringVar(&opts.Snapshot, "snapshot", "", "snapshot id or name to open (requires --db)")
	cmd.Flags().StringVar(&opts.Name, "name", "session", "name for saved snapshots")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "address for the read-only HTTP server")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "write logs to this file instead of discarding them")
	cmd.Flags().DurationVar(&opts.Tick, "tick", 500*time.Millisecond, "background sweep interval")

	return cmd
}

// session is everything edit wires together before the terminal starts.
type session struct {
	editor   *engine.Editor
	ws       *workspace.Workspace
	registry *metrics.Registry
	name     string
}

func (s *session) Close() error {
	if s.ws == nil {
		return nil
	}
	return s.ws.Close()
}

func runEdit(opts *EditOptions, cmd *cobra.Command) error {
	logOut := io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		defer f.Close()
		logOut = f
	}
	configureLogging(logOut, opts.Verbose, slog.LevelInfo)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}

	sess, err := openSession(ctx, opts, engine.WithStepHandler(tui.StepBridge(send)))
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Error("error closing workspace", "error", err)
		}
	}()

	if opts.Listen != "" {
		srv := server.New(opts.Listen, sess.editor, server.WithMetrics(sess.registry.Handler()))
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				slog.Error("server stopped", "error", err)
			}
		}()
	}

	modelOpts := []tui.ModelOption{
		tui.WithContext(ctx),
		tui.WithTick(opts.Tick),
		tui.WithQueuedInput(),
	}
	if sess.ws != nil {
		modelOpts = append(modelOpts, tui.WithSaver(sess.ws, sess.name))
	}

	program = tea.NewProgram(
		tui.New(sess.editor, modelOpts...),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	loopDone := make(chan error, 1)
	go func() { loopDone <- sess.editor.Run(ctx) }()

	slog.Info("editor started", "nodes", len(sess.editor.Frame().Nodes), "listen", opts.Listen)
	_, runErr := program.Run()

	sess.editor.Stop()
	cancel()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("editor loop failed", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return WrapExitError(ExitFailure, "terminal editor failed", runErr)
	}
	slog.Info("editor stopped")
	return nil
}

// openSession loads config, opens the workspace and builds the editor over
// either a stored snapshot or the starter graph.
func openSession(ctx context.Context, opts *EditOptions, extra ...engine.Option) (*session, error) {
	cfg := config.Default()
	if opts.Config != "" {
		c, err := config.Load(opts.Config)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = c
	}
	if opts.Snapshot != "" && opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "--snapshot requires --db")
	}

	keys := keyAllocator(cfg)
	icfg := cfg.Interaction()
	sess := &session{registry: metrics.NewRegistry(), name: opts.Name}

	var store *graph.Store
	if opts.Database != "" {
		ws, err := workspace.Open(opts.Database, workspace.WithKeys(func() graph.KeyAllocator { return keys }))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open workspace", err)
		}
		sess.ws = ws
	}

	if opts.Snapshot != "" {
		snap, err := sess.ws.Resolve(ctx, opts.Snapshot)
		if err != nil {
			sess.Close()
			return nil, WrapExitError(ExitCommandError, "failed to find snapshot", err)
		}
		st, container, err := sess.ws.Load(ctx, snap.ID, loggingBinder())
		if err != nil {
			sess.Close()
			return nil, WrapExitError(ExitCommandError, "failed to load snapshot", err)
		}
		store, icfg.Container = st, container
		if opts.Name == "session" {
			sess.name = snap.Name
		}
		slog.Info("snapshot loaded", "id", snap.ID, "name", snap.Name, "nodes", st.Len())
	} else {
		st, err := starterGraph(keys)
		if err != nil {
			sess.Close()
			return nil, fmt.Errorf("build starter graph: %w", err)
		}
		store = st
	}

	engineOpts := append([]engine.Option{engine.WithRecorder(sess.registry)}, extra...)
	sess.editor = engine.New(store, icfg, engineOpts...)
	return sess, nil
}

// keyAllocator draws node ids from the configured seed, or from the wall
// clock when none is set.
func keyAllocator(cfg config.Config) graph.KeyAllocator {
	seed := uint64(time.Now().UnixNano())
	if cfg.HasSeed {
		seed = cfg.Seed
	}
	return graph.NewRandomKeys(seed)
}

// logOutput reports output changes through the default logger.
func logOutput(label string) graph.Output {
	return graph.OutputFunc(func(value bool) {
		slog.Info("output", "node", label, "value", value)
	})
}

func loggingBinder() workspace.TableBinder {
	return workspace.TableBinder{
		Gates: graph.StandardGates(),
		Outputs: func(_ graph.NodeID, label string) graph.Output {
			return logOutput(label)
		},
	}
}

// starterGraph is two sources feeding an AND and an XOR gate, each driving
// a cached output.
func starterGraph(keys graph.KeyAllocator) (*graph.Store, error) {
	gates := graph.StandardGates()
	and, err := gates.Lookup("and")
	if err != nil {
		return nil, err
	}
	xor, err := gates.Lookup("xor")
	if err != nil {
		return nil, err
	}

	s := graph.NewStore(keys)
	a := s.Insert(graph.NewSource("A", false, graph.WithBounds(image.Rect(2, 2, 10, 5))))
	b := s.Insert(graph.NewSource("B", false, graph.WithBounds(image.Rect(2, 10, 10, 13))))
	g1 := s.Insert(graph.NewGate("AND", and, graph.WithBounds(image.Rect(22, 2, 30, 5))))
	g2 := s.Insert(graph.NewGate("XOR", xor, graph.WithBounds(image.Rect(22, 10, 30, 13))))
	o1 := s.Insert(graph.NewCachedOutput("and", logOutput("and"), graph.WithBounds(image.Rect(44, 2, 52, 5))))
	o2 := s.Insert(graph.NewCachedOutput("xor", logOutput("xor"), graph.WithBounds(image.Rect(44, 10, 52, 13))))

	for _, c := range []struct {
		target graph.NodeID
		slot   int
		source graph.NodeID
	}{
		{g1, 0, a}, {g1, 1, b},
		{g2, 0, a}, {g2, 1, b},
		{o1, 0, g1}, {o2, 0, g2},
	} {
		if err := s.Connect(c.target, c.slot, c.source); err != nil {
			return nil, err
		}
	}
	return s, nil
}
