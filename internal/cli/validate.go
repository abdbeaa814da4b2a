package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/logicflow/internal/config"
)

// ValidationResult is the payload of a successful validate.
type ValidationResult struct {
	Valid     bool        `json:"valid"`
	Path      string      `json:"path"`
	Keys      keysView    `json:"keys"`
	UIScale   float64     `json:"ui_scale"`
	Container [4]int      `json:"container"` // x, y, width, height
	Seed      *uint64     `json:"seed,omitempty"`
	Errors    []errorView `json:"errors,omitempty"`
}

type keysView struct {
	SelectTree    string `json:"select_tree"`
	SelectNetwork string `json:"select_network"`
	Disable       string `json:"disable"`
	Delete        string `json:"delete"`
}

type errorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config.cue>",
		Short: "Validate an editor config file",
		Long: `Validate a CUE editor config against the built-in schema.

Reports key bindings, UI scale and the initial container on success, or the
first schema violation with its source position.

Exit codes:
  0 - Config is valid
  1 - Config is invalid
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.VerboseLog("Loading config %s", path)

	cfg, err := config.Load(path)
	if err != nil {
		var loadErr *config.LoadError
		if !errors.As(err, &loadErr) {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		view := errorViewOf(loadErr)
		if err := formatter.Failure(ValidationResult{Path: path, Errors: []errorView{view}}, func(w io.Writer) {
			fmt.Fprintf(w, "✗ %s\n", path)
			fmt.Fprintf(w, "  %s\n", loadErr.Error())
		}); err != nil {
			return err
		}
		if loadErr.Code == config.ErrCodeNotFound {
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		return NewExitError(ExitFailure, "config is invalid")
	}

	c := cfg.Container
	result := ValidationResult{
		Valid: true,
		Path:  path,
		Keys: keysView{
			SelectTree:    cfg.Keys.SelectTree,
			SelectNetwork: cfg.Keys.SelectNetwork,
			Disable:       cfg.Keys.Disable,
			Delete:        cfg.Keys.Delete,
		},
		UIScale:   cfg.UIScale,
		Container: [4]int{c.Min.X, c.Min.Y, c.Dx(), c.Dy()},
	}
	if cfg.HasSeed {
		seed := cfg.Seed
		result.Seed = &seed
	}

	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s\n", path)
		fmt.Fprintf(w, "  keys: select-tree=ctrl+%s select-network=ctrl+%s disable=%s delete=%s\n",
			result.Keys.SelectTree, result.Keys.SelectNetwork, result.Keys.Disable, result.Keys.Delete)
		fmt.Fprintf(w, "  ui scale: %g\n", result.UIScale)
		fmt.Fprintf(w, "  container: %dx%d at (%d,%d)\n", c.Dx(), c.Dy(), c.Min.X, c.Min.Y)
	})
}

func errorViewOf(e *config.LoadError) errorView {
	v := errorView{Code: e.Code, Message: e.Message}
	if e.Pos.IsValid() {
		v.File = e.Pos.Filename()
		v.Line = e.Pos.Line()
		v.Column = e.Pos.Column()
	}
	return v
}
