package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/logicflow/internal/harness"
	"github.com/roach88/logicflow/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Quiet bool // omit the trace from text output
}

// RunResult is the payload of the run command.
type RunResult struct {
	Name   string         `json:"name"`
	Pass   bool           `json:"pass"`
	Errors []string       `json:"errors,omitempty"`
	Events int            `json:"events"`
	Digest string         `json:"digest"`
	Trace  []trace.Object `json:"trace"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay one interaction scenario",
		Long: `Replay a scripted interaction scenario against a fresh editor.

Builds the scenario's graph, feeds its events one tick at a time, prints the
canonical trace with its digest and checks the assertions.

Example:
  logicflow run ./scenarios/connect_and_light.yaml
  logicflow run ./scenarios/reject_cycle.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioCommand(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print only the verdict and digest")

	return cmd
}

func runScenarioCommand(opts *RunOptions, path string, cmd *cobra.Command) error {
	configureLogging(cmd.ErrOrStderr(), opts.Verbose, slog.LevelWarn)
	formatter := newFormatter(opts.RootOptions, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Running scenario %s (%d steps)", scenario.Name, len(scenario.Steps))

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}

	data, err := result.Trace.Marshal()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode trace", err)
	}
	digest, err := result.Trace.Digest()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest trace", err)
	}

	out := RunResult{
		Name:   scenario.Name,
		Pass:   result.Pass,
		Errors: result.Errors,
		Events: len(result.Trace),
		Digest: digest,
		Trace:  make([]trace.Object, len(result.Trace)),
	}
	for i, ev := range result.Trace {
		out.Trace[i] = ev.Object()
	}

	text := func(w io.Writer) {
		if !opts.Quiet {
			w.Write(data)
		}
		mark := "✓"
		if !result.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (%d events)\n", mark, scenario.Name, len(result.Trace))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		fmt.Fprintf(w, "digest: %s\n", digest)
	}

	if !result.Pass {
		if err := formatter.Failure(out, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return formatter.Success(out, text)
}
