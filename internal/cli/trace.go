package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathhold/pathhold/internal/harness"
)

// TraceResult is the JSON payload of the trace command.
type TraceResult struct {
	Scenario string   `json:"scenario"`
	Pass     bool     `json:"pass"`
	Trace    []string `json:"trace"`
	Errors   []string `json:"errors,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <scenario.yaml>",
		Short: "Run a navigation scenario and print its trace",
		Long: `Run a YAML navigation scenario against a fresh router and print the
step-by-step classification trace. Exits non-zero when an expectation
in the scenario fails.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runTrace(opts *RootOptions, cmd *cobra.Command, path string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		formatter.Error("E010", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "scenario failed to load", Err: err}
	}

	formatter.VerboseLog("running scenario %s (%d steps)", scenario.Name, len(scenario.Steps))

	result, err := harness.Run(scenario)
	if err != nil {
		formatter.Error("E011", err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: "scenario execution failed", Err: err}
	}

	if opts.Format == "json" {
		if err := formatter.Success(TraceResult{
			Scenario: scenario.Name,
			Pass:     result.Pass,
			Trace:    result.Trace,
			Errors:   result.Errors,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprint(formatter.Writer, result.TraceText())
		for _, msg := range result.Errors {
			fmt.Fprintf(formatter.Writer, "FAIL: %s\n", msg)
		}
	}

	if !result.Pass {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d expectation(s) failed", len(result.Errors))}
	}
	return nil
}
