package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathhold/pathhold/internal/journal"
	"github.com/pathhold/pathhold/router"
)

// ReplayResult is the JSON payload of the replay command.
type ReplayResult struct {
	Transitions []router.Record `json:"transitions"`
	Count       int             `json:"count"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <journal.db>",
		Short: "Print the committed transitions from a journal",
		Long: `Read a transition journal written by a router and print every
committed transition in sequence order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command, path string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); err != nil {
		formatter.Error("E020", fmt.Sprintf("journal not found: %s", path), nil)
		return &ExitError{Code: ExitCommandError, Message: "journal not found", Err: err}
	}

	store, err := journal.Open(path)
	if err != nil {
		formatter.Error("E021", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "journal failed to open", Err: err}
	}
	defer store.Close()

	records, err := store.ReadAll(cmd.Context())
	if err != nil {
		formatter.Error("E022", err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: "journal read failed", Err: err}
	}

	if opts.Format == "json" {
		return formatter.Success(ReplayResult{Transitions: records, Count: len(records)})
	}

	w := formatter.Writer
	for _, rec := range records {
		fmt.Fprintf(w, "seq %d %s\n", rec.Seq, rec.Token)
		fmt.Fprintf(w, "  from: %s\n", orDash(rec.From))
		fmt.Fprintf(w, "  to: %s\n", orDash(rec.To))
		fmt.Fprintf(w, "  retained: %s\n", joinOrDash(rec.Retained))
		fmt.Fprintf(w, "  entering: %s\n", joinOrDash(rec.Entering))
		fmt.Fprintf(w, "  exiting: %s\n", joinOrDash(rec.Exiting))
		fmt.Fprintf(w, "  inactivating: %s\n", joinOrDash(rec.Inactivating))
		fmt.Fprintf(w, "  reactivating: %s\n", joinOrDash(rec.Reactivating))
	}
	fmt.Fprintf(w, "%d transition(s)\n", len(records))
	return nil
}
