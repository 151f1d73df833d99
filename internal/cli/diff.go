package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathhold/pathhold/internal/compiler"
	"github.com/pathhold/pathhold/router"
	"github.com/pathhold/pathhold/state"
)

// DiffResult is the JSON payload of the diff command.
type DiffResult struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	Retained     []string `json:"retained"`
	Entering     []string `json:"entering"`
	Exiting      []string `json:"exiting"`
	Inactivating []string `json:"inactivating"`
	Reactivating []string `json:"reactivating"`
	Inactives    []string `json:"inactives"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		treePath   string
		fromState  string
		toState    string
		fromParams []string
		toParams   []string
		reload     string
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compute the sticky diff between two destinations",
		Long: `Compute the sticky tree diff of a transition.

Navigates a fresh router to --from, then to --to, and prints the second
transition's classifications. Sticky states left behind by the second
navigation show up as inactivating.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, cmd, treePath, fromState, toState, fromParams, toParams, reload)
		},
	}

	cmd.Flags().StringVar(&treePath, "tree", "", "CUE state tree declaration (required)")
	cmd.Flags().StringVar(&fromState, "from", "", "source destination state")
	cmd.Flags().StringVar(&toState, "to", "", "target destination state (required)")
	cmd.Flags().StringArrayVar(&fromParams, "from-param", nil, "source param as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&toParams, "param", nil, "target param as key=value (repeatable)")
	cmd.Flags().StringVar(&reload, "reload", "", "state whose subtree is force-rebuilt")
	cmd.MarkFlagRequired("tree")
	cmd.MarkFlagRequired("to")

	return cmd
}

func runDiff(opts *RootOptions, cmd *cobra.Command, treePath, fromState, toState string, fromParams, toParams []string, reload string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	tree, _, err := compiler.LoadTreeFile(treePath)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "tree declaration failed to load", Err: err}
	}

	rtr := router.New(tree, router.WithTokenGenerator(router.NewFixedGenerator("diff")))
	ctx := cmd.Context()

	if fromState != "" {
		params, err := parseParams(fromParams)
		if err != nil {
			formatter.Error("E003", err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: "bad --from-param", Err: err}
		}
		if _, err := rtr.Navigate(ctx, fromState, params); err != nil {
			formatter.Error("E004", err.Error(), nil)
			return &ExitError{Code: ExitFailure, Message: "navigation to --from failed", Err: err}
		}
	}

	params, err := parseParams(toParams)
	if err != nil {
		formatter.Error("E003", err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: "bad --param", Err: err}
	}

	var txOpts []router.TransitionOption
	if reload != "" {
		s, ok := tree.Lookup(reload)
		if !ok {
			formatter.Error("E004", fmt.Sprintf("unknown reload state %q", reload), nil)
			return &ExitError{Code: ExitCommandError, Message: "unknown reload state"}
		}
		txOpts = append(txOpts, router.WithReload(s))
	}

	tx, err := rtr.Navigate(ctx, toState, params, txOpts...)
	if err != nil {
		formatter.Error("E004", err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: "navigation to --to failed", Err: err}
	}

	ch := tx.Changes()
	result := DiffResult{
		From:         tx.From().String(),
		To:           tx.To().String(),
		Retained:     ch.Retained.Strings(),
		Entering:     ch.Entering.Strings(),
		Exiting:      ch.Exiting.Strings(),
		Inactivating: ch.Inactivating.Strings(),
		Reactivating: ch.Reactivating.Strings(),
		Inactives:    stateNames(rtr.Inactives()),
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "from: %s\n", orDash(result.From))
	fmt.Fprintf(w, "to: %s\n", orDash(result.To))
	fmt.Fprintf(w, "retained: %s\n", joinOrDash(result.Retained))
	fmt.Fprintf(w, "entering: %s\n", joinOrDash(result.Entering))
	fmt.Fprintf(w, "exiting: %s\n", joinOrDash(result.Exiting))
	fmt.Fprintf(w, "inactivating: %s\n", joinOrDash(result.Inactivating))
	fmt.Fprintf(w, "reactivating: %s\n", joinOrDash(result.Reactivating))
	fmt.Fprintf(w, "inactives: %s\n", joinOrDash(result.Inactives))
	return nil
}

// parseParams converts key=value flags into Params.
func parseParams(pairs []string) (state.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := state.Params{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q: expected key=value", p)
		}
		params[k] = v
	}
	return params, nil
}

func stateNames(states []*state.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.Name()
	}
	return out
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
