package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/cobra"

	"github.com/pathhold/pathhold/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	States int                        `json:"states"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <tree.cue>",
		Short: "Validate a state tree declaration",
		Long: `Validate a CUE state tree declaration without running a diff.

Checks syntax, name structure, parent references, and param names.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, err := os.ReadFile(path)
	if err != nil {
		formatter.Error("E001", fmt.Sprintf("cannot read %s: %v", path, err), nil)
		return &ExitError{Code: ExitCommandError, Message: "tree declaration not readable", Err: err}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(path))
	decls, err := compiler.CompileTree(v)
	if err != nil {
		var cerr *compiler.CompileError
		if errors.As(err, &cerr) {
			formatter.Error("E002", cerr.Error(), nil)
		} else {
			formatter.Error("E002", err.Error(), nil)
		}
		return &ExitError{Code: ExitFailure, Message: "compilation failed", Err: err}
	}

	formatter.VerboseLog("compiled %d state declaration(s) from %s", len(decls), path)

	if verrs := compiler.Validate(decls); len(verrs) > 0 {
		if opts.Format == "json" {
			formatter.Success(ValidationResult{Valid: false, States: len(decls), Errors: verrs})
		} else {
			for _, e := range verrs {
				fmt.Fprintln(formatter.Writer, e.Error())
			}
		}
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d validation error(s)", len(verrs))}
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, States: len(decls)})
	}
	return formatter.Success(fmt.Sprintf("ok: %d state(s)", len(decls)))
}
