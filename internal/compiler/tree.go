// Package compiler turns CUE state-tree declarations into state.Decl
// values ready for Tree registration.
//
// A declaration file looks like:
//
//	state: {
//		"app":          {}
//		"app.inbox":    { sticky: true, params: ["inboxId"] }
//		"app.compose":  {}
//	}
//
// Dotted names establish parentage; parents must be declared (in any
// order — registration sorts by depth).
package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/pathhold/pathhold/state"
)

// CompileTree parses a CUE value into state declarations.
// The value should contain a top-level "state" struct.
func CompileTree(v cue.Value) ([]state.Decl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	stateVal := v.LookupPath(cue.ParsePath("state"))
	if !stateVal.Exists() {
		return nil, &CompileError{
			Field:   "state",
			Message: "a top-level state struct is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := stateVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []state.Decl
	for iter.Next() {
		decl, err := compileDecl(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	if len(decls) == 0 {
		return nil, &CompileError{
			Field:   "state",
			Message: "at least one state declaration is required",
			Pos:     stateVal.Pos(),
		}
	}
	return decls, nil
}

// compileDecl parses a single state declaration struct.
func compileDecl(name string, v cue.Value) (state.Decl, error) {
	decl := state.Decl{Name: name}

	stickyVal := v.LookupPath(cue.ParsePath("sticky"))
	if stickyVal.Exists() {
		sticky, err := stickyVal.Bool()
		if err != nil {
			return decl, &CompileError{
				Field:   fmt.Sprintf("state.%q.sticky", name),
				Message: "sticky must be a bool",
				Pos:     stickyVal.Pos(),
			}
		}
		decl.Sticky = sticky
	}

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		list, err := paramsVal.List()
		if err != nil {
			return decl, &CompileError{
				Field:   fmt.Sprintf("state.%q.params", name),
				Message: "params must be a list of strings",
				Pos:     paramsVal.Pos(),
			}
		}
		for list.Next() {
			p, err := list.Value().String()
			if err != nil {
				return decl, &CompileError{
					Field:   fmt.Sprintf("state.%q.params", name),
					Message: "params must be a list of strings",
					Pos:     list.Value().Pos(),
				}
			}
			decl.Params = append(decl.Params, p)
		}
	}

	return decl, nil
}

// LoadTreeFile compiles a single CUE file into validated declarations
// and builds the tree.
func LoadTreeFile(path string) (*state.Tree, []state.Decl, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read tree declaration: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(path))
	decls, err := CompileTree(v)
	if err != nil {
		return nil, nil, err
	}

	if verrs := Validate(decls); len(verrs) > 0 {
		return nil, nil, verrs[0]
	}

	tree := state.NewTree()
	if err := tree.RegisterAll(decls); err != nil {
		return nil, nil, fmt.Errorf("register states: %w", err)
	}
	return tree, decls, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
