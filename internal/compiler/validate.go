package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pathhold/pathhold/state"
)

// Validation error codes (E100-E199)
const (
	ErrDeclNameEmpty    = "E101" // state name is empty
	ErrDeclBadName      = "E102" // name is not a dotted identifier
	ErrDuplicateDecl    = "E103" // duplicate state name
	ErrUnknownParentRef = "E104" // dotted prefix not declared
	ErrDuplicateParam   = "E105" // duplicate param name on one state
	ErrBadParamName     = "E106" // param is not an identifier
)

// segmentPattern matches one dotted-name segment or a param name.
var segmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidationError represents a declaration validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a declaration set for consistency.
// Returns all errors found (does not fail-fast).
func Validate(decls []state.Decl) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(decls))
	for _, d := range decls {
		names[d.Name] = true
	}

	for i, d := range decls {
		field := fmt.Sprintf("state[%d]", i)
		if d.Name != "" {
			field = fmt.Sprintf("state.%q", d.Name)
		}

		if strings.TrimSpace(d.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "state name must be non-empty",
				Code:    ErrDeclNameEmpty,
			})
			continue
		}

		for _, seg := range strings.Split(d.Name, ".") {
			if !segmentPattern.MatchString(seg) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("invalid name segment %q", seg),
					Code:    ErrDeclBadName,
				})
			}
		}

		if j := strings.LastIndex(d.Name, "."); j >= 0 && !names[d.Name[:j]] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("parent %q is not declared", d.Name[:j]),
				Code:    ErrUnknownParentRef,
			})
		}

		seen := make(map[string]bool, len(d.Params))
		for _, p := range d.Params {
			if !segmentPattern.MatchString(p) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("invalid param name %q", p),
					Code:    ErrBadParamName,
				})
			}
			if seen[p] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("duplicate param %q", p),
					Code:    ErrDuplicateParam,
				})
			}
			seen[p] = true
		}
	}

	// Duplicate names across the set.
	counted := make(map[string]int, len(decls))
	for _, d := range decls {
		counted[d.Name]++
	}
	for _, d := range decls {
		if counted[d.Name] > 1 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("state.%q", d.Name),
				Message: "duplicate state name",
				Code:    ErrDuplicateDecl,
			})
			counted[d.Name] = 0 // report once
		}
	}

	return errs
}
