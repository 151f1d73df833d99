// Package harness runs navigation scenarios against a real router and
// compares the resulting trace against golden files. Scenarios are
// YAML; trees are CUE declarations compiled by internal/compiler.
package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pathhold/pathhold/internal/compiler"
	"github.com/pathhold/pathhold/router"
	"github.com/pathhold/pathhold/state"
	"github.com/pathhold/pathhold/sticky"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool

	// Trace is the deterministic line-based execution trace, used for
	// golden comparison.
	Trace []string

	// Errors lists expectation mismatches. Empty when Pass is true.
	Errors []string
}

// AddError records a mismatch and fails the result.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// TraceText returns the trace as one newline-terminated string.
func (r *Result) TraceText() string {
	return strings.Join(r.Trace, "\n") + "\n"
}

// Run executes a scenario against a fresh router.
//
// Each run compiles the scenario's tree, creates a router with a fixed
// token generator, and replays the steps in order. The trace records
// every step's classifications and the registry snapshot after it, so
// two runs of the same scenario are byte-identical.
func Run(scenario *Scenario) (*Result, error) {
	tree, _, err := compiler.LoadTreeFile(scenario.TreePath())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	rtr := router.New(tree, router.WithTokenGenerator(router.NewFixedGenerator("tx")))
	ctx := context.Background()

	result := &Result{Pass: true}
	result.Trace = append(result.Trace, "scenario "+scenario.Name)

	for i, step := range scenario.Steps {
		result.Trace = append(result.Trace, fmt.Sprintf("step %d: %s", i+1, stepLabel(step)))

		tx, err := runStep(ctx, rtr, step)

		if step.ExpectError != "" {
			code := evictCode(err)
			if code == "" {
				result.AddError("step %d: expected error %s, got success", i+1, step.ExpectError)
				result.Trace = append(result.Trace, "  error: -")
			} else {
				if code != step.ExpectError {
					result.AddError("step %d: expected error %s, got %s", i+1, step.ExpectError, code)
				}
				result.Trace = append(result.Trace, "  error: "+code)
			}
		} else if err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", scenario.Name, i+1, err)
		} else if tx != nil {
			ch := tx.Changes()
			result.Trace = append(result.Trace,
				"  retained: "+renderList(ch.Retained.Strings()),
				"  entering: "+renderList(ch.Entering.Strings()),
				"  exiting: "+renderList(ch.Exiting.Strings()),
				"  inactivating: "+renderList(ch.Inactivating.Strings()),
				"  reactivating: "+renderList(ch.Reactivating.Strings()),
			)
		}

		result.Trace = append(result.Trace, "  inactives: "+renderList(stateNames(rtr.Inactives())))

		if step.Expect != nil {
			checkExpect(result, i+1, step, tx, rtr)
		}
	}

	return result, nil
}

func runStep(ctx context.Context, rtr *router.Router, step Step) (*router.Transition, error) {
	switch {
	case step.Goto != "":
		var opts []router.TransitionOption
		if step.Reload != "" {
			s, ok := rtr.Tree().Lookup(step.Reload)
			if !ok {
				return nil, fmt.Errorf("reload: unknown state %q", step.Reload)
			}
			opts = append(opts, router.WithReload(s))
		}
		if len(step.ExitSticky) > 0 {
			opts = append(opts, router.WithExitSticky(step.ExitSticky...))
		}
		tx, err := rtr.Navigate(ctx, step.Goto, state.Params(step.Params), opts...)
		return tx, err
	case step.EvictAll:
		return rtr.RequestEviction(ctx)
	default:
		return rtr.RequestEviction(ctx, step.Evict...)
	}
}

func checkExpect(result *Result, stepNo int, step Step, tx *router.Transition, rtr *router.Router) {
	check := func(field string, want *[]string, got []string) {
		if want == nil {
			return
		}
		if !equalLists(*want, got) {
			result.AddError("step %d: %s mismatch: want [%s], got [%s]",
				stepNo, field, strings.Join(*want, ", "), strings.Join(got, ", "))
		}
	}

	if tx != nil {
		ch := tx.Changes()
		check("retained", step.Expect.Retained, ch.Retained.Strings())
		check("entering", step.Expect.Entering, ch.Entering.Strings())
		check("exiting", step.Expect.Exiting, ch.Exiting.Strings())
		check("inactivating", step.Expect.Inactivating, ch.Inactivating.Strings())
		check("reactivating", step.Expect.Reactivating, ch.Reactivating.Strings())
	}
	check("inactives", step.Expect.Inactives, stateNames(rtr.Inactives()))
}

// stepLabel renders one step header deterministically.
func stepLabel(step Step) string {
	switch {
	case step.Goto != "":
		label := "goto " + step.Goto
		if len(step.Params) > 0 {
			keys := make([]string, 0, len(step.Params))
			for k := range step.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, len(keys))
			for i, k := range keys {
				pairs[i] = k + "=" + step.Params[k]
			}
			label += " (" + strings.Join(pairs, ",") + ")"
		}
		if step.Reload != "" {
			label += " reload " + step.Reload
		}
		if len(step.ExitSticky) > 0 {
			label += " exit-sticky " + strings.Join(step.ExitSticky, ",")
		}
		return label
	case step.EvictAll:
		return "evict all"
	default:
		return "evict " + strings.Join(step.Evict, ", ")
	}
}

func evictCode(err error) string {
	var ee *sticky.EvictError
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	return ""
}

func renderList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func stateNames(states []*state.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.Name()
	}
	return out
}

func equalLists(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
