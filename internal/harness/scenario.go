package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a navigation test scenario: a state tree plus a
// sequence of transitions with expected classifications.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Tree is the path to the CUE state-tree declaration, relative to
	// the scenario file.
	Tree string `yaml:"tree"`

	// Steps is the transition sequence.
	Steps []Step `yaml:"steps"`

	// dir is the scenario file's directory, for resolving Tree.
	dir string
}

// Step is one transition in a scenario. Exactly one of Goto / Evict /
// EvictAll drives the step.
type Step struct {
	// Goto navigates to the named destination state.
	Goto string `yaml:"goto,omitempty"`

	// Params supplies values for params declared along the path.
	Params map[string]string `yaml:"params,omitempty"`

	// Reload names a state whose subtree is force-rebuilt.
	Reload string `yaml:"reload,omitempty"`

	// ExitSticky names suspended states to force-evict during Goto.
	ExitSticky []string `yaml:"exit_sticky,omitempty"`

	// Evict runs an eviction-only transition for the named states.
	Evict []string `yaml:"evict,omitempty"`

	// EvictAll runs an eviction-only transition for every suspended
	// state.
	EvictAll bool `yaml:"evict_all,omitempty"`

	// ExpectError is the eviction error code the step must fail with
	// (e.g. "NOT_SUSPENDED"). The step's transition must not commit.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Expect asserts on the committed classifications. Nil skips
	// assertion; the trace still records the step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists rendered path nodes per classification, plus the
// registry snapshot after commit. Nil slices assert emptiness only
// when the field is present in YAML; absent fields are not asserted.
type Expect struct {
	Retained     *[]string `yaml:"retained,omitempty"`
	Entering     *[]string `yaml:"entering,omitempty"`
	Exiting      *[]string `yaml:"exiting,omitempty"`
	Inactivating *[]string `yaml:"inactivating,omitempty"`
	Reactivating *[]string `yaml:"reactivating,omitempty"`

	// Inactives asserts the suspended state names after the step.
	Inactives *[]string `yaml:"inactives,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Tree == "" {
		return nil, fmt.Errorf("scenario %s: tree is required", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one step is required", path)
	}
	for i, st := range s.Steps {
		drivers := 0
		if st.Goto != "" {
			drivers++
		}
		if len(st.Evict) > 0 {
			drivers++
		}
		if st.EvictAll {
			drivers++
		}
		if drivers != 1 {
			return nil, fmt.Errorf("scenario %s: step %d must set exactly one of goto, evict, evict_all", path, i+1)
		}
	}

	s.dir = filepath.Dir(path)
	return &s, nil
}

// TreePath returns the tree declaration path resolved against the
// scenario file location.
func (s *Scenario) TreePath() string {
	if filepath.IsAbs(s.Tree) {
		return s.Tree
	}
	return filepath.Join(s.dir, s.Tree)
}
