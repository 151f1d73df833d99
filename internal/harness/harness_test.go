package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioSuspendResume(t *testing.T) {
	RunWithGolden(t, filepath.Join("testdata", "scenarios", "mail-suspend-resume.yaml"))
}

func TestScenarioEvict(t *testing.T) {
	RunWithGolden(t, filepath.Join("testdata", "scenarios", "mail-evict.yaml"))
}

func TestRunReportsExpectationMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tree.cue"), `
state: {
	"app": {}
	"app.a": {}
}
`)
	writeFile(t, filepath.Join(dir, "s.yaml"), `
name: mismatch
tree: tree.cue
steps:
  - goto: app.a
    expect:
      entering: ["app.wrong"]
`)

	scenario, err := LoadScenario(filepath.Join(dir, "s.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "entering mismatch")
}

func TestRunReportsMissingExpectedError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tree.cue"), `
state: {
	"app": {}
	"app.a": {}
}
`)
	writeFile(t, filepath.Join(dir, "s.yaml"), `
name: no-error
tree: tree.cue
steps:
  - goto: app.a
    expect_error: NOT_SUSPENDED
`)

	scenario, err := LoadScenario(filepath.Join(dir, "s.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected error NOT_SUSPENDED, got success")
	assert.Contains(t, result.Trace, "  error: -")
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing name", "tree: t.cue\nsteps:\n  - goto: a\n", "name is required"},
		{"missing tree", "name: x\nsteps:\n  - goto: a\n", "tree is required"},
		{"no steps", "name: x\ntree: t.cue\n", "at least one step is required"},
		{"no driver", "name: x\ntree: t.cue\nsteps:\n  - params: {a: \"1\"}\n", "exactly one of goto, evict, evict_all"},
		{"two drivers", "name: x\ntree: t.cue\nsteps:\n  - goto: a\n    evict_all: true\n", "exactly one of goto, evict, evict_all"},
		{"unknown field", "name: x\ntree: t.cue\nsteps:\n  - goto: a\n    bogus: 1\n", "bogus"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.yaml")
			writeFile(t, path, tc.src)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestTreePathResolution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	writeFile(t, path, "name: x\ntree: ../trees/mail.cue\nsteps:\n  - goto: a\n")

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "..", "trees", "mail.cue"), s.TreePath())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
