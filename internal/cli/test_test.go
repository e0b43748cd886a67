package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	harnessScenarios = "../harness/testdata/scenarios"
	harnessGolden    = "../harness/testdata/golden"
)

func TestTestCommand_AllPass(t *testing.T) {
	out, _, err := execute(t, &RootOptions{}, "", "test", harnessScenarios, "--golden", harnessGolden, "--format", "json")
	require.NoError(t, err)

	var result TestResult
	decodeResponse(t, out, &result)
	assert.Equal(t, result.Total, result.Passed)
	assert.Zero(t, result.Failed)
	assert.GreaterOrEqual(t, result.Total, 6)

	golden := make(map[string]string)
	for _, s := range result.Scenarios {
		golden[s.Name] = s.Golden
	}
	assert.Equal(t, "match", golden["expense_confirm"])
	assert.Equal(t, "match", golden["oversell"])
	assert.Equal(t, "missing", golden["inventory_update"])
}

func TestTestCommand_Filter(t *testing.T) {
	out, _, err := execute(t, &RootOptions{}, "", "test", harnessScenarios, "--filter", "01_*", "--format", "json")
	require.NoError(t, err)

	var result TestResult
	decodeResponse(t, out, &result)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "expense_confirm", result.Scenarios[0].Name)
}

func TestTestCommand_Update(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, &RootOptions{}, "", "test", harnessScenarios, "--filter", "02_*", "--golden", dir, "--update")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(dir, "oversell.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(harnessGolden, "oversell.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))
}

func TestTestCommand_GoldenDiffers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oversell.golden"), []byte("{}"), 0o644))

	out, _, err := execute(t, &RootOptions{}, "", "test", harnessScenarios, "--filter", "02_*", "--golden", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace differs")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`
name: bad
description: "expects stock that is not there"
catalog: [{name: Rice, quantity: "3"}]
steps: [{sweep: true}]
assertions: [{type: stock, item: Rice, quantity: "4"}]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	out, _, err := execute(t, &RootOptions{}, "", "test", dir, "--golden", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Rice on hand: 4")
	assert.Contains(t, out, "1 total")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, _, err := execute(t, &RootOptions{}, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_Empty(t *testing.T) {
	out, _, err := execute(t, &RootOptions{}, "", "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
