package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFile(t *testing.T, path string) *Result {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	return res
}

func TestRun_AllScenariosPass(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			res := runFile(t, f)
			assert.True(t, res.Pass, "errors:\n%s", strings.Join(res.Errors, "\n"))
		})
	}
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"01_expense_confirm", "02_oversell"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)

			res, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, res.Pass, "errors:\n%s", strings.Join(res.Errors, "\n"))
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	path := filepath.Join("testdata/scenarios", "06_expiry.yaml")
	a, err := Snapshot("expiry", runFile(t, path))
	require.NoError(t, err)
	b, err := Snapshot("expiry", runFile(t, path))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_ReportsExpectMismatch(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_expectation
description: "expects a question to stage"
steps:
  - stage: "what time is it?"
    expect: {staged: true, kind: add_sale}
assertions:
  - {type: pending_count, count: 1}
`))
	require.NoError(t, err)

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, res.Pass)
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], "staged: expected true, got false")
	assert.Contains(t, res.Errors[1], "kind: expected add_sale")
	assert.Contains(t, res.Errors[2], "Expected: 1")
}

func TestRun_FinalStock(t *testing.T) {
	res := runFile(t, filepath.Join("testdata/scenarios", "03_sale_confirm.yaml"))
	assert.Equal(t, map[string]string{"Rice": "5"}, res.Stock)

	require.Len(t, res.Trace, 2)
	assert.Equal(t, "act-1", res.Trace[1].ID)
	assert.Equal(t, "executed", res.Trace[1].Outcome)
}

func TestRun_StepOwnerOverride(t *testing.T) {
	res := runFile(t, filepath.Join("testdata/scenarios", "07_cancel_and_forbidden.yaml"))
	require.True(t, res.Pass, strings.Join(res.Errors, "\n"))
	assert.Equal(t, "shop-2", res.Trace[1].Owner)
	assert.Equal(t, "forbidden", res.Trace[1].Outcome)
	assert.Empty(t, res.Trace[1].Kind, "a forbidden resolve reveals nothing about the action")
}

func TestRun_BadCatalogSeed(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad_seed
description: "catalog quantity is not a number"
catalog: [{name: Rice, quantity: "lots"}]
steps: [{sweep: true}]
assertions: [{type: pending_count, count: 0}]
`))
	require.NoError(t, err)

	_, err = Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed catalog")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertStock, Expected: "Rice on hand: 5", Actual: "Rice on hand: 3"}
	assert.Equal(t, "Assertion failed: stock\n  Expected: Rice on hand: 5\n  Actual: Rice on hand: 3", err.Error())
}
