package cli

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/orchestrator"
)

func TestStageThenResolve_AcrossInvocations(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeConfig(t, mr.Addr())
	opts := newTestOptions(t)

	out, _, err := execute(t, opts, "", "--config", cfg, "--owner", "shop-1", "stage", textExpense)
	require.NoError(t, err)
	assert.Contains(t, out, "Confirm expense:")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "id act-1")
	assert.True(t, mr.Exists("cli-test:act-1"))

	out, _, err = execute(t, opts, "", "--config", cfg, "--owner", "shop-1", "resolve", "act-1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense of 1200.00 recorded under Electricity.")
	assert.False(t, mr.Exists("cli-test:act-1"))

	out, _, err = execute(t, opts, "", "--config", cfg, "--owner", "shop-1", "resolve", "act-1", "--yes")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsQuiet(err))
	assert.Contains(t, out, "There is no pending action to confirm.")
}

func TestResolve_OtherOwnerIsForbidden(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeConfig(t, mr.Addr())
	opts := newTestOptions(t)

	_, _, err := execute(t, opts, "", "--config", cfg, "--owner", "shop-1", "stage", textExpense)
	require.NoError(t, err)

	out, _, err := execute(t, opts, "", "--config", cfg, "--owner", "shop-2", "--format", "json", "resolve", "act-1", "--no")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(orchestrator.OutcomeForbidden), resp.Error.Code)
	assert.True(t, mr.Exists("cli-test:act-1"), "a forbidden resolve leaves the action staged")

	out, _, err = execute(t, opts, "", "--config", cfg, "--owner", "shop-1", "resolve", "act-1", "--no")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled. Nothing was recorded.")
}

func TestStage_NotAnAction(t *testing.T) {
	cfg := writeConfig(t, "")

	out, _, err := execute(t, newTestOptions(t), "", "--config", cfg, "--format", "json", "stage", textQuestion)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsQuiet(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(orchestrator.ReasonNotAnAction), resp.Error.Code)
	assert.Equal(t, "question", resp.Error.Details)
}

func TestStage_JSON(t *testing.T) {
	cfg := writeConfig(t, "")

	out, stderr, err := execute(t, newTestOptions(t), "", "--config", cfg, "--format", "json", "stage", "paid", "1200", "for", "the", "electricity", "bill")
	require.NoError(t, err)

	var data struct {
		Staged  bool   `json:"staged"`
		ID      string `json:"id"`
		Kind    string `json:"kind"`
		Preview string `json:"preview"`
	}
	resp := decodeResponse(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, data.Staged)
	assert.Equal(t, "act-1", data.ID)
	assert.Equal(t, "add_expense", data.Kind)
	assert.Contains(t, data.Preview, "Electricity")
	assert.Contains(t, stderr, "ephemeral_stage", "memory backend warns that the action will not survive")
}

func TestStage_HindiLocale(t *testing.T) {
	cfg := writeConfig(t, "")

	out, _, err := execute(t, newTestOptions(t), "", "--config", cfg, "--locale", "hi", "stage", textExpense)
	require.NoError(t, err)
	assert.Contains(t, out, "खर्च की पुष्टि करें:")
}

func TestResolve_RequiresDecision(t *testing.T) {
	cfg := writeConfig(t, "")
	_, _, err := execute(t, newTestOptions(t), "", "--config", cfg, "resolve", "act-1")
	require.Error(t, err)

	_, _, err = execute(t, newTestOptions(t), "", "--config", cfg, "resolve", "act-1", "--yes", "--no")
	require.Error(t, err)
}

func TestPendingRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeConfig(t, mr.Addr())
	mr.Close()

	_, _, err := execute(t, newTestOptions(t), "", "--config", cfg, "stage", textExpense)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to reach redis")
}
