package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/ledger"
)

func TestCatalogAddAndList(t *testing.T) {
	cfg := writeConfig(t, "")
	opts := newTestOptions(t)

	out, _, err := execute(t, opts, "", "--config", cfg, "catalog", "add", "  Toor   Dal ", "--quantity", "40", "--price", "95.5", "--cost", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Toor Dal (40 on hand)")

	out, _, err = execute(t, opts, "", "--config", cfg, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Toor Dal")
	assert.Contains(t, out, "95.50")
	assert.Contains(t, out, "general")
}

func TestCatalogAdd_Duplicate(t *testing.T) {
	cfg := writeConfig(t, "")
	opts := newTestOptions(t)

	_, _, err := execute(t, opts, "", "--config", cfg, "catalog", "add", "Rice")
	require.NoError(t, err)

	out, _, err := execute(t, opts, "", "--config", cfg, "catalog", "add", "rice")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "already in the catalog")
}

func TestCatalogAdd_BadNumber(t *testing.T) {
	cfg := writeConfig(t, "")
	for _, args := range [][]string{
		{"--quantity", "lots"},
		{"--price", "-3"},
	} {
		_, _, err := execute(t, newTestOptions(t), "", append([]string{"--config", cfg, "catalog", "add", "Rice"}, args...)...)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	}
}

func TestCatalogList_OwnersAreSeparate(t *testing.T) {
	cfg := writeConfig(t, "")
	opts := newTestOptions(t)

	_, _, err := execute(t, opts, "", "--config", cfg, "--owner", "shop-1", "catalog", "add", "Rice", "--quantity", "3")
	require.NoError(t, err)

	out, _, err := execute(t, opts, "", "--config", cfg, "--owner", "shop-2", "--format", "json", "catalog", "list")
	require.NoError(t, err)
	var items []ledger.Item
	resp := decodeResponse(t, out, &items)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, items)

	out, _, err = execute(t, opts, "", "--config", cfg, "--owner", "shop-1", "--format", "json", "catalog", "list")
	require.NoError(t, err)
	decodeResponse(t, out, &items)
	require.Len(t, items, 1)
	assert.True(t, items[0].Quantity.Equal(decimal.NewFromInt(3)))
}
