package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/testutil"
)

const shop = "shop-1"

// createTestStore opens a fresh SQLite database in a temp dir.
func createTestStore(t *testing.T) *SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open("sqlite3", path,
		WithClock(testutil.NewManualClock(testutil.Epoch)),
		WithIDFunc(testutil.NewSequenceGenerator("rec").Next),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func num(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedItem(t *testing.T, s *SQLStore, owner, name, qty, cost, price string) Item {
	t.Helper()
	it, err := s.CreateItem(context.Background(), NewItem{
		Owner:     owner,
		Name:      name,
		Quantity:  num(qty),
		CostPrice: num(cost),
		Price:     num(price),
	})
	require.NoError(t, err)
	return it
}

func stockOf(t *testing.T, s *SQLStore, owner, name string) decimal.Decimal {
	t.Helper()
	it, err := s.FindItem(context.Background(), owner, name)
	require.NoError(t, err)
	return it.Quantity
}
