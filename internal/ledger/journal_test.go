package ledger

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/testutil"
)

func stagedExpense(id, owner string, at time.Time) action.Staged {
	return action.Staged{
		ID:    id,
		Owner: owner,
		Payload: action.ExpensePayload{
			Amount:      num("1200"),
			Description: "electricity bill",
			Category:    "utilities",
		},
		Locale:     "en",
		IssuedAt:   at,
		SourceText: "paid 1200 for the electricity bill",
		Confidence: 0.9,
	}
}

func TestJournal_StagedThenResolved(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	st := stagedExpense("act-1", shop, testutil.Epoch)
	require.NoError(t, s.RecordStaged(ctx, st))

	entries, err := s.ListJournal(ctx, shop, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Resolved())
	assert.Equal(t, "act-1", entries[0].Action.ID)
	assert.Equal(t, action.AddExpense, entries[0].Action.Kind())
	assert.Equal(t, st.SourceText, entries[0].Action.SourceText)

	p, ok := entries[0].Action.Payload.(action.ExpensePayload)
	require.True(t, ok)
	assert.True(t, p.Amount.Equal(num("1200")))

	require.NoError(t, s.RecordResolution(ctx, "act-1", "executed", ""))
	entries, err = s.ListJournal(ctx, shop, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Resolved())
	assert.Equal(t, "executed", entries[0].Outcome)
	assert.True(t, testutil.Epoch.Equal(entries[0].ResolvedAt))
}

func TestJournal_WritesAreIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	st := stagedExpense("act-1", shop, testutil.Epoch)
	require.NoError(t, s.RecordStaged(ctx, st))
	require.NoError(t, s.RecordStaged(ctx, st))

	require.NoError(t, s.RecordResolution(ctx, "act-1", "failed", "INSUFFICIENT_STOCK"))
	require.NoError(t, s.RecordResolution(ctx, "act-1", "executed", ""))

	entries, err := s.ListJournal(ctx, shop, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Outcome)
	assert.Equal(t, "INSUFFICIENT_STOCK", entries[0].Code)
}

func TestJournal_NewestFirstScopedToOwner(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"act-1", "act-2", "act-3"} {
		at := testutil.Epoch.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.RecordStaged(ctx, stagedExpense(id, shop, at)))
	}
	require.NoError(t, s.RecordStaged(ctx, stagedExpense("other-1", "shop-2", testutil.Epoch)))

	entries, err := s.ListJournal(ctx, shop, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "act-3", entries[0].Action.ID)
	assert.Equal(t, "act-1", entries[2].Action.ID)

	limited, err := s.ListJournal(ctx, shop, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "act-3", limited[0].Action.ID)
	assert.Equal(t, "act-2", limited[1].Action.ID)

	other, err := s.ListJournal(ctx, "shop-2", 0)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "other-1", other[0].Action.ID)
}

func TestJournal_PostgresPlaceholders(t *testing.T) {
	s, mock := newMockStore(t)
	st := stagedExpense("act-1", shop, testutil.Epoch)

	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5, $6, $7, $8)")).
		WithArgs("act-1", shop, "add_expense", "en", st.SourceText, 0.9, sqlmock.AnyArg(), testutil.Epoch.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resolutions (action_id, outcome, code, resolved_at)")).
		WithArgs("act-1", "cancelled", "", testutil.Epoch.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.RecordStaged(context.Background(), st))
	require.NoError(t, s.RecordResolution(context.Background(), "act-1", "cancelled", ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}
