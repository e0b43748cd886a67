package pending

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/testutil"
)

func stagedExpense(id, owner string, issued time.Time) action.Staged {
	return action.Staged{
		ID:    id,
		Owner: owner,
		Payload: action.ExpensePayload{
			Amount:      decimal.NewFromInt(1200),
			Description: "electricity bill",
			Category:    "Electricity",
		},
		Locale:     "en",
		IssuedAt:   issued,
		SourceText: "paid 1200 for electricity",
	}
}

func newTestMemoryStore(t *testing.T) (*MemoryStore, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(time.Time{})
	return NewMemoryStore(5*time.Minute, WithClock(clock)), clock
}

func TestMemoryStore_PutGetTake(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemoryStore(t)

	st := stagedExpense("a-1", "shop-1", clock.Now())
	require.NoError(t, s.Put(ctx, st))

	got, found, err := s.Get(ctx, "a-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, action.AddExpense, got.Kind())

	taken, err := s.Take(ctx, "a-1", "shop-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", taken.ID)

	_, err = s.Take(ctx, "a-1", "shop-1")
	assert.ErrorIs(t, err, ErrNotFound, "second take finds nothing")

	_, found, err = s.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_PutRejectsLiveDuplicate(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemoryStore(t)

	require.NoError(t, s.Put(ctx, stagedExpense("a-1", "shop-1", clock.Now())))
	err := s.Put(ctx, stagedExpense("a-1", "shop-2", clock.Now()))
	assert.ErrorIs(t, err, ErrDuplicateID)

	// Once expired the id may be reused.
	clock.Advance(5 * time.Minute)
	assert.NoError(t, s.Put(ctx, stagedExpense("a-1", "shop-2", clock.Now())))
}

func TestMemoryStore_TakeWrongOwnerKeepsEntry(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemoryStore(t)
	require.NoError(t, s.Put(ctx, stagedExpense("a-1", "shop-1", clock.Now())))

	_, err := s.Take(ctx, "a-1", "intruder")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.True(t, IsForbidden(err))

	taken, err := s.Take(ctx, "a-1", "shop-1")
	require.NoError(t, err, "rightful owner can still resolve")
	assert.Equal(t, "shop-1", taken.Owner)
}

func TestMemoryStore_ExpiredIsNotFound(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemoryStore(t)
	require.NoError(t, s.Put(ctx, stagedExpense("a-1", "shop-1", clock.Now())))

	clock.Advance(4*time.Minute + 59*time.Second)
	_, found, _ := s.Get(ctx, "a-1")
	assert.True(t, found)

	clock.Advance(time.Second)
	_, found, _ = s.Get(ctx, "a-1")
	assert.False(t, found, "unresolvable at exactly T+TTL")

	_, err := s.Take(ctx, "a-1", "shop-1")
	assert.True(t, IsNotFound(err))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_ExpiredWrongOwnerIsNotFound(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemoryStore(t)
	require.NoError(t, s.Put(ctx, stagedExpense("a-1", "shop-1", clock.Now())))
	clock.Advance(10 * time.Minute)

	_, err := s.Take(ctx, "a-1", "intruder")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemoryStore(t)

	require.NoError(t, s.Put(ctx, stagedExpense("old", "shop-1", clock.Now())))
	clock.Advance(3 * time.Minute)
	require.NoError(t, s.Put(ctx, stagedExpense("new", "shop-1", clock.Now())))
	clock.Advance(2 * time.Minute)

	removed, err := s.Sweep(ctx, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, found, _ := s.Get(ctx, "new")
	assert.True(t, found)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemoryStore(t)
	require.NoError(t, s.Put(ctx, stagedExpense("a-1", "shop-1", clock.Now())))

	require.NoError(t, s.Delete(ctx, "a-1"))
	require.NoError(t, s.Delete(ctx, "a-1"))
	_, err := s.Take(ctx, "a-1", "shop-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Concurrent takes of one id: exactly one wins.
func TestMemoryStore_ConcurrentTakeSingleWinner(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestMemoryStore(t)
	require.NoError(t, s.Put(ctx, stagedExpense("a-1", "shop-1", clock.Now())))

	const workers = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, misses := 0, 0

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.Take(ctx, "a-1", "shop-1")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if IsNotFound(err) {
				misses++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, misses)
}

func TestNewMemoryStore_DefaultTTL(t *testing.T) {
	s := NewMemoryStore(0)
	assert.Equal(t, DefaultTTL, s.TTL())
}
