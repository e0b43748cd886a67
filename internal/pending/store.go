package pending

import (
	"context"
	"errors"
	"time"

	"github.com/roach88/tally/internal/action"
)

// DefaultTTL is how long a staged action stays resolvable.
const DefaultTTL = 5 * time.Minute

// DefaultSweepInterval is how often the Sweeper scans for stale entries.
const DefaultSweepInterval = time.Minute

var (
	// ErrNotFound means nothing is pending under the id: never staged,
	// already resolved, or expired.
	ErrNotFound = errors.New("no pending action")

	// ErrForbidden means the id exists but belongs to another owner.
	// The entry is left in place.
	ErrForbidden = errors.New("pending action belongs to another owner")

	// ErrDuplicateID means Put was called with an id that is still live.
	ErrDuplicateID = errors.New("pending action id already in use")
)

// Store is a keyed, TTL-bounded holding area for staged actions.
type Store interface {
	// Put stages a new action. Fails with ErrDuplicateID if the id is live.
	Put(ctx context.Context, s action.Staged) error

	// Get peeks at an entry without consuming it. Absent or expired
	// entries report found=false and no error.
	Get(ctx context.Context, id string) (s action.Staged, found bool, err error)

	// Delete removes an entry. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Take atomically removes and returns the entry if owner matches.
	// Returns ErrNotFound for absent/expired ids and ErrForbidden, without
	// removing anything, when owner does not match.
	Take(ctx context.Context, id, owner string) (action.Staged, error)

	// Sweep removes entries at least maxAge old and reports how many.
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)

	// Len reports the number of live entries.
	Len(ctx context.Context) (int, error)

	// TTL reports how long entries stay resolvable.
	TTL() time.Duration
}

// IsNotFound reports whether err means "nothing pending".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden reports whether err is an owner mismatch.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
