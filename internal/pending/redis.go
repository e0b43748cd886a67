package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/roach88/tally/internal/action"
)

// DefaultRedisPrefix namespaces pending-action keys.
const DefaultRedisPrefix = "tally:pending"

// redisPutScript stages an entry only if the key is free.
// KEYS[1] = entry key
// ARGV[1] = owner
// ARGV[2] = CBOR body
// ARGV[3] = ttl in milliseconds
// ARGV[4] = issued-at, unix milliseconds
var redisPutScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
    return 0
end
redis.call("HSET", KEYS[1], "owner", ARGV[1], "body", ARGV[2], "issued_at", ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`)

// redisTakeScript is the atomic take: drop if expired, compare owner,
// read body, delete. Expiry is checked before ownership so an expired
// entry reads as absent to everyone.
// KEYS[1] = entry key
// ARGV[1] = owner presenting the resolve
// ARGV[2] = now, unix milliseconds
// ARGV[3] = ttl in milliseconds
// Returns {0} absent or expired, {2} owner mismatch (entry kept), {1, body} taken.
var redisTakeScript = redis.NewScript(`
local fields = redis.call("HMGET", KEYS[1], "owner", "issued_at")
local owner, issued = fields[1], fields[2]
if not owner then
    return {0}
end
if issued and tonumber(ARGV[2]) - tonumber(issued) >= tonumber(ARGV[3]) then
    redis.call("DEL", KEYS[1])
    return {0}
end
if owner ~= ARGV[1] then
    return {2}
end
local body = redis.call("HGET", KEYS[1], "body")
redis.call("DEL", KEYS[1])
return {1, body}
`)

// RedisStore keeps staged actions in Redis so every replica sees the same
// pending set. Each entry is a hash {owner, body, issued_at} with a native key TTL,
// so Redis evicts stale entries itself and Sweep has nothing to do.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	clock  action.Clock
	enc    cbor.EncMode
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix overrides DefaultRedisPrefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRedisClock replaces the wall clock used for the issued-at age check.
func WithRedisClock(c action.Clock) RedisOption {
	return func(s *RedisStore) {
		s.clock = c
	}
}

// NewRedisStore wraps an existing client. A non-positive ttl selects DefaultTTL.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis pending store: nil client")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("redis pending store: cbor mode: %w", err)
	}
	s := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
		ttl:    ttl,
		clock:  action.SystemClock{},
		enc:    enc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL implements Store.
func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, st action.Staged) error {
	if st.ID == "" {
		return fmt.Errorf("put pending action: empty id")
	}
	body, err := s.enc.Marshal(st.Envelope())
	if err != nil {
		return fmt.Errorf("put pending action %s: encode: %w", st.ID, err)
	}

	ok, err := redisPutScript.Run(ctx, s.client, []string{s.key(st.ID)},
		st.Owner, body, s.ttl.Milliseconds(), st.IssuedAt.UnixMilli()).Int()
	if err != nil {
		return fmt.Errorf("put pending action %s: %w", st.ID, err)
	}
	if ok == 0 {
		return fmt.Errorf("put pending action %s: %w", st.ID, ErrDuplicateID)
	}
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (action.Staged, bool, error) {
	body, err := s.client.HGet(ctx, s.key(id), "body").Bytes()
	if errors.Is(err, redis.Nil) {
		return action.Staged{}, false, nil
	}
	if err != nil {
		return action.Staged{}, false, fmt.Errorf("get pending action %s: %w", id, err)
	}

	st, err := s.decode(body)
	if err != nil {
		return action.Staged{}, false, fmt.Errorf("get pending action %s: %w", id, err)
	}
	if st.Expired(s.clock.Now(), s.ttl) {
		return action.Staged{}, false, nil
	}
	return st, true, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete pending action %s: %w", id, err)
	}
	return nil
}

// Take implements Store.
func (s *RedisStore) Take(ctx context.Context, id, owner string) (action.Staged, error) {
	res, err := redisTakeScript.Run(ctx, s.client, []string{s.key(id)},
		owner, s.clock.Now().UnixMilli(), s.ttl.Milliseconds()).Slice()
	if err != nil {
		return action.Staged{}, fmt.Errorf("take pending action %s: %w", id, err)
	}
	if len(res) == 0 {
		return action.Staged{}, fmt.Errorf("take pending action %s: empty script reply", id)
	}

	status, _ := res[0].(int64)
	switch status {
	case 0:
		return action.Staged{}, ErrNotFound
	case 2:
		return action.Staged{}, ErrForbidden
	}
	if len(res) < 2 {
		return action.Staged{}, fmt.Errorf("take pending action %s: missing body", id)
	}
	body, _ := res[1].(string)

	st, err := s.decode([]byte(body))
	if err != nil {
		return action.Staged{}, fmt.Errorf("take pending action %s: %w", id, err)
	}
	// Redis expiry and the issued-at age can disagree by clock skew; the
	// issued-at age is authoritative.
	if st.Expired(s.clock.Now(), s.ttl) {
		return action.Staged{}, ErrNotFound
	}
	return st, nil
}

// Sweep implements Store. Redis evicts expired keys on its own.
func (s *RedisStore) Sweep(context.Context, time.Duration) (int, error) {
	return 0, nil
}

// Len implements Store by scanning the key prefix.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("count pending actions: %w", err)
	}
	return n, nil
}

func (s *RedisStore) decode(body []byte) (action.Staged, error) {
	var env action.Envelope
	if err := cbor.Unmarshal(body, &env); err != nil {
		return action.Staged{}, fmt.Errorf("decode: %w", err)
	}
	return env.Staged()
}
