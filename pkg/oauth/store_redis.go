package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// grantRetention is how long a grant row outlives its own expiry in Redis.
// The store must keep returning expired grants so the exchange step can
// report ErrGrantExpired instead of ErrGrantNotFound; the retention window
// bounds how long that distinction survives before Redis evicts the key.
const grantRetention = time.Hour

// RedisGrantStore implements GrantStore on Redis. Grant consumption uses
// GETDEL, so at most one caller observes a given code.
type RedisGrantStore struct {
	client *redis.Client
	now    func() time.Time
}

var _ GrantStore = (*RedisGrantStore)(nil)

// RedisGrantStoreOption configures a RedisGrantStore during construction.
type RedisGrantStoreOption func(*RedisGrantStore)

// WithGrantStoreClock overrides the clock used to size key TTLs. It must
// be the same clock that stamps Grant.ExpiresAt, or the Redis expiry
// drifts from the grant's own.
func WithGrantStoreClock(now func() time.Time) RedisGrantStoreOption {
	return func(s *RedisGrantStore) {
		s.now = now
	}
}

// NewRedisGrantStore creates a Redis-backed grant store over an existing
// client.
func NewRedisGrantStore(client *redis.Client, opts ...RedisGrantStoreOption) *RedisGrantStore {
	s := &RedisGrantStore{client: client, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func grantKey(clientID, code string) string {
	return fmt.Sprintf("oauth:grant:%s:%s", clientID, code)
}

// grantTTL sizes the Redis expiry from the store's own clock so that test
// clocks and the wall clock never mix.
func (s *RedisGrantStore) grantTTL(expiresAt time.Time) time.Duration {
	return expiresAt.Sub(s.now()) + grantRetention
}

// CreateGrant stores the grant as JSON, replacing any existing grant with
// the same (ClientID, Code).
func (s *RedisGrantStore) CreateGrant(ctx context.Context, grant Grant) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to encode grant: %w", err)
	}

	if err := s.client.Set(ctx, grantKey(grant.ClientID, grant.Code), data, s.grantTTL(grant.ExpiresAt)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// ConsumeGrant atomically removes and returns the grant via GETDEL.
func (s *RedisGrantStore) ConsumeGrant(ctx context.Context, clientID, code string) (*Grant, error) {
	data, err := s.client.GetDel(ctx, grantKey(clientID, code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrGrantNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	var grant Grant
	if err := json.Unmarshal(data, &grant); err != nil {
		return nil, fmt.Errorf("failed to decode grant: %w", err)
	}
	return &grant, nil
}
