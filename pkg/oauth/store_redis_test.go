package oauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRedisGrantStore_GrantTTL(t *testing.T) {
	t.Parallel()

	t.Run("ttl follows the injected clock", func(t *testing.T) {
		t.Parallel()

		// Far in the past relative to the wall clock. If the TTL were
		// computed with time.Until, it would come out negative.
		now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		store := NewRedisGrantStore(nil, WithGrantStoreClock(func() time.Time { return now }))

		ttl := store.grantTTL(now.Add(GrantTTL))
		assert.Equal(t, GrantTTL+grantRetention, ttl)
	})

	t.Run("defaults to the wall clock", func(t *testing.T) {
		t.Parallel()

		store := NewRedisGrantStore(nil)

		ttl := store.grantTTL(time.Now().Add(GrantTTL))
		assert.InDelta(t, GrantTTL+grantRetention, ttl, float64(time.Second))
	})
}
