package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store remembers processed webhook event IDs in Redis so redelivered
// notifications are dropped before they reach the dispatcher. Entries expire
// after the TTL; a redelivery later than that falls through to the
// reconciler's own guards, which are safe against replays.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Seen records the event ID and reports whether it had been seen before.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, "evt:"+eventID, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
