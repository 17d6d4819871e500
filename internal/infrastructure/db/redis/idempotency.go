package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userhub/user-service/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	idempotencyKeyPrefix  = "idempotency:user-create:"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore maps a create request's Idempotency-Key to the user it produced.
// Key format: idempotency:user-create:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency value %q: %w", val, err)
	}
	return id, true, nil
}

// Remember stores the mapping only if the key is unused, so the first create wins.
func (s *IdempotencyStore) Remember(ctx context.Context, key string, userID int64) error {
	if err := s.client.SetNX(ctx, idempotencyKey(key), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func idempotencyKey(key string) string {
	return idempotencyKeyPrefix + key
}
