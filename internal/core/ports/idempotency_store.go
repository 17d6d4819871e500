package ports

import "context"

// IdempotencyStore remembers which user a create request's Idempotency-Key produced.
type IdempotencyStore interface {
	// Lookup returns the user id recorded for key, or found=false.
	Lookup(ctx context.Context, key string) (userID int64, found bool, err error)
	// Remember records key → userID unless key is already taken.
	Remember(ctx context.Context, key string, userID int64) error
	Ping(ctx context.Context) error
}
