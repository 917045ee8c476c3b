package cache

import (
	"context"
	"time"
)

// Store represents the shared decision cache interface. Patterns use "*" as
// the only wildcard, e.g. "access_42_*".
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}
