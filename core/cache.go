package core

import (
	"context"
	"time"
)

// Cache stores rendered artifacts (eg. PDF reports).
// Get returns ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}
