package ports

import (
	"context"
	"time"
)

// CatalogCache is the read-through cache consulted before the product store.
// Get reports a miss as (false, nil); entry errors and transport errors are
// returned so callers can decide to degrade to the store.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePattern removes every key matching the glob-style pattern.
	DeletePattern(ctx context.Context, pattern string) error
}
