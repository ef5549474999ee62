package repository

import (
	"context"
	"time"

	"bendigotelco/connecthub/internal/model"
)

// NegativeTTL bounds how long a confirmed "not found" can mask a customer
// created afterwards. Deliberately short and not configurable.
const NegativeTTL = 300 * time.Second

// CacheStore is the customer cache keyed by normalized phone number.
// Implementations: Redis (production) or in-memory (local dev / tests).
//
// Expiry is lazy: entries carry a logical TTL and expired rows simply stop
// being returned; nothing sweeps them. Per-key operations are atomic but
// there is no cross-key transaction, so a read-then-write lookup can race
// an invalidation; the staleness window is bounded by the entry TTL.
type CacheStore interface {
	// Get returns the entry for key, or nil when the key is absent or the
	// entry has logically expired.
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	// PutPositive overwrites key with the customer and the configured TTL.
	PutPositive(ctx context.Context, key string, customer *model.Customer, ttl time.Duration) error
	// PutNegative overwrites key with a "not found" marker lasting NegativeTTL.
	PutNegative(ctx context.Context, key string) error
	// DeleteByKey removes the entry. Deleting an absent key is not an error.
	DeleteByKey(ctx context.Context, key string) error
	// FindByCustomerID returns the keys of live entries holding the given
	// customer. Served from the customer-id index when possible, falling
	// back to a full scan; the scan is O(table size) and only acceptable
	// while the cache stays small.
	FindByCustomerID(ctx context.Context, customerID string) ([]string, error)
}
