package tenantcache

import (
	"context"
	"time"
)

// Backend is the cache store used for tenant resolution entries. Values
// are opaque bytes; the resolution cache handles serialization. The
// backend is responsible for the atomicity of individual operations.
type Backend interface {
	// Get returns the value for key. The second return value is false on
	// a miss or an expired entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetForever stores the value with no expiry. Used for the
	// once-true-forever existence flags.
	SetForever(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// BulkInvalidator is an optional Backend capability: dropping every key
// under a prefix in one call. Callers check for it with a type assertion
// and fall back to deleting the small fixed set of well-known keys when
// the backend does not provide it.
type BulkInvalidator interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}
