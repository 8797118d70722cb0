package tenantcache

import "errors"

var (
	// ErrStoreNil is returned when constructing a cache without a store.
	ErrStoreNil = errors.New("tenant store is nil")

	// ErrBulkInvalidationUnsupported is the sentinel a backend returns
	// from DeleteByPrefix when it advertises the capability but cannot
	// honor it for the current configuration. Callers fall back to
	// clearing the well-known keys.
	ErrBulkInvalidationUnsupported = errors.New("cache backend does not support bulk invalidation")
)
