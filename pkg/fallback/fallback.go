package fallback

import (
	"context"
	"log/slog"
)

// ExistenceCache is the slice of the resolution cache the gate relies on:
// the once-true-forever "tenants exist" check and its explicit warmer.
// Implemented by tenantcache.ResolutionCache.
type ExistenceCache interface {
	TenantsExist(ctx context.Context) (bool, error)
	PermanentlyCacheTenantsExist(ctx context.Context) error
}

// SmartFallback gates tenant enforcement. While no tenant has ever been
// created the application behaves as a plain single-tenant install:
// resolution, scoping, and failure policies are all skipped. The first
// time a tenant row is observed the gate flips off, permanently — backed
// by the cache's permanent existence flag, it is never observed active
// again within the process lifetime, even if every tenant row is later
// removed.
type SmartFallback struct {
	cache ExistenceCache
	log   *slog.Logger
}

// Option configures a SmartFallback.
type Option func(*SmartFallback)

// WithLogger sets the logger used when existence checks fail.
func WithLogger(log *slog.Logger) Option {
	return func(f *SmartFallback) {
		if log != nil {
			f.log = log
		}
	}
}

// New creates the gate on top of an existence cache.
func New(cache ExistenceCache, opts ...Option) (*SmartFallback, error) {
	if cache == nil {
		return nil, ErrCacheNil
	}

	f := &SmartFallback{cache: cache, log: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// IsFallback reports whether fallback mode is active. It returns true
// only while the permanent flag is unset and a live check also finds no
// tenants; the cache freezes the flag at true the moment either check
// sees one. Storage errors — typically a tenants table that has not been
// migrated yet — are treated as "no tenants" so a fresh install degrades
// gracefully instead of failing every request.
func (f *SmartFallback) IsFallback(ctx context.Context) bool {
	exists, err := f.cache.TenantsExist(ctx)
	if err != nil {
		f.log.WarnContext(ctx, "tenant existence check failed, assuming fallback mode", "error", err)
		return true
	}
	return !exists
}

// PermanentlyCacheTenantsExist writes the permanent flag explicitly.
// Idempotent. Used by the creation-event listener and the operator
// cache-warming command.
func (f *SmartFallback) PermanentlyCacheTenantsExist(ctx context.Context) error {
	return f.cache.PermanentlyCacheTenantsExist(ctx)
}
