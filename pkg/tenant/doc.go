// Package tenant provides the core identity model for single-database
// multi-tenancy: the tenant record, the per-unit-of-work tenant context,
// the persistence interface, lifecycle management, and lifecycle events.
//
// # Tenant context
//
// Each unit of work (HTTP request, queued job, CLI run) owns exactly one
// Context cell, installed into the request context by the resolution
// middleware and read through accessor functions:
//
//	if t, ok := tenant.Current(ctx); ok {
//		// t is the current tenant
//	}
//
//	t, err := tenant.Require(ctx) // ErrTenantNotResolved when unset
//
// RunWith and RunWithout scope a tenant change to a function call and
// restore the prior state on every exit path, including panics:
//
//	err := tenant.RunWith(ctx, other, func(ctx context.Context) error {
//		return doWork(ctx) // other is current here
//	})
//	// the previous tenant is current again
//
// # Lifecycle
//
// Service implements create, suspend (soft delete), reactivate, and hard
// delete. The primary tenant (id 1) can never be hard-deleted. Every
// transition publishes an Event on the configured Bus; the fallback
// package subscribes to EventCreated to permanently cache that tenants
// exist.
package tenant
