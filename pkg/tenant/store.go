package tenant

import "context"

// Store persists tenant records. Lookups that feed request resolution
// (FindByDomain, FindBySlug) exclude soft-deleted tenants; FindByID
// returns suspended tenants as well so that lifecycle operations can
// inspect them.
//
// Implementations must enforce the primary-tenant invariant: Delete on
// PrimaryTenantID returns ErrPrimaryTenantProtected.
type Store interface {
	Create(ctx context.Context, t *Tenant) error
	Update(ctx context.Context, t *Tenant) error

	FindByID(ctx context.Context, id int64) (*Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)

	// Exists reports whether at least one tenant row exists, including
	// soft-deleted rows.
	Exists(ctx context.Context) (bool, error)
	// ExistsByID reports whether a tenant row with the given id exists,
	// including soft-deleted rows.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// Suspend soft-deletes the tenant; Reactivate clears the marker.
	Suspend(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64) error

	// Delete permanently removes the tenant row. Fails with
	// ErrPrimaryTenantProtected for the primary tenant.
	Delete(ctx context.Context, id int64) error
}
