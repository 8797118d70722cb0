package tenant

import "errors"

var (
	// ErrTenantNotFound is returned by stores when no tenant matches the
	// given identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantNotResolved is returned by Context.Check and Require when
	// code demands a tenant but none is set in the current unit of work.
	ErrTenantNotResolved = errors.New("no tenant is currently set in context")

	// ErrPrimaryTenantProtected is returned when deletion of the primary
	// tenant is attempted. The primary tenant can never be deleted.
	ErrPrimaryTenantProtected = errors.New("primary tenant cannot be deleted")

	// ErrTenantExists is returned when a slug or domain is already taken
	// by another tenant.
	ErrTenantExists = errors.New("tenant with this slug or domain already exists")

	// ErrNameRequired is returned when creating a tenant without a name.
	ErrNameRequired = errors.New("tenant name is required")

	// ErrStoreNil is returned when constructing a service without a store.
	ErrStoreNil = errors.New("tenant store is nil")
)
