package tenantscope

import "errors"

var (
	// ErrGateNil is returned when constructing a scope without the
	// fallback gate.
	ErrGateNil = errors.New("fallback gate is nil")

	// ErrNoCurrentTenant is returned when inserting tenant-owned rows
	// while no tenant is current and no bypass is in effect.
	ErrNoCurrentTenant = errors.New("no current tenant for scoped insert")
)
