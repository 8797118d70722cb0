package resolution

import "errors"

var (
	// ErrTenantUnresolved is the failure raised under PolicyException
	// when no tenant resolves for a request.
	ErrTenantUnresolved = errors.New("could not resolve tenant from request")

	// ErrTenantSuspended is passed to the error handler when resolution
	// matched a suspended tenant under SuspendedBlock.
	ErrTenantSuspended = errors.New("tenant is suspended")

	// ErrUnknownStrategy is returned for strategy names outside
	// domain/subdomain.
	ErrUnknownStrategy = errors.New("unknown resolution strategy")

	// ErrInvalidPolicy is returned for unrecognized failure policies.
	ErrInvalidPolicy = errors.New("invalid failure handling policy")

	// ErrCacheNil is returned when constructing the middleware without a cache.
	ErrCacheNil = errors.New("resolution cache is nil")

	// ErrGateNil is returned when constructing the middleware without the
	// smart-fallback gate.
	ErrGateNil = errors.New("fallback gate is nil")
)
