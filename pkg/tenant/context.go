package tenant

import (
	"context"
	"log/slog"
)

// Context holds the current tenant for a single unit of work (an HTTP
// request, a queued job execution, a CLI invocation). At most one tenant
// is current at any time.
//
// A Context belongs to exactly one unit of work and must not be shared
// across concurrent units. Each inbound request or job execution gets its
// own instance, so no locking is performed.
type Context struct {
	current *Tenant
}

// NewContext returns an empty tenant context for a fresh unit of work.
func NewContext() *Context {
	return &Context{}
}

// Set makes t the current tenant.
func (c *Context) Set(t *Tenant) {
	c.current = t
}

// Get returns the current tenant, or nil if none is set.
func (c *Context) Get() *Tenant {
	return c.current
}

// ID returns the current tenant's id. The second return value is false
// when no tenant is set.
func (c *Context) ID() (int64, bool) {
	if c.current == nil {
		return 0, false
	}
	return c.current.ID, true
}

// Has reports whether a tenant is currently set.
func (c *Context) Has() bool {
	return c.current != nil
}

// Clear removes the current tenant.
func (c *Context) Clear() {
	c.current = nil
}

// Check returns the current tenant or ErrTenantNotResolved if none is set.
func (c *Context) Check() (*Tenant, error) {
	if c.current == nil {
		return nil, ErrTenantNotResolved
	}
	return c.current, nil
}

// RunWith invokes fn with t as the current tenant, then restores whatever
// tenant was current before the call. Restoration happens on every exit
// path, including panics, so arbitrarily nested RunWith/RunWithout calls
// always unwind to the exact prior state.
func (c *Context) RunWith(t *Tenant, fn func() error) error {
	prev := c.current
	c.current = t
	defer func() { c.current = prev }()
	return fn()
}

// RunWithout invokes fn with no current tenant, then restores the prior
// tenant on every exit path.
func (c *Context) RunWithout(fn func() error) error {
	prev := c.current
	c.current = nil
	defer func() { c.current = prev }()
	return fn()
}

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithContext attaches a tenant context cell to ctx. The orchestrator
// driving a unit of work installs one cell at the boundary; downstream
// readers go through Current, CurrentID, and Require.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the tenant context cell from ctx.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok
}

// Current returns the tenant of the current unit of work, if any.
func Current(ctx context.Context) (*Tenant, bool) {
	tc, ok := FromContext(ctx)
	if !ok || tc.current == nil {
		return nil, false
	}
	return tc.current, true
}

// CurrentID provides fast access to the current tenant's id without
// exposing the full record.
func CurrentID(ctx context.Context) (int64, bool) {
	t, ok := Current(ctx)
	if !ok {
		return 0, false
	}
	return t.ID, true
}

// Require returns the current tenant or ErrTenantNotResolved. Use in code
// paths that must not run without a tenant.
func Require(ctx context.Context) (*Tenant, error) {
	t, ok := Current(ctx)
	if !ok {
		return nil, ErrTenantNotResolved
	}
	return t, nil
}

// RunWith executes fn with t as the current tenant, creating a fresh cell
// when ctx does not carry one yet. The context passed to fn always carries
// the cell; the prior tenant is restored when fn returns or panics.
func RunWith(ctx context.Context, t *Tenant, fn func(ctx context.Context) error) error {
	tc, ok := FromContext(ctx)
	if !ok {
		tc = NewContext()
		ctx = WithContext(ctx, tc)
	}
	return tc.RunWith(t, func() error { return fn(ctx) })
}

// RunWithout executes fn with no current tenant, restoring the prior
// tenant afterwards.
func RunWithout(ctx context.Context, fn func(ctx context.Context) error) error {
	tc, ok := FromContext(ctx)
	if !ok {
		tc = NewContext()
		ctx = WithContext(ctx, tc)
	}
	return tc.RunWithout(func() error { return fn(ctx) })
}

// LoggerExtractor returns a function that enriches log records with the
// current tenant id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := CurrentID(ctx); ok {
			return slog.Int64("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}
