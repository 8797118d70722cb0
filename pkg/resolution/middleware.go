package resolution

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// Gate is the smart-fallback check consulted before any tenant logic.
// Implemented by fallback.SmartFallback.
type Gate interface {
	IsFallback(ctx context.Context) bool
}

// Store is the direct lookup used for the development forced-tenant
// override, which deliberately bypasses the cache.
type Store interface {
	FindByDomain(ctx context.Context, domain string) (*tenant.Tenant, error)
}

// ErrorHandler renders resolution failures (exception policy, blocked
// suspended tenants).
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware orchestrates per-request tenant resolution. For every
// request, in strict order: the smart-fallback gate, the non-production
// forced override, the configured resolver chain, the primary-tenant
// fallback, and finally the configured unresolved-tenant policy. Each
// step can short-circuit the rest, and exactly one terminal action runs
// per request.
type Middleware struct {
	cfg          Config
	gate         Gate
	cache        Cache
	chain        []Resolver
	store        Store
	bus          tenant.Bus
	log          *slog.Logger
	errorHandler ErrorHandler
	suspended    http.Handler
}

// Option configures the middleware.
type Option func(*Middleware)

// WithStore enables the forced-tenant development override by providing
// a cache-bypassing store lookup.
func WithStore(store Store) Option {
	return func(m *Middleware) {
		m.store = store
	}
}

// WithBus sets the event bus used for "resolved" notifications.
func WithBus(bus tenant.Bus) Option {
	return func(m *Middleware) {
		if bus != nil {
			m.bus = bus
		}
	}
}

// WithLogger sets the middleware logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Middleware) {
		if log != nil {
			m.log = log
		}
	}
}

// WithErrorHandler overrides the default failure rendering.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(m *Middleware) {
		if handler != nil {
			m.errorHandler = handler
		}
	}
}

// WithSuspendedPage sets the handler served under SuspendedPage policy.
func WithSuspendedPage(h http.Handler) Option {
	return func(m *Middleware) {
		m.suspended = h
	}
}

// WithResolvers replaces the configuration-built resolver chain.
func WithResolvers(chain ...Resolver) Option {
	return func(m *Middleware) {
		m.chain = chain
	}
}

// New builds the resolution middleware from configuration. The resolver
// chain is derived from cfg.Strategies unless WithResolvers overrides it.
func New(cfg Config, gate Gate, cache Cache, opts ...Option) (*Middleware, error) {
	if gate == nil {
		return nil, ErrGateNil
	}
	if cache == nil {
		return nil, ErrCacheNil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chain, err := NewChain(cache, cfg)
	if err != nil {
		return nil, err
	}

	m := &Middleware{
		cfg:          cfg,
		gate:         gate,
		cache:        cache,
		chain:        chain,
		bus:          tenant.NopBus{},
		log:          slog.Default(),
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Handler wraps next with per-request tenant resolution. Every request
// gets a fresh tenant context cell, so concurrent requests never share
// mutable state.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Fresh install that has never seen a tenant: skip all tenant
		// logic and dispatch as a single-tenant app.
		if m.gate.IsFallback(ctx) {
			next.ServeHTTP(w, r)
			return
		}

		tc := tenant.NewContext()
		ctx = tenant.WithContext(ctx, tc)
		r = r.WithContext(ctx)

		// Development override, never consulted in production. Resolved
		// straight from the store so a stale cache cannot mask it.
		if !m.cfg.Production() && m.cfg.ForceTenant != "" && m.store != nil {
			forced, err := m.store.FindByDomain(ctx, m.cfg.ForceTenant)
			if err != nil && !errors.Is(err, tenant.ErrTenantNotFound) {
				m.log.WarnContext(ctx, "forced tenant lookup failed", "domain", m.cfg.ForceTenant, "error", err)
			}
			if forced != nil {
				m.dispatchResolved(w, r, next, tc, forced, true)
				return
			}
		}

		// Resolver chain: first match wins.
		for _, resolver := range m.chain {
			matched, err := resolver.Resolve(ctx, r)
			if err != nil {
				m.log.WarnContext(ctx, "resolver failed", "error", err)
				continue
			}
			if matched == nil {
				continue
			}

			if matched.Suspended() {
				m.handleSuspended(w, r, matched)
				return
			}
			m.dispatchResolved(w, r, next, tc, matched, true)
			return
		}

		// Silent fallback to the primary tenant. The existence flag is
		// permanently cached, so this costs one cache read.
		if exists, err := m.cache.PrimaryTenantExists(ctx); err == nil && exists {
			primary, err := m.cache.PrimaryTenant(ctx)
			if err != nil {
				m.log.WarnContext(ctx, "primary tenant lookup failed", "error", err)
			}
			if primary != nil && primary.Active() {
				m.dispatchResolved(w, r, next, tc, primary, false)
				return
			}
		}

		m.handleUnresolved(w, r, next)
	})
}

// RequireTenant guards routes that must not run without a tenant,
// responding 404 when the resolution middleware left none set.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := tenant.Current(r.Context()); !ok {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePrimaryTenant guards operator surfaces that only exist on the
// primary tenant's domain, responding 404 elsewhere.
func RequirePrimaryTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := tenant.Current(r.Context())
		if !ok || !current.IsPrimary() {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) dispatchResolved(w http.ResponseWriter, r *http.Request, next http.Handler, tc *tenant.Context, t *tenant.Tenant, notify bool) {
	tc.Set(t)
	if notify {
		m.bus.Publish(r.Context(), tenant.Event{Kind: tenant.EventResolved, Tenant: t, At: time.Now()})
	}
	next.ServeHTTP(w, r)
}

func (m *Middleware) handleSuspended(w http.ResponseWriter, r *http.Request, t *tenant.Tenant) {
	m.log.InfoContext(r.Context(), "request matched suspended tenant", "tenant_id", t.ID)

	switch m.cfg.SuspendedTenant {
	case SuspendedRedirect:
		http.Redirect(w, r, m.cfg.SuspendedRedirectURL, http.StatusFound)
	case SuspendedPage:
		if m.suspended != nil {
			m.suspended.ServeHTTP(w, r)
			return
		}
		m.errorHandler(w, r, ErrTenantSuspended)
	default:
		m.errorHandler(w, r, ErrTenantSuspended)
	}
}

func (m *Middleware) handleUnresolved(w http.ResponseWriter, r *http.Request, next http.Handler) {
	switch m.cfg.UnresolvedTenant {
	case PolicyException:
		m.errorHandler(w, r, ErrTenantUnresolved)
	case PolicyRedirect:
		http.Redirect(w, r, m.cfg.RedirectURL, http.StatusFound)
	default:
		// continue and fallback both dispatch without a tenant; row
		// scoping downstream fails closed for tenant-owned data.
		next.ServeHTTP(w, r)
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantSuspended):
		http.Error(w, "Tenant is suspended", http.StatusNotFound)
	case errors.Is(err, ErrTenantUnresolved):
		http.Error(w, "Could not resolve tenant", http.StatusInternalServerError)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
