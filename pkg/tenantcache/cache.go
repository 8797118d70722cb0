package tenantcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// DefaultTTL bounds domain, slug, route, and primary-tenant-record
// entries. The existence flags are exempt: they are written once, forever.
const DefaultTTL = 3600 * time.Second

// DefaultKeyPrefix namespaces all resolution cache keys.
const DefaultKeyPrefix = "tenant_resolution:"

// flagTrue is the serialized form of the permanent boolean flags.
var flagTrue = []byte("1")

// Store is the subset of tenant persistence the resolution cache reads
// through. FindByDomain and FindBySlug must exclude soft-deleted
// tenants; FindByID includes them so suspension policy can be applied to
// the returned record, and the existence checks count soft-deleted rows
// as existing.
type Store interface {
	FindByDomain(ctx context.Context, domain string) (*tenant.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
	FindByID(ctx context.Context, id int64) (*tenant.Tenant, error)
	Exists(ctx context.Context) (bool, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// ResolutionCache makes tenant lookups and existence checks cheap. It
// applies two independent policies: TTL-bounded cache-aside for record
// lookups, and once-true-forever caching for the "tenants exist" and
// "primary tenant exists" flags. The permanent flags are the system's key
// performance optimization; once any tenant is created, the per-request
// existence check collapses into a single cache read for the lifetime of
// the process (or of the shared cache backend).
type ResolutionCache struct {
	store   Store
	backend Backend
	routes  RouteChecker
	enabled bool
	ttl     time.Duration
	prefix  string
	log     *slog.Logger
}

// Option configures a ResolutionCache.
type Option func(*ResolutionCache)

// WithBackend sets the cache backend. Defaults to an in-memory backend.
func WithBackend(backend Backend) Option {
	return func(c *ResolutionCache) {
		if backend != nil {
			c.backend = backend
		}
	}
}

// WithTTL sets the expiry for TTL-bounded entries.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResolutionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(c *ResolutionCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithRouteChecker wires the collaborator used by HasCustomRoutes.
func WithRouteChecker(routes RouteChecker) Option {
	return func(c *ResolutionCache) {
		c.routes = routes
	}
}

// WithCachingDisabled turns every lookup into a live store query. Useful
// in tests and low-traffic deployments.
func WithCachingDisabled() Option {
	return func(c *ResolutionCache) {
		c.enabled = false
	}
}

// WithLogger sets the logger for best-effort invalidation warnings.
func WithLogger(log *slog.Logger) Option {
	return func(c *ResolutionCache) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a resolution cache in front of the given store.
func New(store Store, opts ...Option) (*ResolutionCache, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	c := &ResolutionCache{
		store:   store,
		backend: NewMemoryBackend(),
		enabled: true,
		ttl:     DefaultTTL,
		prefix:  DefaultKeyPrefix,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TenantByDomain returns the active tenant owning the exact domain, or
// nil when none matches. Cache-aside with TTL.
func (c *ResolutionCache) TenantByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return c.lookup(ctx, c.domainKey(domain), func(ctx context.Context) (*tenant.Tenant, error) {
		return c.store.FindByDomain(ctx, domain)
	})
}

// TenantBySlug returns the active tenant with the given slug, or nil when
// none matches. Cache-aside with TTL.
func (c *ResolutionCache) TenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return c.lookup(ctx, c.slugKey(slug), func(ctx context.Context) (*tenant.Tenant, error) {
		return c.store.FindBySlug(ctx, slug)
	})
}

// TenantsExist reports whether at least one tenant row exists. A true
// result is cached permanently; a false result is never cached, so the
// very next check after the first tenant is created discovers it and
// freezes the flag at true.
func (c *ResolutionCache) TenantsExist(ctx context.Context) (bool, error) {
	return c.existenceCheck(ctx, c.existenceKey(), c.store.Exists)
}

// PrimaryTenantExists reports whether the primary tenant row exists, with
// the same once-true-forever policy. The flag is never invalidated since
// the primary tenant cannot be deleted.
func (c *ResolutionCache) PrimaryTenantExists(ctx context.Context) (bool, error) {
	return c.existenceCheck(ctx, c.primaryExistsKey(), func(ctx context.Context) (bool, error) {
		return c.store.ExistsByID(ctx, tenant.PrimaryTenantID)
	})
}

// PrimaryTenant returns the primary tenant's full record (including a
// suspended one, so callers can apply suspension policy), or nil when it
// does not exist. Cache-aside with TTL.
func (c *ResolutionCache) PrimaryTenant(ctx context.Context) (*tenant.Tenant, error) {
	return c.lookup(ctx, c.primaryModelKey(), func(ctx context.Context) (*tenant.Tenant, error) {
		return c.store.FindByID(ctx, tenant.PrimaryTenantID)
	})
}

// PermanentlyCacheTenantsExist writes the permanent existence flag.
// Idempotent; exposed for event-driven cache warming and the operator
// CLI. Concurrent writers are harmless since the flag only ever becomes
// true.
func (c *ResolutionCache) PermanentlyCacheTenantsExist(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.backend.SetForever(ctx, c.existenceKey(), flagTrue)
}

// HasCustomRoutes reports whether the identifier has a custom route
// definition, consulting the RouteChecker collaborator. Cache-aside with
// TTL; false without a configured checker.
func (c *ResolutionCache) HasCustomRoutes(ctx context.Context, identifier string) (bool, error) {
	if c.routes == nil {
		return false, nil
	}
	check := func(ctx context.Context) (bool, error) {
		return c.routes.HasCustomRoutes(ctx, identifier)
	}

	if !c.enabled {
		return check(ctx)
	}

	key := c.routesKey(identifier)
	if value, ok, err := c.backend.Get(ctx, key); err != nil {
		return false, err
	} else if ok {
		return string(value) == "1", nil
	}

	has, err := check(ctx)
	if err != nil {
		return false, err
	}

	value := []byte("0")
	if has {
		value = flagTrue
	}
	if err := c.backend.Set(ctx, key, value, c.ttl); err != nil {
		return false, err
	}
	return has, nil
}

// ForgetTenant invalidates the domain, slug, and route entries for one
// tenant. Called after create, update, suspend, reactivate, and delete.
func (c *ResolutionCache) ForgetTenant(ctx context.Context, t *tenant.Tenant) {
	if !c.enabled || t == nil {
		return
	}

	keys := make([]string, 0, 4)
	if t.Domain != "" {
		keys = append(keys, c.domainKey(t.Domain), c.routesKey(t.Domain))
	}
	if t.Slug != "" {
		keys = append(keys, c.slugKey(t.Slug), c.routesKey(t.Slug))
	}
	if t.ID == tenant.PrimaryTenantID {
		keys = append(keys, c.primaryModelKey())
	}

	for _, key := range keys {
		if err := c.backend.Delete(ctx, key); err != nil {
			c.log.WarnContext(ctx, "failed to forget tenant cache entry", "key", key, "error", err)
		}
	}
}

// InvalidateExistenceCache clears the "tenants exist" flag. Called when a
// non-primary tenant is hard-deleted, as a safety net; the
// primary-tenant flag is permanent and never cleared.
func (c *ResolutionCache) InvalidateExistenceCache(ctx context.Context) {
	if !c.enabled {
		return
	}
	if err := c.backend.Delete(ctx, c.existenceKey()); err != nil {
		c.log.WarnContext(ctx, "failed to invalidate existence cache", "error", err)
	}
}

// Flush drops all resolution entries. When the backend supports bulk
// invalidation everything under the key prefix goes at once; otherwise
// the well-known keys are deleted and per-domain TTL entries are left to
// expire naturally. Best effort, never fatal.
func (c *ResolutionCache) Flush(ctx context.Context) {
	if !c.enabled {
		return
	}

	if bulk, ok := c.backend.(BulkInvalidator); ok {
		if err := bulk.DeleteByPrefix(ctx, c.prefix); err == nil {
			return
		} else if !errors.Is(err, ErrBulkInvalidationUnsupported) {
			c.log.WarnContext(ctx, "bulk cache invalidation failed, clearing known keys", "error", err)
		}
	}

	c.clearKnownKeys(ctx)
}

// FlushAll is Flush plus an unconditional sweep of the well-known keys,
// covering entries written before a prefix change.
func (c *ResolutionCache) FlushAll(ctx context.Context) {
	if !c.enabled {
		return
	}
	c.Flush(ctx)
	c.clearKnownKeys(ctx)
}

func (c *ResolutionCache) clearKnownKeys(ctx context.Context) {
	for _, key := range []string{c.existenceKey(), c.primaryExistsKey(), c.primaryModelKey()} {
		if err := c.backend.Delete(ctx, key); err != nil {
			c.log.WarnContext(ctx, "failed to clear cache key", "key", key, "error", err)
		}
	}
}

// lookup implements TTL-bounded cache-aside for a single tenant record.
// A missing tenant is reported as (nil, nil) and is not cached.
func (c *ResolutionCache) lookup(ctx context.Context, key string, resolve func(ctx context.Context) (*tenant.Tenant, error)) (*tenant.Tenant, error) {
	live := func(ctx context.Context) (*tenant.Tenant, error) {
		t, err := resolve(ctx)
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, nil
		}
		return t, err
	}

	if !c.enabled {
		return live(ctx)
	}

	if value, ok, err := c.backend.Get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		var t tenant.Tenant
		if err := json.Unmarshal(value, &t); err != nil {
			return nil, fmt.Errorf("decode cached tenant %q: %w", key, err)
		}
		return &t, nil
	}

	t, err := live(ctx)
	if err != nil || t == nil {
		return t, err
	}

	value, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode tenant %q: %w", key, err)
	}
	if err := c.backend.Set(ctx, key, value, c.ttl); err != nil {
		return nil, err
	}
	return t, nil
}

// existenceCheck implements the once-true-forever policy shared by both
// existence flags.
func (c *ResolutionCache) existenceCheck(ctx context.Context, key string, resolve func(ctx context.Context) (bool, error)) (bool, error) {
	if !c.enabled {
		return resolve(ctx)
	}

	if value, ok, err := c.backend.Get(ctx, key); err != nil {
		return false, err
	} else if ok && string(value) == "1" {
		return true, nil
	}

	exists, err := resolve(ctx)
	if err != nil {
		return false, err
	}

	if exists {
		if err := c.backend.SetForever(ctx, key, flagTrue); err != nil {
			return false, err
		}
	}
	return exists, nil
}

func (c *ResolutionCache) domainKey(domain string) string {
	return c.prefix + "domain:" + domain
}

func (c *ResolutionCache) slugKey(slug string) string {
	return c.prefix + "slug:" + slug
}

func (c *ResolutionCache) routesKey(identifier string) string {
	return c.prefix + "routes:" + identifier
}

func (c *ResolutionCache) existenceKey() string {
	return c.prefix + "tenants_exist"
}

func (c *ResolutionCache) primaryExistsKey() string {
	return c.prefix + "primary_tenant_exists"
}

func (c *ResolutionCache) primaryModelKey() string {
	return c.prefix + "primary_tenant_model"
}
