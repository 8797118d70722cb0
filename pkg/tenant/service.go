package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roberts/singledb-tenancy/pkg/slug"
)

// CacheInvalidator drops cached resolution entries after lifecycle
// changes. Implemented by tenantcache.ResolutionCache.
type CacheInvalidator interface {
	// ForgetTenant invalidates domain and route cache entries for one tenant.
	ForgetTenant(ctx context.Context, t *Tenant)
	// InvalidateExistenceCache clears the "tenants exist" flag only. The
	// primary-tenant flag is permanent and is never cleared.
	InvalidateExistenceCache(ctx context.Context)
}

// Service drives the tenant lifecycle: create, suspend, reactivate, and
// hard delete. Every transition publishes an event and invalidates the
// resolution cache entries that could now be stale.
type Service struct {
	store Store
	bus   Bus
	cache CacheInvalidator
	log   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithBus sets the event bus for lifecycle notifications.
func WithBus(bus Bus) ServiceOption {
	return func(s *Service) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithCacheInvalidator wires resolution-cache invalidation into
// lifecycle transitions.
func WithCacheInvalidator(cache CacheInvalidator) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLogger sets the logger for lifecycle operations.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a tenant lifecycle service backed by the given store.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	s := &Service{
		store: store,
		bus:   NopBus{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateParams describes a new tenant. Slug is derived from Name when
// empty; Domain is optional.
type CreateParams struct {
	Name   string
	Slug   string
	Domain string
}

// Create persists a new tenant and publishes EventCreated. The created
// event is what permanently flips the smart-fallback gate off via the
// cache-warming listener.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Tenant, error) {
	if params.Name == "" {
		return nil, ErrNameRequired
	}

	t := &Tenant{
		Name:   params.Name,
		Slug:   params.Slug,
		Domain: params.Domain,
	}
	if t.Slug == "" {
		t.Slug = slug.Make(t.Name)
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tenant %q: %w", t.Name, err)
	}

	s.log.InfoContext(ctx, "tenant created", "tenant_id", t.ID, "slug", t.Slug)
	s.forget(ctx, t)
	s.publish(ctx, EventCreated, t)
	return t, nil
}

// Update persists changes to a tenant and drops its cached resolution
// entries so the next lookup sees the new domain or slug.
func (s *Service) Update(ctx context.Context, t *Tenant) error {
	if err := s.store.Update(ctx, t); err != nil {
		return fmt.Errorf("update tenant %d: %w", t.ID, err)
	}
	s.forget(ctx, t)
	return nil
}

// Suspend soft-deletes the tenant. A suspended tenant is excluded from
// resolution and from the primary-tenant fallback until reactivated.
func (s *Service) Suspend(ctx context.Context, id int64) (*Tenant, error) {
	if err := s.store.Suspend(ctx, id); err != nil {
		return nil, fmt.Errorf("suspend tenant %d: %w", id, err)
	}

	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant suspended", "tenant_id", id)
	s.forget(ctx, t)
	s.publish(ctx, EventSuspended, t)
	return t, nil
}

// Reactivate restores a suspended tenant.
func (s *Service) Reactivate(ctx context.Context, id int64) (*Tenant, error) {
	if err := s.store.Reactivate(ctx, id); err != nil {
		return nil, fmt.Errorf("reactivate tenant %d: %w", id, err)
	}

	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant reactivated", "tenant_id", id)
	s.forget(ctx, t)
	s.publish(ctx, EventReactivated, t)
	return t, nil
}

// Delete permanently removes a tenant. The primary tenant is protected:
// deleting it fails with ErrPrimaryTenantProtected. Deleting any other
// tenant also clears the "tenants exist" existence flag as a safety net,
// even though the flag is designed to stay true for the process lifetime.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id == PrimaryTenantID {
		return ErrPrimaryTenantProtected
	}

	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tenant %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "tenant deleted", "tenant_id", id)
	s.forget(ctx, t)
	if s.cache != nil {
		s.cache.InvalidateExistenceCache(ctx)
	}
	s.publish(ctx, EventDeleted, t)
	return nil
}

func (s *Service) forget(ctx context.Context, t *Tenant) {
	if s.cache != nil {
		s.cache.ForgetTenant(ctx, t)
	}
}

func (s *Service) publish(ctx context.Context, kind EventKind, t *Tenant) {
	s.bus.Publish(ctx, Event{Kind: kind, Tenant: t, At: time.Now()})
}
