package tenant_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	tenants map[int64]*tenant.Tenant
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, tenants: make(map[int64]*tenant.Tenant)}
}

func (s *memStore) Create(ctx context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	s.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *memStore) Update(ctx context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[t.ID]; !ok {
		return tenant.ErrTenantNotFound
	}
	cp := *t
	cp.UpdatedAt = time.Now()
	s.tenants[t.ID] = &cp
	return nil
}

func (s *memStore) FindByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) FindByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tenants {
		if t.Domain == domain && t.Active() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *memStore) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tenants {
		if t.Slug == slug && t.Active() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *memStore) Exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tenants) > 0, nil
}

func (s *memStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tenants[id]
	return ok, nil
}

func (s *memStore) Suspend(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return tenant.ErrTenantNotFound
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

func (s *memStore) Reactivate(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return tenant.ErrTenantNotFound
	}
	t.DeletedAt = nil
	return nil
}

func (s *memStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == tenant.PrimaryTenantID {
		return tenant.ErrPrimaryTenantProtected
	}
	if _, ok := s.tenants[id]; !ok {
		return tenant.ErrTenantNotFound
	}
	delete(s.tenants, id)
	return nil
}

// recordingInvalidator records cache invalidation calls.
type recordingInvalidator struct {
	mu          sync.Mutex
	forgotten   []int64
	existencedN int
}

func (r *recordingInvalidator) ForgetTenant(ctx context.Context, t *tenant.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forgotten = append(r.forgotten, t.ID)
}

func (r *recordingInvalidator) InvalidateExistenceCache(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existencedN++
}

func collectEvents(bus *tenant.MemoryBus, kinds ...tenant.EventKind) *[]tenant.Event {
	var mu sync.Mutex
	events := &[]tenant.Event{}
	for _, kind := range kinds {
		bus.Subscribe(kind, func(ctx context.Context, e tenant.Event) {
			mu.Lock()
			defer mu.Unlock()
			*events = append(*events, e)
		})
	}
	return events
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("derives slug from name", func(t *testing.T) {
		t.Parallel()

		svc, err := tenant.NewService(newMemStore())
		require.NoError(t, err)

		created, err := svc.Create(context.Background(), tenant.CreateParams{Name: "Acme Corp."})
		require.NoError(t, err)
		assert.Equal(t, "acme-corp", created.Slug)
		assert.Equal(t, int64(1), created.ID)
	})

	t.Run("keeps supplied slug", func(t *testing.T) {
		t.Parallel()

		svc, err := tenant.NewService(newMemStore())
		require.NoError(t, err)

		created, err := svc.Create(context.Background(), tenant.CreateParams{Name: "Acme", Slug: "custom"})
		require.NoError(t, err)
		assert.Equal(t, "custom", created.Slug)
	})

	t.Run("requires name", func(t *testing.T) {
		t.Parallel()

		svc, err := tenant.NewService(newMemStore())
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), tenant.CreateParams{})
		assert.ErrorIs(t, err, tenant.ErrNameRequired)
	})

	t.Run("publishes created event", func(t *testing.T) {
		t.Parallel()

		bus := tenant.NewMemoryBus()
		events := collectEvents(bus, tenant.EventCreated)

		svc, err := tenant.NewService(newMemStore(), tenant.WithBus(bus))
		require.NoError(t, err)

		created, err := svc.Create(context.Background(), tenant.CreateParams{Name: "Acme"})
		require.NoError(t, err)

		require.Len(t, *events, 1)
		assert.Equal(t, tenant.EventCreated, (*events)[0].Kind)
		assert.Equal(t, created.ID, (*events)[0].Tenant.ID)
	})
}

func TestServiceLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("suspend and reactivate round trip", func(t *testing.T) {
		t.Parallel()

		bus := tenant.NewMemoryBus()
		events := collectEvents(bus, tenant.EventSuspended, tenant.EventReactivated)

		store := newMemStore()
		svc, err := tenant.NewService(store, tenant.WithBus(bus))
		require.NoError(t, err)

		created, err := svc.Create(context.Background(), tenant.CreateParams{Name: "Acme"})
		require.NoError(t, err)

		suspended, err := svc.Suspend(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, suspended.Suspended())

		restored, err := svc.Reactivate(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, restored.Active())

		require.Len(t, *events, 2)
		assert.Equal(t, tenant.EventSuspended, (*events)[0].Kind)
		assert.Equal(t, tenant.EventReactivated, (*events)[1].Kind)
	})

	t.Run("delete removes tenant and invalidates existence cache", func(t *testing.T) {
		t.Parallel()

		bus := tenant.NewMemoryBus()
		events := collectEvents(bus, tenant.EventDeleted)
		inv := &recordingInvalidator{}

		store := newMemStore()
		svc, err := tenant.NewService(store, tenant.WithBus(bus), tenant.WithCacheInvalidator(inv))
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), tenant.CreateParams{Name: "Primary"})
		require.NoError(t, err)
		other, err := svc.Create(context.Background(), tenant.CreateParams{Name: "Other"})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), other.ID))

		_, err = store.FindByID(context.Background(), other.ID)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
		assert.Equal(t, 1, inv.existencedN)
		require.Len(t, *events, 1)
		assert.Equal(t, tenant.EventDeleted, (*events)[0].Kind)
	})

	t.Run("primary tenant cannot be deleted", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		svc, err := tenant.NewService(store)
		require.NoError(t, err)

		primary, err := svc.Create(context.Background(), tenant.CreateParams{Name: "Primary"})
		require.NoError(t, err)
		require.Equal(t, tenant.PrimaryTenantID, primary.ID)

		err = svc.Delete(context.Background(), primary.ID)
		assert.ErrorIs(t, err, tenant.ErrPrimaryTenantProtected)

		exists, err := store.ExistsByID(context.Background(), primary.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("lifecycle transitions forget cached entries", func(t *testing.T) {
		t.Parallel()

		inv := &recordingInvalidator{}
		svc, err := tenant.NewService(newMemStore(), tenant.WithCacheInvalidator(inv))
		require.NoError(t, err)

		created, err := svc.Create(context.Background(), tenant.CreateParams{Name: "Acme", Domain: "acme.test"})
		require.NoError(t, err)

		created.Domain = "acme.example.test"
		require.NoError(t, svc.Update(context.Background(), created))

		assert.Equal(t, []int64{created.ID, created.ID}, inv.forgotten)
	})
}

func TestNewServiceRequiresStore(t *testing.T) {
	t.Parallel()

	_, err := tenant.NewService(nil)
	assert.ErrorIs(t, err, tenant.ErrStoreNil)
}
