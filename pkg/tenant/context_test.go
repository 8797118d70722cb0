package tenant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("empty by default", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		assert.False(t, tc.Has())
		assert.Nil(t, tc.Get())

		_, ok := tc.ID()
		assert.False(t, ok)
	})

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		acme := &tenant.Tenant{ID: 2, Name: "Acme", Slug: "acme"}
		tc.Set(acme)

		assert.True(t, tc.Has())
		assert.Equal(t, acme, tc.Get())

		id, ok := tc.ID()
		require.True(t, ok)
		assert.Equal(t, int64(2), id)
	})

	t.Run("clear removes tenant", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		tc.Set(&tenant.Tenant{ID: 2})
		tc.Clear()
		assert.False(t, tc.Has())
	})

	t.Run("check fails when empty", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		_, err := tc.Check()
		assert.ErrorIs(t, err, tenant.ErrTenantNotResolved)
	})

	t.Run("check returns current tenant", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		acme := &tenant.Tenant{ID: 2}
		tc.Set(acme)

		got, err := tc.Check()
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})
}

func TestContextRunWith(t *testing.T) {
	t.Parallel()

	t.Run("restores prior tenant", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		a := &tenant.Tenant{ID: 1}
		b := &tenant.Tenant{ID: 2}
		tc.Set(a)

		err := tc.RunWith(b, func() error {
			assert.Equal(t, b, tc.Get())
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, a, tc.Get())
	})

	t.Run("restores empty state", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		err := tc.RunWith(&tenant.Tenant{ID: 2}, func() error { return nil })
		require.NoError(t, err)
		assert.False(t, tc.Has())
	})

	t.Run("restores on error", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		a := &tenant.Tenant{ID: 1}
		tc.Set(a)

		wantErr := errors.New("boom")
		err := tc.RunWith(&tenant.Tenant{ID: 2}, func() error { return wantErr })
		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, a, tc.Get())
	})

	t.Run("restores on panic", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		a := &tenant.Tenant{ID: 1}
		tc.Set(a)

		assert.Panics(t, func() {
			_ = tc.RunWith(&tenant.Tenant{ID: 2}, func() error {
				panic("boom")
			})
		})
		assert.Equal(t, a, tc.Get())
	})

	t.Run("nests correctly", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		a := &tenant.Tenant{ID: 1}
		b := &tenant.Tenant{ID: 2}
		c := &tenant.Tenant{ID: 3}
		tc.Set(a)

		err := tc.RunWith(b, func() error {
			return tc.RunWith(c, func() error {
				assert.Equal(t, c, tc.Get())
				return tc.RunWithout(func() error {
					assert.False(t, tc.Has())
					return nil
				})
			})
		})
		require.NoError(t, err)
		assert.Equal(t, a, tc.Get())
	})
}

func TestContextRunWithout(t *testing.T) {
	t.Parallel()

	t.Run("clears tenant for callback", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		a := &tenant.Tenant{ID: 1}
		tc.Set(a)

		err := tc.RunWithout(func() error {
			assert.False(t, tc.Has())
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, a, tc.Get())
	})

	t.Run("restores on panic", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		a := &tenant.Tenant{ID: 1}
		tc.Set(a)

		assert.Panics(t, func() {
			_ = tc.RunWithout(func() error { panic("boom") })
		})
		assert.Equal(t, a, tc.Get())
	})
}

func TestContextPropagation(t *testing.T) {
	t.Parallel()

	t.Run("current reads the attached cell", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		acme := &tenant.Tenant{ID: 2, Slug: "acme"}
		tc.Set(acme)

		ctx := tenant.WithContext(context.Background(), tc)

		got, ok := tenant.Current(ctx)
		require.True(t, ok)
		assert.Equal(t, acme, got)

		id, ok := tenant.CurrentID(ctx)
		require.True(t, ok)
		assert.Equal(t, int64(2), id)
	})

	t.Run("missing cell", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.Current(context.Background())
		assert.False(t, ok)

		_, err := tenant.Require(context.Background())
		assert.ErrorIs(t, err, tenant.ErrTenantNotResolved)
	})

	t.Run("require returns current tenant", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		acme := &tenant.Tenant{ID: 2}
		tc.Set(acme)
		ctx := tenant.WithContext(context.Background(), tc)

		got, err := tenant.Require(ctx)
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})

	t.Run("run with creates cell on demand", func(t *testing.T) {
		t.Parallel()

		acme := &tenant.Tenant{ID: 2}
		err := tenant.RunWith(context.Background(), acme, func(ctx context.Context) error {
			got, ok := tenant.Current(ctx)
			require.True(t, ok)
			assert.Equal(t, acme, got)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("run without hides the tenant", func(t *testing.T) {
		t.Parallel()

		tc := tenant.NewContext()
		tc.Set(&tenant.Tenant{ID: 2})
		ctx := tenant.WithContext(context.Background(), tc)

		err := tenant.RunWithout(ctx, func(ctx context.Context) error {
			_, ok := tenant.Current(ctx)
			assert.False(t, ok)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, tc.Has())
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := tenant.LoggerExtractor()

	tc := tenant.NewContext()
	tc.Set(&tenant.Tenant{ID: 7})
	ctx := tenant.WithContext(context.Background(), tc)

	attr, ok := extract(ctx)
	require.True(t, ok)
	assert.Equal(t, "tenant_id", attr.Key)
	assert.Equal(t, int64(7), attr.Value.Int64())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
