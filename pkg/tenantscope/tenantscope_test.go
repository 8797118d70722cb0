package tenantscope_test

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
	"github.com/roberts/singledb-tenancy/pkg/tenantscope"
)

type staticGate struct{ fallback bool }

func (g staticGate) IsFallback(context.Context) bool { return g.fallback }

func ctxWithTenant(id int64) context.Context {
	tc := tenant.NewContext()
	tc.Set(&tenant.Tenant{ID: id})
	return tenant.WithContext(context.Background(), tc)
}

func ctxWithoutTenant() context.Context {
	return tenant.WithContext(context.Background(), tenant.NewContext())
}

func newScope(t *testing.T, gate tenantscope.Gate, opts ...tenantscope.Option) *tenantscope.Scope {
	t.Helper()
	scope, err := tenantscope.New(gate, opts...)
	require.NoError(t, err)
	return scope
}

func TestScopeSelect(t *testing.T) {
	t.Parallel()

	base := sq.Select("id", "name").From("projects")

	t.Run("filters on the current tenant", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		sql, args, err := scope.Select(ctxWithTenant(42), base).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name FROM projects WHERE tenant_id = ?", sql)
		assert.Equal(t, []any{int64(42)}, args)
	})

	t.Run("fails closed without a tenant", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		sql, args, err := scope.Select(ctxWithoutTenant(), base).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name FROM projects WHERE 1 = 0", sql)
		assert.Empty(t, args)
	})

	t.Run("unscoped while no tenant ever existed", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{fallback: true})
		sql, _, err := scope.Select(ctxWithoutTenant(), base).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name FROM projects", sql)
	})

	t.Run("all-tenants bypass removes the filter", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		ctx := tenantscope.ForAllTenants(ctxWithTenant(42))
		sql, _, err := scope.Select(ctx, base).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name FROM projects", sql)
	})

	t.Run("pinned tenant overrides the current one", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		ctx := tenantscope.ForTenant(ctxWithTenant(42), 7)
		sql, args, err := scope.Select(ctx, base).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name FROM projects WHERE tenant_id = ?", sql)
		assert.Equal(t, []any{int64(7)}, args)
	})

	t.Run("custom column", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{}, tenantscope.WithColumn("org_id"))
		sql, _, err := scope.Select(ctxWithTenant(42), base).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name FROM projects WHERE org_id = ?", sql)
	})

	t.Run("composes with caller conditions", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		b := base.Where(sq.Eq{"archived": false})
		sql, args, err := scope.Select(ctxWithTenant(42), b).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, name FROM projects WHERE archived = ? AND tenant_id = ?", sql)
		assert.Equal(t, []any{false, int64(42)}, args)
	})
}

func TestScopeUpdateDelete(t *testing.T) {
	t.Parallel()

	t.Run("update filtered", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		b := scope.Update(ctxWithTenant(42), sq.Update("projects").Set("name", "x"))
		sql, args, err := b.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "UPDATE projects SET name = ? WHERE tenant_id = ?", sql)
		assert.Equal(t, []any{"x", int64(42)}, args)
	})

	t.Run("update fails closed", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		b := scope.Update(ctxWithoutTenant(), sq.Update("projects").Set("name", "x"))
		sql, _, err := b.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "UPDATE projects SET name = ? WHERE 1 = 0", sql)
	})

	t.Run("delete filtered", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		b := scope.Delete(ctxWithTenant(42), sq.Delete("projects").Where(sq.Eq{"id": 9}))
		sql, args, err := b.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "DELETE FROM projects WHERE id = ? AND tenant_id = ?", sql)
		assert.Equal(t, []any{9, int64(42)}, args)
	})
}

func TestScopeInsert(t *testing.T) {
	t.Parallel()

	t.Run("populates the discriminator", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		b, err := scope.Insert(ctxWithTenant(42), "projects", map[string]any{"name": "x"})
		require.NoError(t, err)

		sql, args, err := b.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO projects (name,tenant_id) VALUES (?,?)", sql)
		assert.Equal(t, []any{"x", int64(42)}, args)
	})

	t.Run("fails without a tenant", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		_, err := scope.Insert(ctxWithoutTenant(), "projects", map[string]any{"name": "x"})
		assert.ErrorIs(t, err, tenantscope.ErrNoCurrentTenant)
	})

	t.Run("untouched in fallback mode", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{fallback: true})
		b, err := scope.Insert(ctxWithoutTenant(), "projects", map[string]any{"name": "x"})
		require.NoError(t, err)

		sql, _, err := b.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO projects (name) VALUES (?)", sql)
	})

	t.Run("caller-supplied discriminator is preserved", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		b, err := scope.Insert(ctxWithTenant(42), "projects", map[string]any{"name": "x", "tenant_id": int64(7)})
		require.NoError(t, err)

		sql, args, err := b.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO projects (name,tenant_id) VALUES (?,?)", sql)
		assert.Equal(t, []any{"x", int64(7)}, args)
	})

	t.Run("supplied discriminator needs no current tenant", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		b, err := scope.Insert(ctxWithoutTenant(), "projects", map[string]any{"name": "x", "tenant_id": int64(7)})
		require.NoError(t, err)

		sql, args, err := b.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO projects (name,tenant_id) VALUES (?,?)", sql)
		assert.Equal(t, []any{"x", int64(7)}, args)
	})

	t.Run("pinned tenant wins", func(t *testing.T) {
		t.Parallel()

		scope := newScope(t, staticGate{})
		ctx := tenantscope.ForTenant(context.Background(), 7)
		id, ok, err := scope.InsertValue(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(7), id)
	})
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := tenantscope.New(nil)
	assert.ErrorIs(t, err, tenantscope.ErrGateNil)
}
