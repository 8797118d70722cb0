package tenantscope

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// DefaultColumn is the discriminator column scoped queries filter on.
const DefaultColumn = "tenant_id"

// Gate reports whether the deployment is still in single-tenant fallback
// mode, in which case no rows carry a discriminator yet and scoping is a
// no-op. Implemented by fallback.SmartFallback.
type Gate interface {
	IsFallback(ctx context.Context) bool
}

// Scope decorates squirrel builders with the tenant discriminator filter
// for the tenant current in ctx.
//
// The filter is decided at build time, against the tenant that is current
// at that moment. When tenants exist but none is current, scoped queries
// fail closed: the predicate "1 = 0" matches no rows, so an unresolved
// request can never read another tenant's data.
type Scope struct {
	column string
	gate   Gate
}

// Option configures a Scope.
type Option func(*Scope)

// WithColumn overrides the discriminator column name.
func WithColumn(column string) Option {
	return func(s *Scope) {
		if column != "" {
			s.column = column
		}
	}
}

// New creates a scope backed by the given fallback gate.
func New(gate Gate, opts ...Option) (*Scope, error) {
	if gate == nil {
		return nil, ErrGateNil
	}

	s := &Scope{column: DefaultColumn, gate: gate}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Column returns the discriminator column name.
func (s *Scope) Column() string {
	return s.column
}

// Predicate returns the WHERE condition for ctx, or nil when the query
// must run unscoped (explicit bypass, or fallback mode).
func (s *Scope) Predicate(ctx context.Context) sq.Sqlizer {
	if allTenants(ctx) {
		return nil
	}
	if id, ok := pinnedTenant(ctx); ok {
		return sq.Eq{s.column: id}
	}
	if id, ok := tenant.CurrentID(ctx); ok {
		return sq.Eq{s.column: id}
	}
	if s.gate.IsFallback(ctx) {
		// No tenant has ever existed, so rows are not partitioned yet.
		return nil
	}
	return sq.Expr("1 = 0")
}

// Select applies the tenant filter to a SELECT builder.
func (s *Scope) Select(ctx context.Context, b sq.SelectBuilder) sq.SelectBuilder {
	if pred := s.Predicate(ctx); pred != nil {
		return b.Where(pred)
	}
	return b
}

// Update applies the tenant filter to an UPDATE builder.
func (s *Scope) Update(ctx context.Context, b sq.UpdateBuilder) sq.UpdateBuilder {
	if pred := s.Predicate(ctx); pred != nil {
		return b.Where(pred)
	}
	return b
}

// Delete applies the tenant filter to a DELETE builder.
func (s *Scope) Delete(ctx context.Context, b sq.DeleteBuilder) sq.DeleteBuilder {
	if pred := s.Predicate(ctx); pred != nil {
		return b.Where(pred)
	}
	return b
}

// InsertValue returns the discriminator value for a new row. It returns
// ErrNoCurrentTenant when tenants exist but none is current, so writes
// fail closed like reads. Under an all-tenants bypass or in fallback mode
// the second return value is false and the caller decides the column.
func (s *Scope) InsertValue(ctx context.Context) (int64, bool, error) {
	if allTenants(ctx) {
		return 0, false, nil
	}
	if id, ok := pinnedTenant(ctx); ok {
		return id, true, nil
	}
	if id, ok := tenant.CurrentID(ctx); ok {
		return id, true, nil
	}
	if s.gate.IsFallback(ctx) {
		return 0, false, nil
	}
	return 0, false, ErrNoCurrentTenant
}

// Insert builds an INSERT for a tenant-owned row, adding the
// discriminator column to the caller's values when a tenant applies. A
// discriminator already present in row wins; the scope only fills the
// column in when the caller left it unset.
func (s *Scope) Insert(ctx context.Context, table string, row map[string]any) (sq.InsertBuilder, error) {
	values := make(map[string]any, len(row)+1)
	for column, value := range row {
		values[column] = value
	}

	if _, supplied := values[s.column]; !supplied {
		id, ok, err := s.InsertValue(ctx)
		if err != nil {
			return sq.InsertBuilder{}, err
		}
		if ok {
			values[s.column] = id
		}
	}
	return sq.Insert(table).SetMap(values), nil
}

type allTenantsKey struct{}

type pinnedTenantKey struct{}

// ForAllTenants marks ctx so scoped queries run without the tenant
// filter. For operator tooling and cross-tenant maintenance only.
func ForAllTenants(ctx context.Context) context.Context {
	return context.WithValue(ctx, allTenantsKey{}, true)
}

// ForTenant pins scoped queries in ctx to an explicit tenant id,
// regardless of the tenant current in the surrounding unit of work.
func ForTenant(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, pinnedTenantKey{}, id)
}

func allTenants(ctx context.Context) bool {
	v, _ := ctx.Value(allTenantsKey{}).(bool)
	return v
}

func pinnedTenant(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(pinnedTenantKey{}).(int64)
	return id, ok
}
