// Package tenantscope filters queries on tenant-owned tables down to the
// rows of the current tenant.
//
// A Scope decorates squirrel builders with a discriminator predicate
// decided at build time from the tenant context:
//
//	query := scope.Select(ctx, sq.Select("id", "name").From("projects"))
//	sql, args, err := query.PlaceholderFormat(sq.Dollar).ToSql()
//
// Scoping fails closed. When tenants exist but the request resolved none,
// the predicate is "1 = 0" and the query returns no rows. While the
// deployment has never had a tenant, queries run unscoped so fresh
// installs behave as plain single-tenant apps.
//
// Cross-tenant access is explicit: tenantscope.ForAllTenants(ctx) removes
// the filter and tenantscope.ForTenant(ctx, id) pins one tenant.
package tenantscope
