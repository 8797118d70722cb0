// Package pgstore implements the tenant store on PostgreSQL using
// pgx/v5 and squirrel.
//
// Resolution lookups (FindByDomain, FindBySlug) exclude soft-deleted
// tenants; FindByID and the existence checks include them, so suspended
// tenants stay visible to lifecycle operations and the permanently
// cached existence flags never regress. Delete refuses the primary
// tenant.
//
// The schema lives under migrations/ and is applied with pg.Migrate.
package pgstore
