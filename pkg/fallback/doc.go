// Package fallback implements the smart-fallback gate: a two-state,
// one-way switch between "no tenant enforcement" (a fresh install that
// has never seen a tenant) and "full multi-tenant enforcement".
//
// The transition fires the first time a tenant row is observed and is
// irreversible for the process lifetime. There is no reverse transition:
// deleting every tenant later does not reactivate fallback mode. The
// permanence is backed by the once-true-forever existence flag in
// package tenantcache.
package fallback
