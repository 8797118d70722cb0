// Package resolution decides which tenant is current for each inbound
// HTTP request.
//
// The middleware runs a fixed precedence order: the smart-fallback gate
// (fresh installs skip tenant logic entirely), the non-production forced
// override, the configuration-ordered resolver chain (domain match, then
// subdomain match by default — first match wins), a silent fallback to
// the primary tenant, and finally the configured unresolved-tenant
// policy: continue, exception, redirect, or fallback.
//
//	gate, _ := fallback.New(cache)
//	mw, _ := resolution.New(cfg, gate, cache, resolution.WithBus(bus))
//	router.Use(mw.Handler)
//
// A resolved tenant is installed into a per-request tenant context cell;
// handlers read it with tenant.Current(r.Context()).
package resolution
