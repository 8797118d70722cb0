// Package tenantcache caches tenant resolution lookups with two
// independent policies.
//
// Record lookups (tenant by domain, tenant by slug, the primary tenant's
// record, custom-route checks) are cache-aside with a configurable TTL.
// The existence flags ("do any tenants exist", "does the primary tenant
// exist") are once-true-forever: a true result is written with no expiry
// and never re-checked, while a false result is never cached at all.
// This converts a per-request existence query into a single database hit
// for the lifetime of the process once any tenant has been created, and
// it is what backs the smart-fallback gate in the fallback package.
//
// Backends implement the small Backend interface; MemoryBackend and
// RedisBackend ship with the package. A backend may additionally
// implement BulkInvalidator to support prefix-wide invalidation; Flush
// checks for the capability with a type assertion and degrades to
// deleting the fixed set of well-known keys when it is absent.
//
//	cache, err := tenantcache.New(store,
//		tenantcache.WithBackend(tenantcache.NewRedisBackend(client)),
//		tenantcache.WithTTL(10*time.Minute),
//	)
package tenantcache
