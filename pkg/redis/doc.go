// Package redis connects to the Redis server backing the shared
// resolution cache.
//
// In multi-process deployments the tenantcache Redis backend must see
// the same keys from every process, most importantly the permanently
// cached existence flags. This package provides the retrying Connect
// used to open that client, plus a health-check helper.
//
//	var cfg redis.Config
//	if err := env.Parse(&cfg); err != nil {
//		panic(err)
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		panic(err)
//	}
//	defer client.Close()
//
//	backend := tenantcache.NewRedisBackend(client)
//
// Sentinel errors (ErrRedisNotReady and friends) wrap the underlying
// go-redis errors with errors.Join for easy classification.
package redis
