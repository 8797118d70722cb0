// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool
// with retrying startup, goose schema migrations, health checks, and
// error classification helpers.
//
// The tenancy store in pkg/pgstore builds on the pool opened here; the
// migrations under migrations/ create the tenants and tenant_jobs
// tables.
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//		panic(err)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		panic(err)
//	}
//
// Configuration comes from environment variables; see the Config field
// tags for names and defaults.
package pg
