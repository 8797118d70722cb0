package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roberts/singledb-tenancy/pkg/config"
	"github.com/roberts/singledb-tenancy/pkg/fallback"
	"github.com/roberts/singledb-tenancy/pkg/pg"
	"github.com/roberts/singledb-tenancy/pkg/pgstore"
	"github.com/roberts/singledb-tenancy/pkg/redis"
	"github.com/roberts/singledb-tenancy/pkg/tenant"
	"github.com/roberts/singledb-tenancy/pkg/tenantcache"
)

// appConfig selects the cache backend shared by all commands.
type appConfig struct {
	CacheDriver string `env:"TENANCY_CACHE_DRIVER" envDefault:"memory"`
}

// CommandFactory builds the CLI commands and their shared dependencies.
type CommandFactory struct {
	log *slog.Logger
}

func NewCommandFactory(log *slog.Logger) *CommandFactory {
	return &CommandFactory{log: log}
}

// deps is the connected dependency set commands operate on. Built per
// invocation so commands that never touch the database (help, version)
// pay nothing.
type deps struct {
	pgConfig pg.Config
	store    *pgstore.Store
	cache    *tenantcache.ResolutionCache
	gate     *fallback.SmartFallback
	service  *tenant.Service
	close    func()
}

func (f *CommandFactory) connect(ctx context.Context) (*deps, error) {
	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return nil, fmt.Errorf("load postgres config: %w", err)
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	closeFns := []func(){pool.Close}

	store, err := pgstore.New(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	cacheOpts := []tenantcache.Option{tenantcache.WithLogger(f.log)}
	if appCfg.CacheDriver == "redis" {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("load redis config: %w", err)
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		closeFns = append(closeFns, func() { _ = client.Close() })
		cacheOpts = append(cacheOpts, tenantcache.WithBackend(tenantcache.NewRedisBackend(client)))
	}

	cache, err := tenantcache.New(store, cacheOpts...)
	if err != nil {
		pool.Close()
		return nil, err
	}

	gate, err := fallback.New(cache, fallback.WithLogger(f.log))
	if err != nil {
		pool.Close()
		return nil, err
	}

	service, err := tenant.NewService(store,
		tenant.WithCacheInvalidator(cache),
		tenant.WithLogger(f.log),
	)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &deps{
		pgConfig: pgCfg,
		store:    store,
		cache:    cache,
		gate:     gate,
		service:  service,
		close: func() {
			for _, fn := range closeFns {
				fn()
			}
		},
	}, nil
}

// NewRootCmd assembles the tenancyctl command tree.
func (f *CommandFactory) NewRootCmd(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tenancyctl",
		Short:         "Manage tenants in a single-database multi-tenant deployment",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetContext(ctx)

	rootCmd.AddCommand(
		f.NewCreateCmd(ctx),
		f.NewInfoCmd(ctx),
		f.NewSuspendCmd(ctx),
		f.NewReactivateCmd(ctx),
		f.NewDeleteCmd(ctx),
		f.NewCacheClearCmd(ctx),
		f.NewFallbackStatusCmd(ctx),
		f.NewMigrateCmd(ctx),
	)
	return rootCmd
}
