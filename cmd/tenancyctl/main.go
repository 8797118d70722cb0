package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roberts/singledb-tenancy/pkg/config"
	"github.com/roberts/singledb-tenancy/pkg/logger"
	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

func main() {
	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		fmt.Fprintln(os.Stderr, "load logger config:", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(logCfg, tenant.LoggerExtractor())
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := NewCommandFactory(log)
	if err := factory.NewRootCmd(ctx).Execute(); err != nil {
		os.Exit(1)
	}
}
