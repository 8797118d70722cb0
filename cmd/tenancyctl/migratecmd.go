package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roberts/singledb-tenancy/pkg/config"
	"github.com/roberts/singledb-tenancy/pkg/pg"
)

func (f *CommandFactory) NewMigrateCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (tenants and tenant_jobs tables)",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var pgCfg pg.Config
			if err := config.Load(&pgCfg); err != nil {
				return fmt.Errorf("load postgres config: %w", err)
			}

			pool, err := pg.Connect(cmd.Context(), pgCfg)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			if err := pg.Migrate(cmd.Context(), pool, pgCfg, f.log); err != nil {
				return err
			}

			cmd.Println("Migrations applied.")
			return nil
		},
	}

	cmd.SetContext(ctx)
	return cmd
}
