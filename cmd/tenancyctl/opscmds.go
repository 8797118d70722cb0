package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

func (f *CommandFactory) NewCacheClearCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache-clear",
		Short: "Drop cached resolution entries",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt64("tenant")
			all, _ := cmd.Flags().GetBool("all")

			if id == 0 && !all {
				return errors.New("pass --tenant <id> or --all")
			}

			d, err := f.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			if all {
				d.cache.FlushAll(cmd.Context())
				cmd.Println("Resolution cache flushed.")
				return nil
			}

			t, err := d.store.FindByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			d.cache.ForgetTenant(cmd.Context(), t)
			cmd.Printf("Cache entries for tenant %d (%s) dropped.\n", t.ID, t.Slug)
			return nil
		},
	}

	cmd.Flags().Int64("tenant", 0, "drop entries for one tenant id")
	cmd.Flags().Bool("all", false, "drop every resolution entry")
	cmd.SetContext(ctx)
	return cmd
}

func (f *CommandFactory) NewFallbackStatusCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fallback-status",
		Short: "Report whether the deployment is in single-tenant fallback mode",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := f.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			if d.gate.IsFallback(cmd.Context()) {
				cmd.Println("FALLBACK ACTIVE: no tenants exist yet; requests bypass tenant resolution.")
				return nil
			}

			cmd.Println("FALLBACK INACTIVE: tenants exist; every request goes through tenant resolution.")
			return nil
		},
	}

	cmd.SetContext(ctx)
	return cmd
}
