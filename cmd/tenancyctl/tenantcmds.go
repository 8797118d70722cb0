package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

func printTenant(cmd *cobra.Command, t *tenant.Tenant) {
	status := "active"
	if t.Suspended() {
		status = "suspended"
	}
	cmd.Printf("id:      %d\n", t.ID)
	cmd.Printf("name:    %s\n", t.Name)
	cmd.Printf("slug:    %s\n", t.Slug)
	if t.Domain != "" {
		cmd.Printf("domain:  %s\n", t.Domain)
	}
	cmd.Printf("status:  %s\n", status)
	if t.IsPrimary() {
		cmd.Println("role:    primary")
	}
	cmd.Printf("created: %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
}

func (f *CommandFactory) NewCreateCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new tenant",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			slug, _ := cmd.Flags().GetString("slug")
			domain, _ := cmd.Flags().GetString("domain")

			d, err := f.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			t, err := d.service.Create(cmd.Context(), tenant.CreateParams{
				Name:   name,
				Slug:   slug,
				Domain: domain,
			})
			if err != nil {
				return err
			}

			// Warm the permanent existence flag so the running app flips
			// out of fallback mode without waiting for its next check.
			if err := d.gate.PermanentlyCacheTenantsExist(cmd.Context()); err != nil {
				cmd.Printf("warning: could not warm existence cache: %v\n", err)
			}

			cmd.Printf("Tenant created.\n\n")
			printTenant(cmd, t)
			return nil
		},
	}

	cmd.Flags().String("name", "", "tenant display name (required)")
	cmd.Flags().String("slug", "", "subdomain slug, derived from name when omitted")
	cmd.Flags().String("domain", "", "custom domain, optional")
	_ = cmd.MarkFlagRequired("name")
	cmd.SetContext(ctx)
	return cmd
}

func (f *CommandFactory) NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show a tenant by id, slug, or domain",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt64("id")
			slug, _ := cmd.Flags().GetString("slug")
			domain, _ := cmd.Flags().GetString("domain")

			d, err := f.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			var t *tenant.Tenant
			switch {
			case id > 0:
				t, err = d.store.FindByID(cmd.Context(), id)
			case slug != "":
				t, err = d.store.FindBySlug(cmd.Context(), slug)
			case domain != "":
				t, err = d.store.FindByDomain(cmd.Context(), domain)
			default:
				return errors.New("one of --id, --slug, or --domain is required")
			}
			if err != nil {
				return err
			}

			printTenant(cmd, t)
			return nil
		},
	}

	cmd.Flags().Int64("id", 0, "tenant id")
	cmd.Flags().String("slug", "", "tenant slug")
	cmd.Flags().String("domain", "", "tenant domain")
	cmd.SetContext(ctx)
	return cmd
}

func (f *CommandFactory) NewSuspendCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suspend",
		Short: "Suspend a tenant (soft delete)",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt64("id")

			d, err := f.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			t, err := d.service.Suspend(cmd.Context(), id)
			if err != nil {
				return err
			}

			cmd.Printf("Tenant %d (%s) suspended.\n", t.ID, t.Slug)
			return nil
		},
	}

	cmd.Flags().Int64("id", 0, "tenant id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.SetContext(ctx)
	return cmd
}

func (f *CommandFactory) NewReactivateCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reactivate",
		Short: "Reactivate a suspended tenant",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt64("id")

			d, err := f.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			t, err := d.service.Reactivate(cmd.Context(), id)
			if err != nil {
				return err
			}

			cmd.Printf("Tenant %d (%s) reactivated.\n", t.ID, t.Slug)
			return nil
		},
	}

	cmd.Flags().Int64("id", 0, "tenant id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.SetContext(ctx)
	return cmd
}

func (f *CommandFactory) NewDeleteCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete a tenant (the primary tenant is protected)",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt64("id")
			confirmed, _ := cmd.Flags().GetBool("yes")

			if !confirmed {
				return errors.New("deletion is irreversible; re-run with --yes to confirm")
			}

			d, err := f.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			if err := d.service.Delete(cmd.Context(), id); err != nil {
				if errors.Is(err, tenant.ErrPrimaryTenantProtected) {
					cmd.Println("The primary tenant cannot be deleted; use suspend instead.")
				}
				return err
			}

			cmd.Printf("Tenant %d deleted.\n", id)
			return nil
		},
	}

	cmd.Flags().Int64("id", 0, "tenant id (required)")
	cmd.Flags().Bool("yes", false, "confirm deletion")
	_ = cmd.MarkFlagRequired("id")
	cmd.SetContext(ctx)
	return cmd
}
