package pgstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roberts/singledb-tenancy/pkg/pg"
	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// TableName is the tenants table created by the bundled migrations.
const TableName = "tenants"

// DB is the pgx query surface the store needs. Satisfied by
// *pgxpool.Pool and by pgx.Tx, so the store works inside transactions.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the Postgres tenant store. It implements tenant.Store with
// soft-delete aware lookups and primary-tenant delete protection.
type Store struct {
	db DB
	sb sq.StatementBuilderType
}

var _ tenant.Store = (*Store)(nil)

// New creates a store over a pgx pool or transaction.
func New(db DB) (*Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

var tenantColumns = []string{"id", "name", "slug", "domain", "created_at", "updated_at", "deleted_at"}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var (
		t      tenant.Tenant
		domain *string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &domain, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	if domain != nil {
		t.Domain = *domain
	}
	return &t, nil
}

// nullableDomain maps an empty domain to NULL so the partial unique
// index on domain only covers tenants that actually have one.
func nullableDomain(domain string) any {
	if domain == "" {
		return nil
	}
	return domain
}

// Create inserts the tenant and fills in its generated id and
// timestamps.
func (s *Store) Create(ctx context.Context, t *tenant.Tenant) error {
	query, args, err := s.sb.Insert(TableName).
		Columns("name", "slug", "domain").
		Values(t.Name, t.Slug, nullableDomain(t.Domain)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := s.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", tenant.ErrTenantExists, err)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// Update rewrites the tenant's mutable fields.
func (s *Store) Update(ctx context.Context, t *tenant.Tenant) error {
	query, args, err := s.sb.Update(TableName).
		Set("name", t.Name).
		Set("slug", t.Slug).
		Set("domain", nullableDomain(t.Domain)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": t.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if err := s.db.QueryRow(ctx, query, args...).Scan(&t.UpdatedAt); err != nil {
		if pg.IsNotFoundError(err) {
			return tenant.ErrTenantNotFound
		}
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", tenant.ErrTenantExists, err)
		}
		return fmt.Errorf("update tenant %d: %w", t.ID, err)
	}
	return nil
}

// FindByID returns the tenant with the given id, suspended or not.
func (s *Store) FindByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	query, args, err := s.sb.Select(tenantColumns...).
		From(TableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return scanTenant(s.db.QueryRow(ctx, query, args...))
}

// FindByDomain returns the active tenant owning the domain. Suspended
// tenants never match, so their domains stop resolving immediately.
func (s *Store) FindByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	query, args, err := s.sb.Select(tenantColumns...).
		From(TableName).
		Where(sq.Eq{"domain": domain, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return scanTenant(s.db.QueryRow(ctx, query, args...))
}

// FindBySlug returns the active tenant with the slug.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	query, args, err := s.sb.Select(tenantColumns...).
		From(TableName).
		Where(sq.Eq{"slug": slug, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return scanTenant(s.db.QueryRow(ctx, query, args...))
}

// Exists reports whether any tenant row exists, soft-deleted included.
// This feeds the permanently cached "tenants exist" flag, which must
// stay true even when every tenant is suspended.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+TableName+")").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tenants exist: %w", err)
	}
	return exists, nil
}

// ExistsByID reports whether the tenant row exists, soft-deleted
// included.
func (s *Store) ExistsByID(ctx context.Context, id int64) (bool, error) {
	query, args, err := s.sb.Select("1").
		From(TableName).
		Where(sq.Eq{"id": id}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var exists bool
	if err := s.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check tenant %d exists: %w", id, err)
	}
	return exists, nil
}

// Suspend marks the tenant soft-deleted. Suspending an already suspended
// tenant is a no-op.
func (s *Store) Suspend(ctx context.Context, id int64) error {
	return s.setDeletedAt(ctx, id, sq.Expr("now()"))
}

// Reactivate clears the soft-delete marker.
func (s *Store) Reactivate(ctx context.Context, id int64) error {
	return s.setDeletedAt(ctx, id, nil)
}

func (s *Store) setDeletedAt(ctx context.Context, id int64, value any) error {
	query, args, err := s.sb.Update(TableName).
		Set("deleted_at", value).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update tenant %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// Delete permanently removes the tenant row. The primary tenant is
// protected and can only ever be suspended.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if id == tenant.PrimaryTenantID {
		return tenant.ErrPrimaryTenantProtected
	}

	query, args, err := s.sb.Delete(TableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete tenant %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}
