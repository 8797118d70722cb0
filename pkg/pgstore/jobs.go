package pgstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/roberts/singledb-tenancy/pkg/pg"
	"github.com/roberts/singledb-tenancy/pkg/tenantjob"
)

// JobsTableName is the queued jobs table created by the bundled
// migrations.
const JobsTableName = "tenant_jobs"

// JobStore persists tenantjob envelopes in Postgres. It implements
// tenantjob.Repository.
type JobStore struct {
	db DB
	sb sq.StatementBuilderType
}

var _ tenantjob.Repository = (*JobStore)(nil)

// NewJobStore creates a job store over a pgx pool or transaction.
func NewJobStore(db DB) (*JobStore, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	return &JobStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// CreateJob stores one envelope. The tenant snapshot is kept as a plain
// id, not a foreign key with cascade, so deleting a tenant leaves its
// queued jobs to execute untenanted.
func (s *JobStore) CreateJob(ctx context.Context, job *tenantjob.Job) error {
	query, args, err := s.sb.Insert(JobsTableName).
		Columns("id", "name", "payload", "tenant_id", "enqueued_at").
		Values(job.ID, job.Name, []byte(job.Payload), job.TenantID, job.EnqueuedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert job %q: %w", job.Name, err)
	}
	return nil
}

// NextJob pops the oldest queued envelope, or ErrNoJobs when the queue
// is empty. The row is deleted in the same statement, so concurrent
// workers never pick the same job.
func (s *JobStore) NextJob(ctx context.Context) (*tenantjob.Job, error) {
	query := `DELETE FROM ` + JobsTableName + `
WHERE id = (
	SELECT id FROM ` + JobsTableName + `
	ORDER BY enqueued_at
	FOR UPDATE SKIP LOCKED
	LIMIT 1
)
RETURNING id, name, payload, tenant_id, enqueued_at`

	var job tenantjob.Job
	err := s.db.QueryRow(ctx, query).Scan(&job.ID, &job.Name, &job.Payload, &job.TenantID, &job.EnqueuedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNoJobs
		}
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	return &job, nil
}
