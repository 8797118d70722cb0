package tenantjob

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// Repository persists job envelopes for later execution.
type Repository interface {
	CreateJob(ctx context.Context, job *Job) error
}

// Enqueuer builds and stores job envelopes. The current tenant is
// captured when Enqueue runs, not when the job executes, so the job is
// immune to the mutable tenant context changing afterwards.
type Enqueuer struct {
	repo Repository
}

// NewEnqueuer creates an Enqueuer.
func NewEnqueuer(repo Repository) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	return &Enqueuer{repo: repo}, nil
}

// EnqueueOption adjusts a single enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	name          string
	withoutTenant bool
}

// WithName overrides the payload-derived job name.
func WithName(name string) EnqueueOption {
	return func(o *enqueueOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithoutTenant enqueues the job with no tenant snapshot, regardless of
// the tenant current in ctx. For system-wide jobs.
func WithoutTenant() EnqueueOption {
	return func(o *enqueueOptions) {
		o.withoutTenant = true
	}
}

// Enqueue snapshots the current tenant and stores the job envelope. Jobs
// enqueued while no tenant is current carry no tenant id and execute
// untenanted.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) error {
	if payload == nil {
		return ErrPayloadNil
	}

	options := &enqueueOptions{}
	for _, opt := range opts {
		opt(options)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload of type %T: %w", payload, err)
	}

	name := options.name
	if name == "" {
		name = qualifiedStructName(payload)
	}

	job := &Job{
		ID:         uuid.New(),
		Name:       name,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	}
	if !options.withoutTenant {
		if id, ok := tenant.CurrentID(ctx); ok {
			job.TenantID = &id
		}
	}

	if err := e.repo.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("create job %q: %w", job.Name, err)
	}
	return nil
}
