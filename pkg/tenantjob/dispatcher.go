package tenantjob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// TenantLoader resolves the tenant snapshotted into a job envelope.
// Implemented by the tenant store; suspended tenants still load, since
// their queued work belongs to them either way.
type TenantLoader interface {
	FindByID(ctx context.Context, id int64) (*tenant.Tenant, error)
}

// Dispatcher routes job envelopes to registered handlers, restoring the
// snapshotted tenant around each execution.
type Dispatcher struct {
	loader   TenantLoader
	handlers map[string]Handler
	log      *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDispatcher creates a dispatcher that loads job tenants through the
// given loader.
func NewDispatcher(loader TenantLoader, opts ...DispatcherOption) (*Dispatcher, error) {
	if loader == nil {
		return nil, ErrLoaderNil
	}

	d := &Dispatcher{
		loader:   loader,
		handlers: make(map[string]Handler),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Register adds a handler for its job name. Registering the same name
// twice returns ErrHandlerRegistered.
func (d *Dispatcher) Register(h Handler) error {
	if h == nil {
		return ErrHandlerNil
	}
	if _, exists := d.handlers[h.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrHandlerRegistered, h.Name())
	}
	d.handlers[h.Name()] = h
	return nil
}

// Dispatch executes one job envelope. When the envelope carries a tenant
// id, that tenant becomes current for the duration of the handler and
// the prior tenant is restored afterwards. Jobs without a snapshot, and
// jobs whose tenant no longer exists, run untenanted.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) error {
	handler, ok := d.handlers[job.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrHandlerNotFound, job.Name)
	}

	if job.TenantID == nil {
		return handler.Handle(ctx, job.Payload)
	}

	t, err := d.loader.FindByID(ctx, *job.TenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			d.log.WarnContext(ctx, "job tenant no longer exists, running untenanted",
				"job_id", job.ID, "job", job.Name, "tenant_id", *job.TenantID)
			return handler.Handle(ctx, job.Payload)
		}
		return fmt.Errorf("load tenant %d for job %q: %w", *job.TenantID, job.Name, err)
	}

	return tenant.RunWith(ctx, t, func(ctx context.Context) error {
		return handler.Handle(ctx, job.Payload)
	})
}

// DispatchRaw unmarshals a stored envelope and dispatches it.
func (d *Dispatcher) DispatchRaw(ctx context.Context, raw []byte) error {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("unmarshal job envelope: %w", err)
	}
	return d.Dispatch(ctx, job)
}
