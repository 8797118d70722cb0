// Package tenantjob propagates the current tenant across the queue
// boundary.
//
// The tenant context is request-scoped, so a queued job would otherwise
// execute with no tenant at all. The Enqueuer snapshots the current
// tenant id into the job envelope at enqueue time; the Dispatcher loads
// that tenant at execution time and runs the handler inside
// tenant.RunWith, restoring whatever was current before.
//
//	enq, _ := tenantjob.NewEnqueuer(repo)
//	_ = enq.Enqueue(ctx, SendInvoice{InvoiceID: 9})
//
//	disp, _ := tenantjob.NewDispatcher(store)
//	_ = disp.Register(tenantjob.NewHandler(func(ctx context.Context, p SendInvoice) error {
//		// tenant.Current(ctx) is the tenant that enqueued the job
//		return nil
//	}))
//
// Envelopes without a snapshot, and envelopes whose tenant was deleted
// in the meantime, execute untenanted rather than failing.
package tenantjob
