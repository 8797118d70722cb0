package fallback

import (
	"context"
	"log/slog"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// Listener warms the permanent existence flag when a tenant is created,
// so the very first request after creation already skips the database
// check instead of paying for the discovery itself.
type Listener struct {
	gate *SmartFallback
	log  *slog.Logger
}

// NewListener creates a cache-warming listener for the gate.
func NewListener(gate *SmartFallback, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{gate: gate, log: log}
}

// Register subscribes the listener to tenant creation events.
func (l *Listener) Register(bus *tenant.MemoryBus) {
	bus.Subscribe(tenant.EventCreated, l.HandleTenantCreated)
}

// HandleTenantCreated permanently caches that tenants exist. Warming is
// best effort; a cache failure is logged and the next IsFallback call
// discovers the tenant through the live check instead.
func (l *Listener) HandleTenantCreated(ctx context.Context, event tenant.Event) {
	if err := l.gate.PermanentlyCacheTenantsExist(ctx); err != nil {
		l.log.WarnContext(ctx, "failed to warm tenant existence cache", "error", err)
	}
}
