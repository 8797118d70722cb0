package tenant

import (
	"strings"
	"time"
)

// PrimaryTenantID is the reserved identifier of the primary tenant. The
// primary tenant serves as the fallback identity when no resolver matches
// a request and can never be hard-deleted.
const PrimaryTenantID int64 = 1

// Tenant is the identity and routing record for a single tenant in a
// single-database multi-tenant application.
type Tenant struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Domain    string     `json:"domain,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the tenant has not been soft-deleted.
// Suspension is modeled as a soft delete, so a suspended tenant is
// inactive until reactivated.
func (t *Tenant) Active() bool {
	return t.DeletedAt == nil
}

// Suspended reports whether the tenant is currently soft-deleted.
func (t *Tenant) Suspended() bool {
	return t.DeletedAt != nil
}

// IsPrimary reports whether this is the primary tenant.
func (t *Tenant) IsPrimary() bool {
	return t.ID == PrimaryTenantID
}

// URL builds an absolute URL for the tenant's domain. The scheme defaults
// to https when empty. Returns an empty string for tenants without a
// domain.
func (t *Tenant) URL(scheme, path string) string {
	if t.Domain == "" {
		return ""
	}
	if scheme == "" {
		scheme = "https"
	}
	u := scheme + "://" + t.Domain
	if path != "" {
		u += "/" + strings.TrimPrefix(path, "/")
	}
	return u
}
