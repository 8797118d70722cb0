package tenant_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

func TestTenantActive(t *testing.T) {
	t.Parallel()

	now := time.Now()

	active := &tenant.Tenant{ID: 2, Name: "Acme"}
	assert.True(t, active.Active())
	assert.False(t, active.Suspended())

	suspended := &tenant.Tenant{ID: 2, Name: "Acme", DeletedAt: &now}
	assert.False(t, suspended.Active())
	assert.True(t, suspended.Suspended())
}

func TestTenantIsPrimary(t *testing.T) {
	t.Parallel()

	assert.True(t, (&tenant.Tenant{ID: tenant.PrimaryTenantID}).IsPrimary())
	assert.False(t, (&tenant.Tenant{ID: 2}).IsPrimary())
}

func TestTenantURL(t *testing.T) {
	t.Parallel()

	acme := &tenant.Tenant{ID: 2, Domain: "acme.example.test"}

	assert.Equal(t, "https://acme.example.test", acme.URL("", ""))
	assert.Equal(t, "http://acme.example.test/dash", acme.URL("http", "/dash"))
	assert.Equal(t, "https://acme.example.test/dash", acme.URL("https", "dash"))

	noDomain := &tenant.Tenant{ID: 3}
	assert.Empty(t, noDomain.URL("https", "/x"))
}
