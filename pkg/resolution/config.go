package resolution

import (
	"fmt"
	"slices"
)

// Strategy names accepted in Config.Strategies.
const (
	StrategyDomain    = "domain"
	StrategySubdomain = "subdomain"
)

// UnresolvedPolicy is the failure policy applied when no tenant resolves
// and the primary-tenant fallback is unavailable.
type UnresolvedPolicy string

const (
	// PolicyContinue dispatches the request with no tenant set. Row
	// scoping then fails closed for tenant-owned data.
	PolicyContinue UnresolvedPolicy = "continue"
	// PolicyException fails the request with an ErrTenantUnresolved error.
	PolicyException UnresolvedPolicy = "exception"
	// PolicyRedirect redirects to Config.RedirectURL.
	PolicyRedirect UnresolvedPolicy = "redirect"
	// PolicyFallback relies on the primary-tenant fallback alone; when
	// that did not apply either, it behaves like PolicyContinue.
	PolicyFallback UnresolvedPolicy = "fallback"
)

// SuspendedPolicy decides what happens when resolution matches a
// suspended tenant.
type SuspendedPolicy string

const (
	// SuspendedBlock responds 404 without dispatching.
	SuspendedBlock SuspendedPolicy = "block"
	// SuspendedRedirect redirects to Config.SuspendedRedirectURL.
	SuspendedRedirect SuspendedPolicy = "redirect"
	// SuspendedPage serves the handler configured with WithSuspendedPage.
	SuspendedPage SuspendedPolicy = "page"
)

// Config is the tenant resolution configuration surface. Field defaults
// follow the env tags, so a zero-config deployment resolves by domain
// first, then subdomain, and silently falls back to the primary tenant.
type Config struct {
	// Strategies is the ordered resolver chain. First match wins, so
	// order encodes precedence.
	Strategies []string `env:"TENANCY_RESOLUTION_STRATEGIES" envSeparator:"," envDefault:"domain,subdomain"`

	DomainEnabled    bool `env:"TENANCY_RESOLUTION_DOMAIN_ENABLED" envDefault:"true"`
	SubdomainEnabled bool `env:"TENANCY_RESOLUTION_SUBDOMAIN_ENABLED" envDefault:"true"`

	// BaseDomain is the suffix stripped from the host to find the
	// subdomain label, e.g. "example.test" for acme.example.test.
	BaseDomain string `env:"TENANCY_RESOLUTION_BASE_DOMAIN"`

	// ReservedSubdomains are labels never treated as tenant slugs.
	ReservedSubdomains []string `env:"TENANCY_RESOLUTION_RESERVED" envSeparator:"," envDefault:"www,api,admin"`

	UnresolvedTenant UnresolvedPolicy `env:"TENANCY_UNRESOLVED_TENANT" envDefault:"fallback"`
	RedirectURL      string           `env:"TENANCY_REDIRECT_URL" envDefault:"/"`

	SuspendedTenant      SuspendedPolicy `env:"TENANCY_SUSPENDED_TENANT" envDefault:"block"`
	SuspendedRedirectURL string          `env:"TENANCY_SUSPENDED_REDIRECT_URL" envDefault:"/"`

	// ForceTenant is a development/testing override: a tenant domain
	// resolved directly from the store, bypassing the cache. Consulted
	// only outside production.
	ForceTenant string `env:"TENANCY_FORCE_TENANT"`

	// Environment gates the ForceTenant override; the override is
	// ignored when this equals "production".
	Environment string `env:"TENANCY_ENVIRONMENT" envDefault:"production"`
}

// Production reports whether the forced-tenant override must be ignored.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// Validate checks strategy names and policy values.
func (c Config) Validate() error {
	for _, s := range c.Strategies {
		if s != StrategyDomain && s != StrategySubdomain {
			return fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
		}
	}

	switch c.UnresolvedTenant {
	case PolicyContinue, PolicyException, PolicyRedirect, PolicyFallback:
	default:
		return fmt.Errorf("%w: unresolved_tenant %q", ErrInvalidPolicy, c.UnresolvedTenant)
	}

	switch c.SuspendedTenant {
	case SuspendedBlock, SuspendedRedirect, SuspendedPage:
	default:
		return fmt.Errorf("%w: suspended_tenant %q", ErrInvalidPolicy, c.SuspendedTenant)
	}
	return nil
}

// ReservedSubdomain reports whether the label is configured as reserved.
func (c Config) ReservedSubdomain(label string) bool {
	return slices.Contains(c.ReservedSubdomains, label)
}
