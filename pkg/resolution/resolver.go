package resolution

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

// Cache is the slice of the resolution cache the resolvers and the
// middleware read through. Implemented by tenantcache.ResolutionCache.
type Cache interface {
	TenantByDomain(ctx context.Context, domain string) (*tenant.Tenant, error)
	TenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
	PrimaryTenantExists(ctx context.Context) (bool, error)
	PrimaryTenant(ctx context.Context) (*tenant.Tenant, error)
}

// Resolver maps a request to a tenant. A nil tenant with a nil error
// means "no match, try the next strategy".
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (*tenant.Tenant, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, r *http.Request) (*tenant.Tenant, error)

func (f ResolverFunc) Resolve(ctx context.Context, r *http.Request) (*tenant.Tenant, error) {
	return f(ctx, r)
}

// DomainResolver matches the request host exactly against the tenants'
// domain column, through the resolution cache.
type DomainResolver struct {
	cache   Cache
	enabled bool
}

// NewDomainResolver creates a domain resolver. A disabled resolver
// returns no match without consulting the store.
func NewDomainResolver(cache Cache, enabled bool) *DomainResolver {
	return &DomainResolver{cache: cache, enabled: enabled}
}

func (d *DomainResolver) Resolve(ctx context.Context, r *http.Request) (*tenant.Tenant, error) {
	if !d.enabled {
		return nil, nil
	}

	host := hostWithoutPort(r.Host)
	if host == "" {
		return nil, nil
	}
	return d.cache.TenantByDomain(ctx, host)
}

// SubdomainResolver strips the configured base domain from the host and
// matches the remaining single-level label against the tenants' slug
// column. Multi-level subdomains and reserved labels never resolve.
type SubdomainResolver struct {
	cache      Cache
	enabled    bool
	baseDomain string
	reserved   []string
}

// NewSubdomainResolver creates a subdomain resolver for the given base
// domain. Without a base domain the resolver never matches.
func NewSubdomainResolver(cache Cache, cfg Config) *SubdomainResolver {
	return &SubdomainResolver{
		cache:      cache,
		enabled:    cfg.SubdomainEnabled,
		baseDomain: cfg.BaseDomain,
		reserved:   cfg.ReservedSubdomains,
	}
}

func (s *SubdomainResolver) Resolve(ctx context.Context, r *http.Request) (*tenant.Tenant, error) {
	if !s.enabled {
		return nil, nil
	}

	label := s.extractLabel(hostWithoutPort(r.Host))
	if label == "" {
		return nil, nil
	}
	return s.cache.TenantBySlug(ctx, label)
}

// extractLabel returns the subdomain label, or "" when the host does not
// qualify: missing base domain, host outside the base domain, an empty
// or nested label, or a reserved name.
func (s *SubdomainResolver) extractLabel(host string) string {
	if host == "" || s.baseDomain == "" {
		return ""
	}

	suffix := "." + s.baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	label := strings.TrimSuffix(host, suffix)
	if label == "" || strings.Contains(label, ".") {
		return ""
	}

	for _, reserved := range s.reserved {
		if label == reserved {
			return ""
		}
	}
	return label
}

// NewChain builds the resolver chain in the order configured by
// cfg.Strategies. The middleware accepts the first non-nil result, so
// configuration order is precedence.
func NewChain(cache Cache, cfg Config) ([]Resolver, error) {
	chain := make([]Resolver, 0, len(cfg.Strategies))
	for _, strategy := range cfg.Strategies {
		switch strategy {
		case StrategyDomain:
			chain = append(chain, NewDomainResolver(cache, cfg.DomainEnabled))
		case StrategySubdomain:
			chain = append(chain, NewSubdomainResolver(cache, cfg))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
		}
	}
	return chain, nil
}

func hostWithoutPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	// No port present (SplitHostPort rejects bare hosts); strip the
	// brackets an IPv6 literal may still carry.
	return strings.Trim(host, "[]")
}
