package resolution_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/roberts/singledb-tenancy/pkg/resolution"
	"github.com/roberts/singledb-tenancy/pkg/tenant"
)

type exampleGate struct{}

func (exampleGate) IsFallback(context.Context) bool { return false }

type exampleCache struct{ acme *tenant.Tenant }

func (c exampleCache) TenantByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	if domain == c.acme.Domain {
		return c.acme, nil
	}
	return nil, nil
}

func (c exampleCache) TenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	if slug == c.acme.Slug {
		return c.acme, nil
	}
	return nil, nil
}

func (exampleCache) PrimaryTenantExists(ctx context.Context) (bool, error)   { return false, nil }
func (exampleCache) PrimaryTenant(ctx context.Context) (*tenant.Tenant, error) { return nil, nil }

func ExampleMiddleware_Handler() {
	cfg := resolution.Config{
		Strategies:       []string{resolution.StrategyDomain, resolution.StrategySubdomain},
		DomainEnabled:    true,
		SubdomainEnabled: true,
		BaseDomain:       "example.test",
		UnresolvedTenant: resolution.PolicyContinue,
		SuspendedTenant:  resolution.SuspendedBlock,
		Environment:      "production",
	}

	cache := exampleCache{acme: &tenant.Tenant{ID: 2, Slug: "acme", Domain: "app.acme.com"}}

	mw, err := resolution.New(cfg, exampleGate{}, cache)
	if err != nil {
		panic(err)
	}

	router := chi.NewRouter()
	router.Use(mw.Handler)
	router.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if current, ok := tenant.Current(r.Context()); ok {
			fmt.Fprintf(w, "tenant: %s", current.Slug)
			return
		}
		fmt.Fprint(w, "no tenant")
	})

	req := httptest.NewRequest("GET", "http://placeholder/dashboard", nil)
	req.Host = "app.acme.com"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	fmt.Println(rec.Body.String())
	// Output: tenant: acme
}
