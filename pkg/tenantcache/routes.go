package tenantcache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// RouteChecker reports whether a tenant identifier has a custom route
// definition. The check result is cached with the regular TTL.
type RouteChecker interface {
	HasCustomRoutes(ctx context.Context, identifier string) (bool, error)
}

// RouteCheckerFunc adapts a function to the RouteChecker interface.
type RouteCheckerFunc func(ctx context.Context, identifier string) (bool, error)

func (f RouteCheckerFunc) HasCustomRoutes(ctx context.Context, identifier string) (bool, error) {
	return f(ctx, identifier)
}

// DirRouteChecker looks for a per-tenant route file named
// <identifier><ext> inside Dir. An empty Dir means no tenant has custom
// routes.
type DirRouteChecker struct {
	Dir string
	Ext string
}

func (c DirRouteChecker) HasCustomRoutes(ctx context.Context, identifier string) (bool, error) {
	if c.Dir == "" || identifier == "" {
		return false, nil
	}

	ext := c.Ext
	if ext == "" {
		ext = ".json"
	}

	// Base guards against identifiers that try to escape the routes dir.
	name := filepath.Base(identifier) + ext
	_, err := os.Stat(filepath.Join(c.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
