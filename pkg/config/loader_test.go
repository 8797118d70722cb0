package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roberts/singledb-tenancy/pkg/config"
)

type cacheConfig struct {
	Driver string `env:"TEST_CACHE_DRIVER" envDefault:"memory"`
	TTL    int    `env:"TEST_CACHE_TTL" envDefault:"3600"`
}

type strategiesConfig struct {
	Strategies []string `env:"TEST_STRATEGIES" envSeparator:"," envDefault:"domain,subdomain"`
}

type requiredConfig struct {
	URL string `env:"TEST_REQUIRED_URL,required"`
}

func TestLoadDefaults(t *testing.T) {
	config.ResetCache()

	var cfg cacheConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "memory", cfg.Driver)
	assert.Equal(t, 3600, cfg.TTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_STRATEGIES", "subdomain,domain")

	var cfg strategiesConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, []string{"subdomain", "domain"}, cfg.Strategies)
}

func TestLoadCachesPerType(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_CACHE_DRIVER", "redis")

	var first cacheConfig
	require.NoError(t, config.Load(&first))
	require.Equal(t, "redis", first.Driver)

	// Environment changes after the first load are invisible.
	t.Setenv("TEST_CACHE_DRIVER", "memory")
	var second cacheConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "redis", second.Driver)
}

func TestLoadRequiredMissing(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_REQUIRED_URL")

	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadNilPointer(t *testing.T) {
	config.ResetCache()
	assert.ErrorIs(t, config.Load[cacheConfig](nil), config.ErrNilPointer)
}

func TestLoadEnvFiles(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_CACHE_DRIVER")
	os.Unsetenv("TEST_CACHE_TTL")

	dir := t.TempDir()
	base := filepath.Join(dir, "base.env")
	override := filepath.Join(dir, "override.env")
	require.NoError(t, os.WriteFile(base, []byte("TEST_CACHE_DRIVER=redis\nTEST_CACHE_TTL=60\n"), 0o600))
	require.NoError(t, os.WriteFile(override, []byte("TEST_CACHE_DRIVER=memory\n"), 0o600))

	require.NoError(t, config.LoadEnv(base, override))
	t.Cleanup(func() {
		os.Unsetenv("TEST_CACHE_DRIVER")
		os.Unsetenv("TEST_CACHE_TTL")
	})

	var cfg cacheConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "memory", cfg.Driver, "later files win")
	assert.Equal(t, 60, cfg.TTL)
}

func TestMustLoadPanics(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_REQUIRED_URL")

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
