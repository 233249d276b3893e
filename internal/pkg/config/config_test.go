package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/chargemap/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("chargemap-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://localhost:8081", cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 0.01, cfg.Obfuscation.MaxRadius)
	assert.True(t, cfg.Obfuscation.RedrawOnUpdate)
	assert.Equal(t, 60, cfg.Cache.RegionTTL)
	assert.Equal(t, "chargemap-test", cfg.Telemetry.ServiceName)
	assert.Equal(t, "postgres://chargemap:@localhost:5432/chargemap?sslmode=disable", cfg.Database.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHARGEMAP_STORAGE_DRIVER", "memory")
	t.Setenv("CHARGEMAP_OBFUSCATION_MAX_RADIUS", "0.05")
	t.Setenv("CHARGEMAP_OBFUSCATION_REDRAW_ON_UPDATE", "false")

	cfg, err := config.Load("chargemap-test")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 0.05, cfg.Obfuscation.MaxRadius)
	assert.False(t, cfg.Obfuscation.RedrawOnUpdate)
}

func TestLoad_RejectsBadRadius(t *testing.T) {
	for _, v := range []string{"0", "-0.1", "1.5"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CHARGEMAP_OBFUSCATION_MAX_RADIUS", v)
			_, err := config.Load("chargemap-test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "obfuscation.max_radius")
		})
	}
}

func TestValidate_MemoryDriverSkipsDatabase(t *testing.T) {
	cfg := &config.Config{
		Server:      config.ServerConfig{Port: 8080, ReadTimeout: 5, WriteTimeout: 5},
		Storage:     config.StorageConfig{Driver: "memory"},
		Cache:       config.CacheConfig{RegionTTL: 30},
		Obfuscation: config.ObfuscationConfig{MaxRadius: 0.01},
		Temporal:    config.TemporalConfig{TaskQueue: "q"},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "postgres"}}
	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"server.port", "database.host", "obfuscation.max_radius", "cache.region_ttl"} {
		assert.Contains(t, err.Error(), field)
	}
}
