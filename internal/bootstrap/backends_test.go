package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/chargemap/internal/bootstrap"
	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/pkg/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage:     config.StorageConfig{Driver: "memory"},
		Cache:       config.CacheConfig{RegionTTL: 60},
		Obfuscation: config.ObfuscationConfig{MaxRadius: 0.01, RedrawOnUpdate: true},
	}
}

func TestOpen_MemoryWithoutOptionalBackends(t *testing.T) {
	b, err := bootstrap.Open(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.Sites)
	assert.Nil(t, b.DB)
	assert.Nil(t, b.Valkey)
	assert.Nil(t, b.Publisher)

	ctx := context.Background()
	site, err := b.Sites.Create(ctx, domain.ChargeSiteInput{Latitude: 52.52, Longitude: 13.405})
	require.NoError(t, err)

	found, err := b.Sites.QueryRegion(ctx, domain.Viewport{
		Center:        domain.GeoPoint{Lat: 52.52, Lon: 13.405},
		LatitudeDelta: 0.01, LongitudeDelta: 0.01,
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, site.ID, found[0].ID)
}

func TestOpen_RejectsBadRadius(t *testing.T) {
	cfg := memoryConfig()
	cfg.Obfuscation.MaxRadius = 0

	_, err := bootstrap.Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	b, err := bootstrap.Open(context.Background(), memoryConfig())
	require.NoError(t, err)
	b.Close()
	b.Close()
}
