// Package bootstrap opens the backing services shared by the binaries and
// builds the charge-site service on top of them.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/chargemap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/chargemap/internal/adapters/nats"
	"github.com/samirrijal/chargemap/internal/adapters/postgres"
	"github.com/samirrijal/chargemap/internal/adapters/valkey"
	"github.com/samirrijal/chargemap/internal/core/ports"
	"github.com/samirrijal/chargemap/internal/core/usecases"
	"github.com/samirrijal/chargemap/internal/pkg/config"
)

// Backends holds the charge-site service and whatever it was built on.
// Optional backends that could not be reached are nil.
type Backends struct {
	Sites     *usecases.ChargeSiteService
	DB        *postgres.DB           // nil with the memory store
	Valkey    *valkey.Cache          // nil when the in-process cache is used
	Publisher *natsadapter.Publisher // nil when NATS is not reachable

	closers []func()
}

// Open connects to the configured store, cache, and broker. Only the store is
// mandatory; Valkey falls back to an in-process cache and a missing NATS
// server disables event publishing.
func Open(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{}

	var store ports.ChargeSiteRepository
	switch cfg.Storage.Driver {
	case "memory":
		slog.Warn("using in-memory store; sites are lost on restart")
		store = memory.NewChargeSiteStore()
	default:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		b.DB = db
		b.closers = append(b.closers, db.Close)
		store = postgres.NewChargeSiteRepo(db)
	}

	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, using in-process cache", "error", err)
		} else {
			b.Valkey = vc
			b.closers = append(b.closers, vc.Close)
			cache = vc
		}
	}
	if cache == nil {
		cache = memory.NewCache(time.Minute)
	}

	var events ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, site events disabled", "error", err)
		} else {
			b.Publisher = pub
			b.closers = append(b.closers, pub.Close)
			events = pub
		}
	}

	svc, err := usecases.NewChargeSiteService(store, cache, events, usecases.ChargeSiteConfig{
		MaxObfuscatedRadius: cfg.Obfuscation.MaxRadius,
		RedrawOnUpdate:      cfg.Obfuscation.RedrawOnUpdate,
		RegionCacheTTL:      cfg.Cache.RegionTTL,
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Sites = svc
	return b, nil
}

// Close releases every opened backend in reverse order.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
