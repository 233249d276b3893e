package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/chargemap/internal/adapters/http"
	natsadapter "github.com/samirrijal/chargemap/internal/adapters/nats"
	"github.com/samirrijal/chargemap/internal/bootstrap"
	"github.com/samirrijal/chargemap/internal/pkg/config"
	"github.com/samirrijal/chargemap/internal/pkg/logging"
	"github.com/samirrijal/chargemap/internal/pkg/metrics"
	"github.com/samirrijal/chargemap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("chargemap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	backends, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("backends: %v", err)
	}
	defer backends.Close()

	deps := &http.Dependencies{Sites: backends.Sites}
	if backends.DB != nil {
		deps.DB = backends.DB
		go reportPoolStats(ctx, backends)
	}
	if backends.Valkey != nil {
		deps.Cache = backends.Valkey
	}

	if backends.Publisher != nil {
		// Other instances' writes invalidate our region cache
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeSiteEvents(ctx, backends.Sites.HandleSiteEvent); err != nil {
				slog.Warn("site event subscription failed", "error", err)
			}
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
			deps.NATS = natsConn
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Chargemap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr,
			"storage", cfg.Storage.Driver, "max_radius", cfg.Obfuscation.MaxRadius)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the connection pool gauges until ctx ends.
func reportPoolStats(ctx context.Context, b *bootstrap.Backends) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if stat := b.DB.Stat(); stat != nil {
				metrics.UpdateDBPoolMetrics(stat)
			}
		}
	}
}
