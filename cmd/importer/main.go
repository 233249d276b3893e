package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/samirrijal/chargemap/internal/bootstrap"
	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/pkg/config"
	"github.com/samirrijal/chargemap/internal/pkg/logging"
)

const maxConcurrent = 8

// Manifest is a batch of sites to create.
type Manifest struct {
	Source string                   `json:"source"`
	Sites  []domain.ChargeSiteInput `json:"sites"`
}

type siteCreator interface {
	Create(ctx context.Context, in domain.ChargeSiteInput) (*domain.ChargeSite, error)
}

func main() {
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	cfg, err := config.Load("chargemap-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	manifest, err := loadManifest(manifestPath)
	if err != nil {
		log.Fatalf("manifest: %v", err)
	}

	ctx := context.Background()
	backends, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("backends: %v", err)
	}
	defer backends.Close()

	slog.Info("importing charge sites", "source", manifest.Source, "count", len(manifest.Sites))
	created, failed := importSites(ctx, backends.Sites, manifest.Sites, maxConcurrent)
	slog.Info("import complete", "created", created, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// importSites creates every site through svc, at most limit at a time.
// A failed site is logged and does not stop the others.
func importSites(ctx context.Context, svc siteCreator, sites []domain.ChargeSiteInput, limit int) (created, failed int) {
	var ok, bad atomic.Int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)

	for i, in := range sites {
		wg.Add(1)
		go func(i int, in domain.ChargeSiteInput) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if _, err := svc.Create(ctx, in); err != nil {
				slog.Error("import site failed", "index", i, "user_id", in.UserID, "error", err)
				bad.Add(1)
				return
			}
			ok.Add(1)
		}(i, in)
	}

	wg.Wait()
	return int(ok.Load()), int(bad.Load())
}
