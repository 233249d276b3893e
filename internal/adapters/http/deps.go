package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/chargemap/internal/core/usecases"
)

// Pinger is a backing service that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sites *usecases.ChargeSiteService
	NATS  *nats.Conn
	DB    Pinger // nil with the memory store
	Cache Pinger // nil with the in-process cache
}
