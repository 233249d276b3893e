package ports

import (
	"context"

	"github.com/samirrijal/chargemap/internal/core/domain"
)

// EventPublisher publishes charge-site change events to a message broker.
type EventPublisher interface {
	PublishSiteEvent(ctx context.Context, event *domain.SiteEvent) error
}

// EventSubscriber subscribes to charge-site change events.
type EventSubscriber interface {
	SubscribeSiteEvents(ctx context.Context, handler func(ctx context.Context, event *domain.SiteEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
