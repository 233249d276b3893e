package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/chargemap/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
//
// Every API instance consumes every event, so subscriptions are ephemeral
// and start at the newest message.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber on its own connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

func (s *Subscriber) SubscribeSiteEvents(ctx context.Context, handler func(ctx context.Context, event *domain.SiteEvent) error) error {
	sub, err := s.js.Subscribe(SubjectAll, func(msg *nats.Msg) {
		event, err := DecodeSiteEvent(msg.Data)
		if err != nil {
			slog.Warn("dropping malformed site event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.BindStream(StreamName),
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

// DecodeSiteEvent parses a published event payload.
func DecodeSiteEvent(data []byte) (*domain.SiteEvent, error) {
	var event domain.SiteEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.SiteID == "" || event.Type == "" {
		return nil, fmt.Errorf("site event missing type or id")
	}
	return &event, nil
}
