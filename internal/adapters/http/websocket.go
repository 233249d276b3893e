package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/chargemap/internal/adapters/nats"
	"github.com/samirrijal/chargemap/internal/core/domain"
	"github.com/samirrijal/chargemap/internal/pkg/geospatial"
	"github.com/samirrijal/chargemap/internal/pkg/metrics"
)

// wsMessage is sent by clients to narrow the event feed to a viewport.
// {"action":"watch","lat":37.77,"lon":-122.41,"latd":0.05,"lond":0.03}
// {"action":"unwatch"} goes back to every event.
type wsMessage struct {
	Action string  `json:"action"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	LatD   float64 `json:"latd"`
	LonD   float64 `json:"lond"`
}

// regionFilter keeps events that could concern a watched viewport.
type regionFilter struct {
	center domain.GeoPoint
	radius float64
}

func (f *regionFilter) allows(evt *domain.SiteEvent) bool {
	if f == nil || evt.Site == nil {
		// Deletions carry no location; always forward them.
		return true
	}
	return geospatial.PlanarDistance(f.center.Lat, f.center.Lon, evt.Site.Latitude, evt.Site.Longitude) <= f.radius
}

// WebSocketHandler relays charge-site change events from NATS to connected
// clients, optionally filtered to a viewport.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Debug("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		var filter *regionFilter

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		sub, err := deps.NATS.Subscribe(natsadapter.SubjectAll, func(msg *nats.Msg) {
			evt, err := natsadapter.DecodeSiteEvent(msg.Data)
			if err != nil {
				return
			}
			mu.Lock()
			f := filter
			mu.Unlock()
			if f.allows(evt) {
				_ = writeJSON(evt)
			}
		})
		if err != nil {
			slog.Warn("ws subscribe failed", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "watch":
				vp := domain.Viewport{
					Center:         domain.GeoPoint{Lat: m.Lat, Lon: m.Lon},
					LatitudeDelta:  m.LatD,
					LongitudeDelta: m.LonD,
				}
				radius, err := deps.Sites.SearchRadius(vp)
				if err != nil {
					_ = writeJSON(map[string]string{"error": err.Error()})
					continue
				}
				mu.Lock()
				filter = &regionFilter{center: vp.Center, radius: radius}
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": "watching"})

			case "unwatch":
				mu.Lock()
				filter = nil
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": "unwatched"})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		slog.Debug("ws client disconnected", "remote", remoteAddr)
	}
}
