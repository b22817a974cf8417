package bridge

import (
	"context"
	"encoding/json"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mwalther/pulseboard/internal/domain"
	"github.com/mwalther/pulseboard/internal/metrics"
)

// Broadcaster fans a message out to all connected viewers. Implemented by
// the hub; must not block.
type Broadcaster interface {
	Broadcast(msg domain.Message)
}

// Topics names the broker channels the bridge works with.
type Topics struct {
	// Alerts carries critical alerts, visible to every viewer.
	Alerts string
	// AdminLogs carries admin-only log events; visibility is filtered
	// client-side by role.
	AdminLogs string
}

// Bridge forwards inbound broker messages to the push channel.
type Bridge struct {
	rdb    *goredis.Client
	hub    Broadcaster
	topics Topics
}

// New creates a bridge over an established Redis client.
func New(rdb *goredis.Client, hub Broadcaster, topics Topics) *Bridge {
	return &Bridge{rdb: rdb, hub: hub, topics: topics}
}

// Run subscribes to both topics and forwards messages until ctx is
// cancelled. Loss of the broker connection is logged; resubscription is
// handled inside go-redis.
func (b *Bridge) Run(ctx context.Context) {
	pubsub := b.rdb.Subscribe(ctx, b.topics.Alerts, b.topics.AdminLogs)
	defer func() {
		_ = pubsub.Close()
	}()

	slog.Info("Bridge subscribed", "topics", []string{b.topics.Alerts, b.topics.AdminLogs})

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				slog.Warn("Bridge subscription channel closed")
				return
			}
			b.handleMessage(msg.Channel, msg.Payload)
		case <-ctx.Done():
			return
		}
	}
}

// handleMessage parses one inbound payload and broadcasts it. Malformed
// payloads are fire-and-forget telemetry: dropped with a warning, never
// retried.
func (b *Bridge) handleMessage(topic, payload string) {
	metrics.BridgeMessagesReceived.WithLabelValues(topic).Inc()

	var event domain.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		metrics.BridgeParseFailures.Inc()
		slog.Warn("Dropping malformed broker message", "topic", topic, "error", err)
		return
	}

	b.hub.Broadcast(domain.NewExternalEvent(topic, event))
	slog.Debug("Forwarded broker event", "topic", topic, "event_id", event.ID)
}
