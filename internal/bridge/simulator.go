package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mwalther/pulseboard/internal/domain"
	"github.com/mwalther/pulseboard/internal/metrics"
)

var (
	alertMessages = []string{
		"Payment gateway latency above threshold",
		"Error rate spike on checkout service",
		"Database replica lag exceeds 30s",
		"Order queue depth above limit",
		"Third-party API circuit opened",
	}
	adminLogMessages = []string{
		"Admin exported revenue report",
		"Conversion goal updated",
		"User account locked after failed logins",
		"Pricing rule changed",
		"Scheduled maintenance window created",
	}
)

// broker is the outbound publish surface of the Redis client, narrowed for
// testability.
type broker interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Simulator publishes synthetic alert and admin-log events to the broker
// on two independent timers, standing in for real upstream producers.
type Simulator struct {
	rdb           broker
	clock         clockwork.Clock
	topics        Topics
	alertEvery    time.Duration
	adminLogEvery time.Duration
	sequence      atomic.Uint64
}

// NewSimulator creates a simulator over an established Redis client.
func NewSimulator(rdb *goredis.Client, clock clockwork.Clock, topics Topics, alertEvery, adminLogEvery time.Duration) *Simulator {
	return newSimulator(rdb, clock, topics, alertEvery, adminLogEvery)
}

func newSimulator(rdb broker, clock clockwork.Clock, topics Topics, alertEvery, adminLogEvery time.Duration) *Simulator {
	return &Simulator{
		rdb:           rdb,
		clock:         clock,
		topics:        topics,
		alertEvery:    alertEvery,
		adminLogEvery: adminLogEvery,
	}
}

// Run publishes events until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	alertTicker := s.clock.NewTicker(s.alertEvery)
	defer alertTicker.Stop()
	adminLogTicker := s.clock.NewTicker(s.adminLogEvery)
	defer adminLogTicker.Stop()

	for {
		select {
		case <-alertTicker.Chan():
			s.publish(ctx, s.topics.Alerts, domain.SeverityCritical, alertMessages)
		case <-adminLogTicker.Chan():
			s.publish(ctx, s.topics.AdminLogs, domain.SeverityInfo, adminLogMessages)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Simulator) publish(ctx context.Context, topic string, severity domain.Severity, messages []string) {
	event := domain.Event{
		ID:        s.nextID(),
		Severity:  severity,
		Message:   messages[rand.IntN(len(messages))],
		Timestamp: s.clock.Now().Format(time.RFC3339),
		Topic:     topic,
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal simulated event", "error", err)
		return
	}

	if err := s.rdb.Publish(ctx, topic, data).Err(); err != nil {
		metrics.SimulatorPublishFailures.Inc()
		slog.Warn("Failed to publish simulated event", "topic", topic, "error", err)
		return
	}

	metrics.SimulatorEventsPublished.WithLabelValues(topic).Inc()
	slog.Debug("Published simulated event", "topic", topic, "event_id", event.ID)
}

// nextID derives a fresh monotonic identity from the clock and a process
// wide sequence counter.
func (s *Simulator) nextID() string {
	return fmt.Sprintf("%d-%d", s.clock.Now().UnixMilli(), s.sequence.Add(1))
}
