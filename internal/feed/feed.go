package feed

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mwalther/pulseboard/internal/domain"
	"github.com/mwalther/pulseboard/internal/metrics"
	"github.com/mwalther/pulseboard/internal/state"
)

const (
	stopTimeout = 10 * time.Second

	// Bounded random delta applied to the user gauge each tick: [-10, +10].
	userDeltaSpan = 21
	userDeltaMin  = -10
)

var (
	activityUsers    = []string{"Alice Smith", "Bob Jones", "Charlie Brown", "David Lee", "Emma Wilson"}
	activityVerbs    = []string{"Purchase #", "Login", "Logout", "Failed Payment", "Updated Profile"}
	activityOutcomes = []domain.ActivityStatus{
		domain.ActivityCompleted,
		domain.ActivityPending,
		domain.ActivityFailed,
	}
)

// Publisher receives the delta message each mutator emits. Implemented by
// the hub; must not block.
type Publisher interface {
	Broadcast(msg domain.Message)
}

// Intervals are the independent mutator periods. They are deliberately
// distinct so unrelated metrics do not update in lockstep.
type Intervals struct {
	ActiveUsers time.Duration
	Metrics     time.Duration
	Activity    time.Duration
}

// feedCmd is the command interface for the Feed actor.
type feedCmd interface{ isFeedCmd() }

type baseFeedCmd struct{}

func (baseFeedCmd) isFeedCmd() {}

type snapshotCmd struct {
	baseFeedCmd
	replyChannel chan domain.Snapshot
}

type stopCmd struct {
	baseFeedCmd
}

// Feed drives the metric mutators. It is the exclusive owner of the store.
type Feed struct {
	cmdCh     chan feedCmd
	store     *state.Store
	publisher Publisher
	clock     clockwork.Clock
	intervals Intervals
	done      chan struct{}
}

// New creates the feed and starts its loop. The store must not be touched
// by any other goroutine afterwards.
func New(store *state.Store, publisher Publisher, clock clockwork.Clock, intervals Intervals) *Feed {
	f := &Feed{
		cmdCh:     make(chan feedCmd, 64),
		store:     store,
		publisher: publisher,
		clock:     clock,
		intervals: intervals,
		done:      make(chan struct{}),
	}
	go f.run()
	return f
}

// Snapshot returns a consistent copy of the dashboard state, serialized
// through the feed loop so it never races a mutator.
func (f *Feed) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	replyCh := make(chan domain.Snapshot, 1)

	select {
	case f.cmdCh <- snapshotCmd{replyChannel: replyCh}:
	case <-ctx.Done():
		return domain.Snapshot{}, fmt.Errorf("snapshot request not accepted: %w", ctx.Err())
	case <-f.done:
		return domain.Snapshot{}, fmt.Errorf("feed stopped")
	}

	select {
	case snap := <-replyCh:
		return snap, nil
	case <-ctx.Done():
		return domain.Snapshot{}, fmt.Errorf("snapshot request timed out: %w", ctx.Err())
	case <-f.done:
		return domain.Snapshot{}, fmt.Errorf("feed stopped")
	}
}

// Stop shuts down the mutator loop. Blocks until the goroutine has exited
// or the stop timeout is reached.
func (f *Feed) Stop() {
	select {
	case f.cmdCh <- stopCmd{}:
	case <-f.done:
		return
	}

	timeout := f.clock.NewTimer(stopTimeout)
	defer timeout.Stop()

	select {
	case <-f.done:
		slog.Info("Feed stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Feed stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (f *Feed) run() {
	userTicker := f.clock.NewTicker(f.intervals.ActiveUsers)
	defer userTicker.Stop()
	metricsTicker := f.clock.NewTicker(f.intervals.Metrics)
	defer metricsTicker.Stop()
	activityTicker := f.clock.NewTicker(f.intervals.Activity)
	defer activityTicker.Stop()

	defer close(f.done)

	for {
		select {
		case cmd := <-f.cmdCh:
			switch c := cmd.(type) {
			case snapshotCmd:
				c.replyChannel <- f.store.Snapshot()
			case stopCmd:
				return
			default:
				slog.Warn("Feed received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		case <-userTicker.Chan():
			f.tickActiveUsers()
		case <-metricsTicker.Chan():
			f.tickMetrics()
		case <-activityTicker.Chan():
			f.tickActivity()
		}
	}
}

func (f *Feed) tickActiveUsers() {
	delta := rand.IntN(userDeltaSpan) + userDeltaMin
	activeUsers := f.store.TickActiveUsers(delta, f.clock.Now())

	f.publisher.Broadcast(domain.ActiveUsersUpdate{ActiveUsers: activeUsers})
	metrics.FeedTicksTotal.WithLabelValues("active_users").Inc()

	slog.Debug("Active users updated", "current", activeUsers.Current, "delta", delta)
}

func (f *Feed) tickMetrics() {
	conversionRate := math.Round((rand.Float64()*5+1)*100) / 100
	orders := domain.OrderSummary{
		Count: 400 + rand.IntN(100),
		Trend: math.Round(rand.Float64()*100) / 10,
	}
	f.store.SetMetrics(conversionRate, orders)

	f.publisher.Broadcast(domain.MetricsUpdate{ConversionRate: conversionRate, NewOrders: orders})
	metrics.FeedTicksTotal.WithLabelValues("metrics").Inc()

	slog.Debug("Metrics updated", "conversion_rate", conversionRate, "orders", orders.Count)
}

func (f *Feed) tickActivity() {
	entry := f.randomActivity()
	log := f.store.PrependActivity(entry)

	f.publisher.Broadcast(domain.NewActivity{RecentActivity: log})
	metrics.FeedTicksTotal.WithLabelValues("activity").Inc()

	slog.Debug("Activity appended", "action", entry.Action, "user", entry.User)
}

func (f *Feed) randomActivity() domain.Activity {
	action := activityVerbs[rand.IntN(len(activityVerbs))]
	if rand.IntN(2) == 0 {
		action += strconv.Itoa(rand.IntN(9999))
	}

	return domain.Activity{
		ID:     uuid.NewString(),
		User:   activityUsers[rand.IntN(len(activityUsers))],
		Action: action,
		Time:   "Just now",
		Status: activityOutcomes[rand.IntN(len(activityOutcomes))],
	}
}
