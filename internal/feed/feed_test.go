package feed

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalther/pulseboard/internal/domain"
	"github.com/mwalther/pulseboard/internal/state"
)

// capturingPublisher collects broadcast messages on a channel.
type capturingPublisher struct {
	messages chan domain.Message
}

func (p *capturingPublisher) Broadcast(msg domain.Message) {
	select {
	case p.messages <- msg:
	default:
	}
}

func testFeed(t *testing.T, intervals Intervals) (*Feed, *state.Store, *clockwork.FakeClock, *capturingPublisher) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	store := state.New(state.Config{HistoryWindow: 20, ActivityCap: 10}, clock.Now())
	pub := &capturingPublisher{messages: make(chan domain.Message, 16)}

	f := New(store, pub, clock, intervals)
	t.Cleanup(f.Stop)

	// Wait until all three tickers are armed before advancing the clock.
	clock.BlockUntil(3)
	return f, store, clock, pub
}

func receiveMessage(t *testing.T, pub *capturingPublisher) domain.Message {
	t.Helper()
	select {
	case msg := <-pub.messages:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestFeed_UserTickEmitsActiveUsersUpdate(t *testing.T) {
	_, _, clock, pub := testFeed(t, Intervals{ActiveUsers: 2 * time.Second, Metrics: time.Hour, Activity: time.Hour})

	clock.Advance(2 * time.Second)

	msg := receiveMessage(t, pub)
	update, ok := msg.(domain.ActiveUsersUpdate)
	require.True(t, ok, "expected ActiveUsersUpdate, got %T", msg)
	assert.Len(t, update.ActiveUsers.History, 20)
	assert.GreaterOrEqual(t, update.ActiveUsers.Current, 0)
	assert.Equal(t, update.ActiveUsers.Current, update.ActiveUsers.History[19].Value)
}

func TestFeed_UserTickKeepsWindowInvariant(t *testing.T) {
	f, _, clock, pub := testFeed(t, Intervals{ActiveUsers: 2 * time.Second, Metrics: time.Hour, Activity: time.Hour})

	for i := 0; i < 25; i++ {
		clock.Advance(2 * time.Second)
		msg := receiveMessage(t, pub)
		update, ok := msg.(domain.ActiveUsersUpdate)
		require.True(t, ok)
		require.Len(t, update.ActiveUsers.History, 20)
	}

	snap, err := f.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.ActiveUsers.History, 20)
}

func TestFeed_MetricsTickStaysInBounds(t *testing.T) {
	f, _, clock, pub := testFeed(t, Intervals{ActiveUsers: time.Hour, Metrics: 5 * time.Second, Activity: time.Hour})

	clock.Advance(5 * time.Second)

	msg := receiveMessage(t, pub)
	update, ok := msg.(domain.MetricsUpdate)
	require.True(t, ok, "expected MetricsUpdate, got %T", msg)
	assert.GreaterOrEqual(t, update.ConversionRate, 1.0)
	assert.LessOrEqual(t, update.ConversionRate, 6.0)
	assert.GreaterOrEqual(t, update.NewOrders.Count, 400)
	assert.Less(t, update.NewOrders.Count, 500)
	assert.GreaterOrEqual(t, update.NewOrders.Trend, 0.0)
	assert.LessOrEqual(t, update.NewOrders.Trend, 10.0)

	snap, err := f.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, update.ConversionRate, snap.ConversionRate)
	assert.Equal(t, update.NewOrders, snap.NewOrders)
}

func TestFeed_ActivityTickPrependsEntry(t *testing.T) {
	f, _, clock, pub := testFeed(t, Intervals{ActiveUsers: time.Hour, Metrics: time.Hour, Activity: 10 * time.Second})

	clock.Advance(10 * time.Second)

	msg := receiveMessage(t, pub)
	update, ok := msg.(domain.NewActivity)
	require.True(t, ok, "expected NewActivity, got %T", msg)
	require.NotEmpty(t, update.RecentActivity)
	assert.LessOrEqual(t, len(update.RecentActivity), 10)

	newest := update.RecentActivity[0]
	assert.NotEmpty(t, newest.ID)
	assert.Equal(t, "Just now", newest.Time)
	assert.Contains(t, []domain.ActivityStatus{domain.ActivityCompleted, domain.ActivityPending, domain.ActivityFailed}, newest.Status)

	snap, err := f.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, newest, snap.RecentActivity[0])
}

func TestFeed_SnapshotReturnsSeededState(t *testing.T) {
	f, store, _, _ := testFeed(t, Intervals{ActiveUsers: time.Hour, Metrics: time.Hour, Activity: time.Hour})

	snap, err := f.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Snapshot(), snap)
	assert.Len(t, snap.Revenue.Data, 31)
}

func TestFeed_SnapshotFailsAfterStop(t *testing.T) {
	f, _, _, _ := testFeed(t, Intervals{ActiveUsers: time.Hour, Metrics: time.Hour, Activity: time.Hour})

	f.Stop()

	_, err := f.Snapshot(context.Background())
	assert.Error(t, err)
}
