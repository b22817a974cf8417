package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalther/pulseboard/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(Config{HistoryWindow: 20, ActivityCap: 10}, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestNew_SeedsFullSnapshot(t *testing.T) {
	s := testStore(t)
	snap := s.Snapshot()

	assert.Len(t, snap.Revenue.Data, 31)
	assert.Equal(t, "2026-03-01", snap.Revenue.Data[30].Date)
	assert.Len(t, snap.ActiveUsers.History, 20)
	assert.Equal(t, 1420, snap.ActiveUsers.Current)
	assert.NotEmpty(t, snap.RecentActivity)
	for _, p := range snap.Revenue.Data {
		assert.GreaterOrEqual(t, p.Value, 3000)
		assert.Less(t, p.Value, 8000)
	}
}

func TestSnapshot_IsADeepCopy(t *testing.T) {
	s := testStore(t)

	snap := s.Snapshot()
	snap.ActiveUsers.History[0].Value = -99
	snap.RecentActivity[0].User = "Mallory"
	snap.Revenue.Data[0].Value = -1

	fresh := s.Snapshot()
	assert.NotEqual(t, -99, fresh.ActiveUsers.History[0].Value)
	assert.NotEqual(t, "Mallory", fresh.RecentActivity[0].User)
	assert.NotEqual(t, -1, fresh.Revenue.Data[0].Value)
}

func TestTickActiveUsers_WindowLengthIsInvariant(t *testing.T) {
	s := testStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		au := s.TickActiveUsers(i%7-3, now.Add(time.Duration(i)*time.Second))
		require.Len(t, au.History, 20)
	}
	assert.Len(t, s.Snapshot().ActiveUsers.History, 20)
}

func TestTickActiveUsers_AppliesDeltasInOrder(t *testing.T) {
	s := testStore(t)
	s.snapshot.ActiveUsers.Current = 100
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.TickActiveUsers(5, now)
	s.TickActiveUsers(-3, now.Add(2*time.Second))
	au := s.TickActiveUsers(5, now.Add(4*time.Second))

	assert.Equal(t, 107, au.Current)

	tail := au.History[len(au.History)-3:]
	assert.Equal(t, []int{105, 102, 107}, []int{tail[0].Value, tail[1].Value, tail[2].Value})
	assert.Equal(t, "12:00:04", tail[2].Time)
}

func TestTickActiveUsers_FloorsAtZero(t *testing.T) {
	s := testStore(t)
	s.snapshot.ActiveUsers.Current = 4

	au := s.TickActiveUsers(-10, time.Now())
	assert.Equal(t, 0, au.Current)
}

func TestPrependActivity_CapsAndOrders(t *testing.T) {
	s := testStore(t)
	s.snapshot.RecentActivity = nil

	var last domain.Activity
	for i := 1; i <= 12; i++ {
		last = domain.Activity{
			ID:     fmt.Sprintf("act-%d", i),
			User:   "Alice Smith",
			Action: "Login",
			Time:   "Just now",
			Status: domain.ActivityCompleted,
		}
		s.PrependActivity(last)
	}

	log := s.Snapshot().RecentActivity
	require.Len(t, log, 10)
	assert.Equal(t, last, log[0])
	assert.Equal(t, "act-3", log[9].ID)
}

func TestSetMetrics_ReplacesBothSlices(t *testing.T) {
	s := testStore(t)
	s.SetMetrics(4.75, domain.OrderSummary{Count: 480, Trend: 9.9})

	snap := s.Snapshot()
	assert.Equal(t, 4.75, snap.ConversionRate)
	assert.Equal(t, domain.OrderSummary{Count: 480, Trend: 9.9}, snap.NewOrders)
}
