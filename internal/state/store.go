package state

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/mwalther/pulseboard/internal/domain"
)

const (
	revenueDays     = 31
	pointTimeFormat = "15:04:05"
)

// Config bounds the two windowed slices of the snapshot.
type Config struct {
	// HistoryWindow is the fixed length of the active-user history.
	HistoryWindow int
	// ActivityCap is the maximum length of the recent-activity log.
	ActivityCap int
}

// Store holds the authoritative dashboard snapshot. Owned by the feed
// loop; see the package doc for the concurrency contract.
type Store struct {
	snapshot      domain.Snapshot
	historyWindow int
	activityCap   int
}

// New seeds a store with plausible starting data: a month of revenue,
// a full active-user history window, and a few activity rows.
func New(cfg Config, now time.Time) *Store {
	s := &Store{
		historyWindow: cfg.HistoryWindow,
		activityCap:   cfg.ActivityCap,
	}

	revenue := make([]domain.RevenuePoint, 0, revenueDays)
	for i := revenueDays - 1; i >= 0; i-- {
		revenue = append(revenue, domain.RevenuePoint{
			Date:  now.AddDate(0, 0, -i).Format("2006-01-02"),
			Value: 3000 + rand.IntN(5000),
		})
	}

	history := make([]domain.UserPoint, 0, cfg.HistoryWindow)
	for i := 0; i < cfg.HistoryWindow; i++ {
		history = append(history, domain.UserPoint{
			Time:  fmt.Sprintf("%d:00", i),
			Value: 1000 + rand.IntN(500),
		})
	}

	s.snapshot = domain.Snapshot{
		Revenue:        domain.Revenue{Amount: 124500, Change: 12.5, Data: revenue},
		ActiveUsers:    domain.ActiveUsers{Current: 1420, History: history},
		NewOrders:      domain.OrderSummary{Count: 450, Trend: 5.2},
		ConversionRate: 3.2,
		RecentActivity: []domain.Activity{
			{ID: "1", User: "Alice Smith", Action: "Purchase #1023", Time: "2 mins ago", Status: domain.ActivityCompleted},
			{ID: "2", User: "Bob Jones", Action: "Login", Time: "5 mins ago", Status: domain.ActivityCompleted},
			{ID: "3", User: "Charlie Brown", Action: "Failed Payment", Time: "12 mins ago", Status: domain.ActivityFailed},
		},
	}
	return s
}

// Snapshot returns a deep copy of the current state. Safe to hand to other
// goroutines.
func (s *Store) Snapshot() domain.Snapshot {
	snap := s.snapshot
	snap.Revenue.Data = append([]domain.RevenuePoint(nil), s.snapshot.Revenue.Data...)
	snap.ActiveUsers.History = append([]domain.UserPoint(nil), s.snapshot.ActiveUsers.History...)
	snap.RecentActivity = append([]domain.Activity(nil), s.snapshot.RecentActivity...)
	return snap
}

// TickActiveUsers applies a signed delta to the gauge, flooring at zero,
// and slides the history window by one point. Returns a copy of the
// updated slice for the delta message.
func (s *Store) TickActiveUsers(delta int, now time.Time) domain.ActiveUsers {
	current := s.snapshot.ActiveUsers.Current + delta
	if current < 0 {
		current = 0
	}

	old := s.snapshot.ActiveUsers.History
	history := make([]domain.UserPoint, 0, s.historyWindow)
	if len(old) >= s.historyWindow {
		history = append(history, old[len(old)-s.historyWindow+1:]...)
	} else {
		history = append(history, old...)
	}
	history = append(history, domain.UserPoint{
		Time:  now.Format(pointTimeFormat),
		Value: current,
	})

	s.snapshot.ActiveUsers = domain.ActiveUsers{Current: current, History: history}

	return domain.ActiveUsers{
		Current: current,
		History: append([]domain.UserPoint(nil), history...),
	}
}

// SetMetrics replaces the conversion-rate and order-summary slices.
func (s *Store) SetMetrics(conversionRate float64, orders domain.OrderSummary) {
	s.snapshot.ConversionRate = conversionRate
	s.snapshot.NewOrders = orders
}

// PrependActivity puts a new entry at the head of the activity log and
// truncates to the cap. Returns a copy of the resulting log, newest first.
func (s *Store) PrependActivity(a domain.Activity) []domain.Activity {
	log := make([]domain.Activity, 0, s.activityCap)
	log = append(log, a)
	rest := s.snapshot.RecentActivity
	if len(rest) > s.activityCap-1 {
		rest = rest[:s.activityCap-1]
	}
	log = append(log, rest...)

	s.snapshot.RecentActivity = log

	return append([]domain.Activity(nil), log...)
}
