package domain

// RevenuePoint is one day of revenue history.
type RevenuePoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// Revenue aggregates the revenue KPI with its 31-day series.
type Revenue struct {
	Amount int            `json:"amount"`
	Change float64        `json:"change"`
	Data   []RevenuePoint `json:"data"`
}

// UserPoint is one sample of the active-user gauge.
type UserPoint struct {
	Time  string `json:"time"`
	Value int    `json:"value"`
}

// ActiveUsers holds the live gauge and its fixed-length rolling history.
// The history is a sliding window: the oldest point is dropped on push.
type ActiveUsers struct {
	Current int         `json:"current"`
	History []UserPoint `json:"history"`
}

// OrderSummary is the new-orders KPI.
type OrderSummary struct {
	Count int     `json:"count"`
	Trend float64 `json:"trend"`
}

// ActivityStatus is the outcome of a recent-activity entry.
type ActivityStatus string

const (
	ActivityCompleted ActivityStatus = "completed"
	ActivityPending   ActivityStatus = "pending"
	ActivityFailed    ActivityStatus = "failed"
)

// Activity is one row of the recent-activity log.
type Activity struct {
	ID     string         `json:"id"`
	User   string         `json:"user"`
	Action string         `json:"action"`
	Time   string         `json:"time"`
	Status ActivityStatus `json:"status"`
}

// Snapshot is the full dashboard state. It is owned exclusively by the
// state.Store; everyone else works on copies.
type Snapshot struct {
	Revenue        Revenue      `json:"revenue"`
	ActiveUsers    ActiveUsers  `json:"activeUsers"`
	NewOrders      OrderSummary `json:"newOrders"`
	ConversionRate float64      `json:"conversionRate"`
	RecentActivity []Activity   `json:"recentActivity"`
}
