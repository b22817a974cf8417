package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalther/pulseboard/internal/config"
	"github.com/mwalther/pulseboard/internal/domain"
	"github.com/mwalther/pulseboard/internal/feed"
	"github.com/mwalther/pulseboard/internal/hub"
	"github.com/mwalther/pulseboard/internal/state"
)

// mockRedisClient provides a minimal mock for health check testing
type mockRedisClient struct {
	pingErr error
}

func (m *mockRedisClient) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	if m.pingErr != nil {
		cmd.SetErr(m.pingErr)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

// newTestServer wires a server against a real feed and hub. Mutator
// intervals are set far beyond the test horizon so state only changes
// when a test broadcasts explicitly.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	clock := clockwork.NewRealClock()
	store := state.New(state.Config{HistoryWindow: 20, ActivityCap: 10}, time.Now())

	var dataFeed *feed.Feed
	h := hub.New(func(ctx context.Context) (domain.Snapshot, error) {
		return dataFeed.Snapshot(ctx)
	}, clock, 8)
	dataFeed = feed.New(store, h, clock, feed.Intervals{
		ActiveUsers: time.Hour,
		Metrics:     time.Hour,
		Activity:    time.Hour,
	})

	t.Cleanup(func() {
		h.Stop()
		dataFeed.Stop()
	})

	cfg := &config.Config{Port: "8080"}
	srv := New(cfg, dataFeed, h, nil)
	srv.redisHealthCheck = &mockRedisClient{}
	return srv
}

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleLiveness(c))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadiness(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		c := srv.echo.NewContext(req, rec)

		require.NoError(t, srv.handleReadiness(c))
		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), "ready")
	})

	t.Run("redis down", func(t *testing.T) {
		srv := newTestServer(t)
		srv.redisHealthCheck = &mockRedisClient{pingErr: errors.New("connection refused")}

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		c := srv.echo.NewContext(req, rec)

		require.NoError(t, srv.handleReadiness(c))
		assert.Equal(t, 503, rec.Code)
		assert.Contains(t, rec.Body.String(), "redis")
	})
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleVersion(c))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "goVersion")
}

func TestHandleDashboard(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)

	require.NoError(t, srv.handleDashboard(c))
	require.Equal(t, 200, rec.Code)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.ActiveUsers.History, 20)
	assert.NotEmpty(t, snap.Revenue.Data)
	assert.NotEmpty(t, snap.RecentActivity)
}

func TestWebSocket_SnapshotThenDelta(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.echo)
	defer ts.Close()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// First frame is always the full snapshot.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	msg, err := domain.Decode(data)
	require.NoError(t, err)
	initial, ok := msg.(domain.InitialData)
	require.True(t, ok, "expected INITIAL_DATA, got %T", msg)
	assert.Len(t, initial.Snapshot.ActiveUsers.History, 20)

	// A broadcast after registration arrives as a delta frame.
	srv.hub.Broadcast(domain.MetricsUpdate{
		ConversionRate: 4.2,
		NewOrders:      domain.OrderSummary{Count: 412, Trend: 7},
	})

	_, data, err = conn.ReadMessage()
	require.NoError(t, err)

	msg, err = domain.Decode(data)
	require.NoError(t, err)
	update, ok := msg.(domain.MetricsUpdate)
	require.True(t, ok, "expected METRICS_UPDATE, got %T", msg)
	assert.InDelta(t, 4.2, update.ConversionRate, 0.001)
	assert.Equal(t, 412, update.NewOrders.Count)
}
