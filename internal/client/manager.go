package client

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/mwalther/pulseboard/internal/domain"
)

// RoleAdmin is the viewer role allowed to see admin-topic events.
const RoleAdmin = "admin"

const (
	defaultMaxAttempts  = 10
	defaultRetryDelay   = 5 * time.Second
	defaultSeenEventCap = 500
)

// State is the connection manager's lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Config controls the manager's connection behaviour.
type Config struct {
	// URL is the push-channel endpoint (ws:// or wss://).
	URL string
	// Role is the viewer's role; non-admin roles never see admin-topic
	// events.
	Role string
	// AdminTopic names the broker topic whose events are admin-only.
	AdminTopic string
	// MaxAttempts bounds consecutive connection attempts before giving up.
	MaxAttempts int
	// RetryDelay is the fixed wait between attempts. No backoff.
	RetryDelay time.Duration
	// SeenEventCap bounds the duplicate-suppression set. When the cap is
	// reached the set is cleared wholesale, so a long-evicted id can be
	// accepted again as new.
	SeenEventCap int
}

// Callbacks surface manager activity to the presentation layer. All
// callbacks run on the manager's goroutines and must not call back into
// the Manager.
type Callbacks struct {
	// OnMessage receives every accepted push-channel message.
	OnMessage func(domain.Message)
	// OnStateChange fires on every state transition.
	OnStateChange func(State)
	// OnFailure fires once when reconnection attempts are exhausted.
	OnFailure func(error)
}

// Manager maintains one viewer connection to the push channel.
type Manager struct {
	cfg       Config
	clock     clockwork.Clock
	callbacks Callbacks

	mu         sync.Mutex
	state      State
	conn       *websocket.Conn
	attempts   int
	deliberate bool
	seen       map[string]struct{}
}

// NewManager creates a manager; call Connect to open the connection.
func NewManager(cfg Config, clock clockwork.Clock, callbacks Callbacks) *Manager {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.SeenEventCap <= 0 {
		cfg.SeenEventCap = defaultSeenEventCap
	}

	return &Manager{
		cfg:       cfg,
		clock:     clock,
		callbacks: callbacks,
		state:     StateDisconnected,
		seen:      make(map[string]struct{}),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect starts the first connection attempt. A no-op unless the manager
// is currently disconnected.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.state != StateDisconnected {
		m.mu.Unlock()
		return
	}
	m.deliberate = false
	m.attempts = 1
	m.setStateLocked(StateConnecting)
	m.mu.Unlock()

	go m.dial()
}

// Disconnect closes the connection deliberately. Terminal: no reconnection
// is attempted.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.deliberate = true
	conn := m.conn
	m.conn = nil
	m.setStateLocked(StateDisconnected)
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (m *Manager) dial() {
	conn, resp, err := websocket.DefaultDialer.Dial(m.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	m.mu.Lock()
	if m.deliberate {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		m.mu.Unlock()
		slog.Debug("Dial failed", "url", m.cfg.URL, "error", err)
		m.scheduleReconnect(err)
		return
	}

	m.conn = conn
	m.attempts = 0
	m.setStateLocked(StateConnected)
	m.mu.Unlock()

	slog.Info("Connected", "url", m.cfg.URL)
	go m.readLoop(conn)
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()

			m.mu.Lock()
			deliberate := m.deliberate
			m.conn = nil
			m.mu.Unlock()

			if deliberate {
				return
			}
			slog.Info("Connection lost", "error", err)
			m.scheduleReconnect(err)
			return
		}

		msg, err := domain.Decode(data)
		if err != nil {
			// Fire-and-forget telemetry: malformed frames are dropped
			// and the connection stays up.
			slog.Debug("Dropping malformed message", "error", err)
			continue
		}

		if ext, ok := msg.(domain.ExternalEventMessage); ok && !m.acceptExternal(ext) {
			continue
		}

		if m.callbacks.OnMessage != nil {
			m.callbacks.OnMessage(msg)
		}
	}
}

// scheduleReconnect decides between retrying after the fixed delay and
// giving up. At most one attempt is ever in flight: only the goroutine
// that observed the failure reaches this point.
func (m *Manager) scheduleReconnect(cause error) {
	m.mu.Lock()
	if m.deliberate {
		m.setStateLocked(StateDisconnected)
		m.mu.Unlock()
		return
	}
	if m.attempts >= m.cfg.MaxAttempts {
		m.setStateLocked(StateDisconnected)
		m.mu.Unlock()
		slog.Error("Giving up reconnecting", "attempts", m.cfg.MaxAttempts)
		if m.callbacks.OnFailure != nil {
			m.callbacks.OnFailure(fmt.Errorf("connection failed after %d attempts: %w", m.cfg.MaxAttempts, cause))
		}
		return
	}
	m.setStateLocked(StateReconnecting)
	m.mu.Unlock()

	go func() {
		timer := m.clock.NewTimer(m.cfg.RetryDelay)
		defer timer.Stop()
		<-timer.Chan()

		m.mu.Lock()
		if m.deliberate {
			m.setStateLocked(StateDisconnected)
			m.mu.Unlock()
			return
		}
		m.attempts++
		attempt := m.attempts
		m.setStateLocked(StateConnecting)
		m.mu.Unlock()

		slog.Info("Reconnecting", "attempt", attempt, "max_attempts", m.cfg.MaxAttempts)
		m.dial()
	}()
}

// acceptExternal applies the role filter and duplicate suppression.
func (m *Manager) acceptExternal(ext domain.ExternalEventMessage) bool {
	if ext.Topic == m.cfg.AdminTopic && m.cfg.Role != RoleAdmin {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.seen[ext.Event.ID]; dup {
		slog.Debug("Dropping duplicate event", "event_id", ext.Event.ID)
		return false
	}
	if len(m.seen) >= m.cfg.SeenEventCap {
		// Wholesale clear at the cap; cheap but allows an old id to be
		// re-accepted afterwards.
		m.seen = make(map[string]struct{})
	}
	m.seen[ext.Event.ID] = struct{}{}
	return true
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.state = s
	if m.callbacks.OnStateChange != nil {
		m.callbacks.OnStateChange(s)
	}
}
