package hub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/mwalther/pulseboard/internal/domain"
	"github.com/mwalther/pulseboard/internal/metrics"
)

const (
	commandTimeout  = 5 * time.Second
	snapshotTimeout = 2 * time.Second
	stopTimeout     = 10 * time.Second
)

// SnapshotFunc supplies the full snapshot sent to every new connection.
type SnapshotFunc func(ctx context.Context) (domain.Snapshot, error)

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type broadcastCmd struct {
	baseHubCmd
	messageType domain.MessageType
	data        []byte
}

type clientCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub manages viewer connections and fans broadcast messages out to all
// of them.
type Hub struct {
	cmdCh      chan hubCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	snapshot   SnapshotFunc
	maxClients int
	done       chan struct{}
}

// New creates a hub and starts its loop. snapshot is consulted on every
// register; maxClients caps concurrent connections (0 means unlimited).
func New(snapshot SnapshotFunc, clock clockwork.Clock, maxClients int) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		snapshot:   snapshot,
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

// Register adds a connection and queues its initial snapshot. Returns an
// error if the hub is full or the snapshot could not be fetched; the
// connection is closed in both cases.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a connection. Idempotent: unknown connections are
// ignored.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- unregisterCmd{connection: conn}
}

// Broadcast delivers msg to every connected viewer, best effort. The
// enqueue is non-blocking: if the hub is saturated the message is dropped
// and counted, never retried.
func (h *Hub) Broadcast(msg domain.Message) {
	data, err := domain.Encode(msg)
	if err != nil {
		slog.Error("Failed to encode broadcast message", "error", err)
		return
	}

	select {
	case h.cmdCh <- broadcastCmd{messageType: domain.TypeOf(msg), data: data}:
	default:
		metrics.HubBroadcastsDropped.Inc()
		slog.Warn("Broadcast dropped: hub command channel full")
	}
}

// ClientCount returns the number of connected viewers, or -1 if the
// command times out.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- clientCountCmd{replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the hub, closing all connections gracefully. Blocks
// until the hub goroutine has exited or the stop timeout is reached.
func (h *Hub) Stop() {
	select {
	case h.cmdCh <- stopCmd{}:
	case <-h.done:
		return
	}

	timeout := h.clock.NewTimer(stopTimeout)
	defer timeout.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Hub stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (h *Hub) run() {
	defer close(h.done)

	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			h.handleRegister(c)
		case unregisterCmd:
			h.handleUnregister(c)
		case broadcastCmd:
			h.handleBroadcast(c)
		case clientCountCmd:
			c.replyChannel <- len(h.clients)
		case stopCmd:
			h.handleStop()
			return
		default:
			slog.Warn("Hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting client: max clients reached", "max_clients", h.maxClients)
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("max clients (%d) reached", h.maxClients)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	snap, err := h.snapshot(ctx)
	cancel()
	if err != nil {
		// Every viewer starts from a full snapshot; without one the
		// connection is useless.
		metrics.HubSnapshotFailures.Inc()
		slog.Error("Rejecting client: snapshot fetch failed", "error", err)
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("initial snapshot unavailable: %w", err)
		return
	}

	data, err := domain.Encode(domain.InitialData{Snapshot: snap})
	if err != nil {
		slog.Error("Rejecting client: snapshot encode failed", "error", err)
		c.connection.Close()
		c.errorChannel <- err
		return
	}

	cw := newClientWriter(c.connection, h.clock)
	// The writer's buffer is empty at this point, so the snapshot is
	// guaranteed to be the first frame on the wire.
	cw.sendChannel <- data
	h.clients[c.connection] = cw

	metrics.HubConnectedClients.Set(float64(len(h.clients)))
	metrics.HubBroadcastsTotal.WithLabelValues(string(domain.TypeInitialData)).Inc()

	slog.Debug("Client registered", "total_clients", len(h.clients))
	c.errorChannel <- nil
}

func (h *Hub) handleUnregister(c unregisterCmd) {
	cw, exists := h.clients[c.connection]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, c.connection)

	metrics.HubConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client unregistered", "remaining_clients", len(h.clients))
}

func (h *Hub) handleBroadcast(c broadcastCmd) {
	var slow []*websocket.Conn
	for conn, writer := range h.clients {
		select {
		case writer.sendChannel <- c.data:
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow client")
		metrics.HubSlowClientsEvicted.Inc()
		h.handleUnregister(unregisterCmd{connection: conn})
	}

	metrics.HubBroadcastsTotal.WithLabelValues(string(c.messageType)).Inc()
}

func (h *Hub) handleStop() {
	slog.Info("Hub shutting down", "clients", len(h.clients))

	for conn, cw := range h.clients {
		cw.stopGraceful("Server shutting down")
		delete(h.clients, conn)
	}
	metrics.HubConnectedClients.Set(0)
}
