// Package realtime keeps the broadcast group membership and serves the
// websocket connections joined to it.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/openticket/helpdesk/internal/events"
	"github.com/openticket/helpdesk/internal/observability"
)

// ErrHubClosed is returned once the hub has been shut down.
var ErrHubClosed = errors.New("realtime: hub closed")

// DefaultSendBuffer is the per-client queue length used when none is configured.
const DefaultSendBuffer = 256

// Hub is the membership registry for one broadcast group. It is created at
// process start and drained by Shutdown.
type Hub struct {
	group      string
	sendBuffer int
	logger     *zap.Logger
	metrics    *observability.Metrics

	mu      sync.RWMutex
	members map[*Client]struct{}
	closed  bool
}

// NewHub constructs a hub for group.
func NewHub(group string, sendBuffer int, logger *zap.Logger, metrics *observability.Metrics) *Hub {
	if group == "" {
		group = events.DefaultGroup
	}
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Hub{
		group:      group,
		sendBuffer: sendBuffer,
		logger:     observability.LoggerOrNop(logger),
		metrics:    metrics,
		members:    make(map[*Client]struct{}),
	}
}

// Group returns the group name served by the hub.
func (h *Hub) Group() string {
	return h.group
}

// NewClient allocates a client sized to the hub's send buffer. It is not a member until Join.
func (h *Hub) NewClient() *Client {
	return newClient(h.sendBuffer)
}

// Join adds c to the group.
func (h *Hub) Join(c *Client) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	h.members[c] = struct{}{}
	size := len(h.members)
	h.mu.Unlock()

	c.setState(StateJoined)
	h.metrics.ConnectionJoined()
	h.logger.Debug("realtime client joined", zap.String("client_id", c.ID()), zap.String("group", h.group), zap.Int("members", size))
	return nil
}

// Leave removes c from the group and closes its queue. Calling it twice is harmless.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	_, member := h.members[c]
	delete(h.members, c)
	size := len(h.members)
	h.mu.Unlock()

	c.close()
	if member {
		h.metrics.ConnectionLeft()
		h.logger.Debug("realtime client left", zap.String("client_id", c.ID()), zap.String("group", h.group), zap.Int("members", size))
	}
}

// Size returns the number of joined clients.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}

// Broadcast serializes the event once and queues it for every current member.
// The membership lock is only held while taking a snapshot; clients whose queue
// is full miss the frame.
func (h *Hub) Broadcast(event events.Event) error {
	if event.Group != h.group {
		h.logger.Debug("dropping event for unknown group", zap.String("group", event.Group))
		return nil
	}
	payload, err := json.Marshal(event.Message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	snapshot := make([]*Client, 0, len(h.members))
	for c := range h.members {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range snapshot {
		if !c.enqueue(payload) {
			dropped++
			h.logger.Debug("realtime frame dropped", zap.String("client_id", c.ID()), zap.String("event_id", event.ID))
		}
	}
	h.metrics.RecordPublish(string(event.Message.Type), len(snapshot), dropped)
	return nil
}

// Shutdown closes every member and rejects further joins and broadcasts.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	members := h.members
	h.members = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range members {
		c.close()
		c.disconnect()
		h.metrics.ConnectionLeft()
	}
	h.logger.Info("realtime hub drained", zap.Int("clients", len(members)))
}
