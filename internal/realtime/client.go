package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the lifecycle position of one connection.
type State int32

const (
	StateConnecting State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateJoined:
		return "JOINED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Client is one member of the broadcast group with its own outbound queue.
type Client struct {
	id    string
	state atomic.Int32

	mu     sync.Mutex
	send   chan []byte
	closed bool
	// kick forcibly ends the underlying connection on hub shutdown.
	kick func()
}

func newClient(buffer int) *Client {
	return &Client{id: uuid.NewString(), send: make(chan []byte, buffer)}
}

// ID identifies the client in logs.
func (c *Client) ID() string {
	return c.id
}

// State reports the connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Messages yields queued frames until the client leaves.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

func (c *Client) onDisconnect(fn func()) {
	c.mu.Lock()
	c.kick = fn
	c.mu.Unlock()
}

func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.setState(StateClosed)
}

func (c *Client) disconnect() {
	c.mu.Lock()
	kick := c.kick
	c.mu.Unlock()
	if kick != nil {
		kick()
	}
}
