package realtime

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/openticket/helpdesk/internal/events"
	"github.com/openticket/helpdesk/internal/observability"
)

const maxInboundFrameBytes = 64 * 1024

// Conn is the slice of a websocket connection the gateway relies on.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// GatewayOptions tunes per-connection behavior.
type GatewayOptions struct {
	WriteTimeout time.Duration
	// EchoEnabled rebroadcasts {"message": ...} frames from clients to the group.
	EchoEnabled bool
}

// Gateway serves one websocket connection per Serve call.
type Gateway struct {
	hub       *Hub
	publisher events.Publisher
	logger    *zap.Logger
	opts      GatewayOptions
}

// NewGateway wires a gateway to the hub. Echo frames go through publisher.
func NewGateway(hub *Hub, publisher events.Publisher, logger *zap.Logger, opts GatewayOptions) *Gateway {
	return &Gateway{hub: hub, publisher: publisher, logger: observability.LoggerOrNop(logger), opts: opts}
}

// Serve joins the group, pumps frames until the connection ends, then leaves.
// A reconnecting client starts over with no backlog.
func (g *Gateway) Serve(conn Conn) {
	client := g.hub.NewClient()
	client.onDisconnect(func() { _ = conn.Close() })

	if err := g.hub.Join(client); err != nil {
		g.logger.Warn("realtime join rejected", zap.Error(err))
		client.setState(StateClosed)
		_ = conn.Close()
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		g.writePump(conn, client)
	}()

	g.readPump(conn, client)

	g.hub.Leave(client)
	<-done
	_ = conn.Close()
}

func (g *Gateway) writePump(conn Conn, client *Client) {
	for payload := range client.Messages() {
		if g.opts.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(g.opts.WriteTimeout))
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			g.logger.Debug("realtime write failed", zap.String("client_id", client.ID()), zap.Error(err))
			// unblock the reader so the client leaves the group
			_ = conn.Close()
			for range client.Messages() {
			}
			return
		}
	}
}

type inboundFrame struct {
	Message *string `json:"message"`
}

func (g *Gateway) readPump(conn Conn, client *Client) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			g.logger.Debug("realtime connection closed", zap.String("client_id", client.ID()), zap.Error(err))
			return
		}
		g.handleInbound(client, data)
	}
}

func (g *Gateway) handleInbound(client *Client, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		g.logger.Warn("malformed realtime frame", zap.String("client_id", client.ID()), zap.Error(err))
		return
	}
	if frame.Message == nil {
		g.logger.Warn("realtime frame missing message", zap.String("client_id", client.ID()))
		return
	}
	if !g.opts.EchoEnabled || g.publisher == nil {
		return
	}
	g.publisher.Publish(events.EchoMessage(*frame.Message))
}

// Handler returns the fiber websocket endpoint backed by this gateway.
func (g *Gateway) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		c.SetReadLimit(maxInboundFrameBytes)
		g.Serve(c)
	})
}

// RequireUpgrade rejects plain HTTP requests on the websocket route.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
