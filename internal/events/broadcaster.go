package events

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transport delivers an event to every connection joined to its group.
// Delivery is asynchronous and best effort.
type Transport interface {
	Broadcast(event Event) error
}

// Publisher is what request handlers use to emit notifications.
type Publisher interface {
	Publish(msg Message)
}

// Broadcaster publishes notifications to the single broadcast group. It never
// reports failure to the caller: the ticket write is the transaction of record.
type Broadcaster struct {
	transport Transport
	group     string
	logger    *zap.Logger
	now       func() time.Time
}

// NewBroadcaster builds a broadcaster. A nil transport turns every publish into a no-op.
func NewBroadcaster(transport Transport, group string, logger *zap.Logger) *Broadcaster {
	if group == "" {
		group = DefaultGroup
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{transport: transport, group: group, logger: logger, now: time.Now}
}

// Publish hands msg to the transport and returns without waiting for delivery.
func (b *Broadcaster) Publish(msg Message) {
	if b == nil || b.transport == nil {
		return
	}
	event := Event{
		ID:        uuid.NewString(),
		Group:     b.group,
		Message:   msg,
		Timestamp: b.now(),
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("notification publish panicked", zap.Any("panic", r), zap.String("type", string(msg.Type)))
		}
	}()
	if err := b.transport.Broadcast(event); err != nil {
		b.logger.Warn("notification publish failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(msg.Type)),
			zap.Error(err))
		return
	}
	b.logger.Debug("notification published",
		zap.String("event_id", event.ID),
		zap.String("group", event.Group),
		zap.String("type", string(msg.Type)))
}

// Group returns the group this broadcaster targets.
func (b *Broadcaster) Group() string {
	return b.group
}
