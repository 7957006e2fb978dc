package events

import (
	"time"

	"github.com/openticket/helpdesk/internal/api/dto"
)

// DefaultGroup is the broadcast group every realtime connection joins.
const DefaultGroup = "ticket_notifications"

// Kind enumerates the message types sent to realtime clients.
type Kind string

const (
	KindTicketCreated      Kind = "ticket_created"
	KindTicketUpdated      Kind = "ticket_updated"
	KindTicketResolved     Kind = "ticket_resolved"
	KindCustomNotification Kind = "custom_notification"
	// KindNotification is emitted for chat-style frames sent by clients.
	KindNotification Kind = "notification"
)

// IsTicketKind reports whether k carries a ticket payload.
func IsTicketKind(k Kind) bool {
	return k == KindTicketCreated || k == KindTicketUpdated || k == KindTicketResolved
}

// Severity tags a custom notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity maps raw input to a Severity; empty input means info.
func ParseSeverity(raw string) (Severity, bool) {
	switch Severity(raw) {
	case "":
		return SeverityInfo, true
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
		return Severity(raw), true
	default:
		return "", false
	}
}

// Message is the JSON frame written to realtime clients.
type Message struct {
	Type             Kind                `json:"type"`
	Ticket           *dto.TicketResponse `json:"ticket,omitempty"`
	Message          *string             `json:"message,omitempty"`
	NotificationType Severity            `json:"notification_type,omitempty"`
}

// TicketMessage builds a ticket lifecycle frame.
func TicketMessage(kind Kind, ticket dto.TicketResponse) Message {
	return Message{Type: kind, Ticket: &ticket}
}

// CustomMessage builds a custom_notification frame.
func CustomMessage(text string, severity Severity) Message {
	if severity == "" {
		severity = SeverityInfo
	}
	return Message{Type: KindCustomNotification, Message: &text, NotificationType: severity}
}

// EchoMessage builds the legacy notification frame for client-sent text.
func EchoMessage(text string) Message {
	return Message{Type: KindNotification, Message: &text}
}

// Event is a published notification with its delivery metadata. It is never persisted.
type Event struct {
	ID        string
	Group     string
	Message   Message
	Timestamp time.Time
}
