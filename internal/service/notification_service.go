package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openticket/helpdesk/internal/api/dto"
	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/events"
)

// NotificationService turns domain happenings into broadcast messages.
type NotificationService struct {
	publisher events.Publisher
	logger    *zap.Logger
}

// NewNotificationService creates the service. A nil publisher makes every call a no-op.
func NewNotificationService(publisher events.Publisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{publisher: publisher, logger: logger}
}

func (n *NotificationService) NotifyTicketCreated(ticket *domain.Ticket) {
	n.notifyTicket(events.KindTicketCreated, ticket)
}

func (n *NotificationService) NotifyTicketUpdated(ticket *domain.Ticket) {
	n.notifyTicket(events.KindTicketUpdated, ticket)
}

func (n *NotificationService) NotifyTicketResolved(ticket *domain.Ticket) {
	n.notifyTicket(events.KindTicketResolved, ticket)
}

// NotifySystemMessage broadcasts a custom_notification.
func (n *NotificationService) NotifySystemMessage(message string, severity events.Severity) {
	n.publish(events.CustomMessage(message, severity))
}

// NotifyUserAction broadcasts "User <username> performed: <action>[ on <target>]".
func (n *NotificationService) NotifyUserAction(user *domain.User, action, target string) {
	username := "anonymous"
	if user != nil {
		username = user.Username
	}
	message := fmt.Sprintf("User %s performed: %s", username, action)
	if target != "" {
		message += " on " + target
	}
	n.NotifySystemMessage(message, events.SeverityInfo)
}

func (n *NotificationService) NotifyError(message string) {
	n.NotifySystemMessage("Error: "+message, events.SeverityError)
}

func (n *NotificationService) NotifySuccess(message string) {
	n.NotifySystemMessage(message, events.SeveritySuccess)
}

func (n *NotificationService) NotifyWarning(message string) {
	n.NotifySystemMessage(message, events.SeverityWarning)
}

func (n *NotificationService) notifyTicket(kind events.Kind, ticket *domain.Ticket) {
	if ticket == nil {
		return
	}
	n.logger.Debug("ticket notification", zap.String("type", string(kind)), zap.Int64("ticket_id", ticket.ID))
	n.publish(events.TicketMessage(kind, dto.NewTicketResponse(ticket)))
}

func (n *NotificationService) publish(msg events.Message) {
	if n == nil || n.publisher == nil {
		return
	}
	n.publisher.Publish(msg)
}
