package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openticket/helpdesk/internal/api/dto"
	"github.com/openticket/helpdesk/internal/events"
	"github.com/openticket/helpdesk/internal/service"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

// NotificationsHandler lets administrators push custom messages to realtime clients.
type NotificationsHandler struct {
	notifier *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifier *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifier: notifier}
}

// Send POST /notifications.
func (h *NotificationsHandler) Send(c *fiber.Ctx) error {
	var req dto.NotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return apperrors.NewValidationError("message required", map[string]any{"fields": []string{"message"}})
	}
	severity, ok := events.ParseSeverity(req.NotificationType)
	if !ok {
		return apperrors.NewValidationError("invalid notification_type", map[string]any{
			"notification_type": req.NotificationType,
			"allowed":           []events.Severity{events.SeverityInfo, events.SeveritySuccess, events.SeverityWarning, events.SeverityError},
		})
	}
	h.notifier.NotifySystemMessage(message, severity)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"type":              events.KindCustomNotification,
		"message":           message,
		"notification_type": severity,
	})
}
