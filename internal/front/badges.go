package front

import (
	"html/template"

	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/domain"
)

var statusBadges = map[domain.TicketStatus]string{
	domain.TicketStatusOpen:       "success",
	domain.TicketStatusInProgress: "primary",
	domain.TicketStatusResolved:   "info",
	domain.TicketStatusCancelled:  "danger",
}

var priorityBadges = map[domain.TicketPriority]string{
	domain.TicketPriorityLow:    "success",
	domain.TicketPriorityMedium: "primary",
	domain.TicketPriorityHigh:   "warning",
	domain.TicketPriorityUrgent: "danger",
}

// StatusBadgeClass maps a status to its Bootstrap badge class.
func StatusBadgeClass(status domain.TicketStatus) string {
	if class, ok := statusBadges[status]; ok {
		return "bg-" + class
	}
	return "bg-secondary"
}

// PriorityBadgeClass maps a priority to its Bootstrap badge class.
func PriorityBadgeClass(priority domain.TicketPriority) string {
	if class, ok := priorityBadges[priority]; ok {
		return "bg-" + class
	}
	return "bg-secondary"
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"status_badge_class":   StatusBadgeClass,
		"priority_badge_class": PriorityBadgeClass,
		"status_label":         domain.StatusLabel,
		"priority_label":       domain.PriorityLabel,
		"is_terminal":          domain.IsTerminal,
		"can_edit":             auth.CanEdit,
		"add": func(a, b int) int {
			return a + b
		},
	}
}
