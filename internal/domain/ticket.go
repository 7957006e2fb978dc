package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Choice pairs a stored value with its human label.
type Choice struct {
	Value string
	Label string
}

var statusLabels = map[TicketStatus]string{
	TicketStatusOpen:       "Open",
	TicketStatusInProgress: "In Progress",
	TicketStatusResolved:   "Resolved",
	TicketStatusCancelled:  "Cancelled",
}

var priorityLabels = map[TicketPriority]string{
	TicketPriorityLow:    "Low",
	TicketPriorityMedium: "Medium",
	TicketPriorityHigh:   "High",
	TicketPriorityUrgent: "Urgent",
}

// Statuses lists every status in display order.
func Statuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled}
}

// Priorities lists every priority in ascending urgency.
func Priorities() []TicketPriority {
	return []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent}
}

// ValidStatus reports whether s is a defined status.
func ValidStatus(s TicketStatus) bool {
	_, ok := statusLabels[s]
	return ok
}

// ValidPriority reports whether p is a defined priority.
func ValidPriority(p TicketPriority) bool {
	_, ok := priorityLabels[p]
	return ok
}

// IsTerminal reports whether no update or resolve may be applied from s.
func IsTerminal(s TicketStatus) bool {
	return s == TicketStatusResolved || s == TicketStatusCancelled
}

// NonEditableStatuses returns the statuses blocked on the update path.
func NonEditableStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusResolved, TicketStatusCancelled}
}

// StatusLabel returns the display label, or the raw value when unknown.
func StatusLabel(s TicketStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// PriorityLabel returns the display label, or the raw value when unknown.
func PriorityLabel(p TicketPriority) string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return string(p)
}

// StatusChoices returns all statuses as form choices.
func StatusChoices() []Choice {
	choices := make([]Choice, 0, len(statusLabels))
	for _, s := range Statuses() {
		choices = append(choices, Choice{Value: string(s), Label: statusLabels[s]})
	}
	return choices
}

// EditableStatusChoices omits resolved; resolving goes through its own operation.
func EditableStatusChoices() []Choice {
	return []Choice{
		{Value: string(TicketStatusOpen), Label: statusLabels[TicketStatusOpen]},
		{Value: string(TicketStatusInProgress), Label: statusLabels[TicketStatusInProgress]},
		{Value: string(TicketStatusCancelled), Label: statusLabels[TicketStatusCancelled]},
	}
}

// PriorityChoices returns all priorities as form choices.
func PriorityChoices() []Choice {
	choices := make([]Choice, 0, len(priorityLabels))
	for _, p := range Priorities() {
		choices = append(choices, Choice{Value: string(p), Label: priorityLabels[p]})
	}
	return choices
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	Priority     TicketPriority
	Department   string
	Status       TicketStatus
	CreatedByID  int64
	CreatedBy    *User
	AssignedToID *int64
	AssignedTo   *User
	UpdatedByID  *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// IsCreatedBy reports whether the user created the ticket.
func (t *Ticket) IsCreatedBy(user *User) bool {
	return user != nil && t.CreatedByID == user.ID
}

// IsAssignedTo reports whether the user is the ticket's assignee.
func (t *Ticket) IsAssignedTo(user *User) bool {
	return user != nil && t.AssignedToID != nil && *t.AssignedToID == user.ID
}
