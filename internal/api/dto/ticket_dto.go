package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/openticket/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Status is accepted and ignored.
type CreateTicketRequest struct {
	Title       string                `json:"title" form:"title"`
	Description string                `json:"description" form:"description"`
	Priority    domain.TicketPriority `json:"priority" form:"priority"`
	Department  string                `json:"department" form:"department"`
	Status      domain.TicketStatus   `json:"status" form:"status"`
}

// UpdateTicketRequest payload for PUT and PATCH. Absent fields stay untouched.
type UpdateTicketRequest struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	Priority     *domain.TicketPriority `json:"priority"`
	Department   *string                `json:"department"`
	Status       *domain.TicketStatus   `json:"status"`
	AssignedToID json.RawMessage        `json:"assigned_to_id"`
}

// Assignment decodes assigned_to_id: present reports whether the key was sent,
// id is nil when it was sent as null.
func (r UpdateTicketRequest) Assignment() (id *int64, present bool, err error) {
	raw := bytes.TrimSpace(r.AssignedToID)
	if len(raw) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, true, nil
	}
	var value int64
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, true, err
	}
	return &value, true, nil
}

// TicketResponse is the read model shared by the API and broadcast payloads.
type TicketResponse struct {
	ID              int64                 `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Priority        domain.TicketPriority `json:"priority"`
	PriorityDisplay string                `json:"priority_display"`
	Department      string                `json:"department"`
	Status          domain.TicketStatus   `json:"status"`
	StatusDisplay   string                `json:"status_display"`
	CreatedBy       UserResponse          `json:"created_by"`
	AssignedTo      *UserResponse         `json:"assigned_to"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TicketPageResponse wraps a paginated listing.
type TicketPageResponse struct {
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Results  []TicketResponse `json:"results"`
}

// TicketStatsResponse counts tickets per status.
type TicketStatsResponse struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Cancelled  int `json:"cancelled"`
}

// NotificationRequest payload for admin broadcast messages.
type NotificationRequest struct {
	Message          string `json:"message"`
	NotificationType string `json:"notification_type"`
}

// NewTicketResponse maps a ticket with its loaded users.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	createdBy := UserResponse{ID: ticket.CreatedByID}
	if ticket.CreatedBy != nil {
		createdBy = NewUserResponse(ticket.CreatedBy)
	}
	var assignedTo *UserResponse
	if ticket.AssignedTo != nil {
		resp := NewUserResponse(ticket.AssignedTo)
		assignedTo = &resp
	} else if ticket.AssignedToID != nil {
		assignedTo = &UserResponse{ID: *ticket.AssignedToID}
	}
	return TicketResponse{
		ID:              ticket.ID,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Priority:        ticket.Priority,
		PriorityDisplay: domain.PriorityLabel(ticket.Priority),
		Department:      ticket.Department,
		Status:          ticket.Status,
		StatusDisplay:   domain.StatusLabel(ticket.Status),
		CreatedBy:       createdBy,
		AssignedTo:      assignedTo,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
