// Package workflow holds the ticket state machine: which fields a mutation may
// touch and which statuses permit it. Callers run the role or ownership checks
// before invoking anything here.
package workflow

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openticket/helpdesk/internal/domain"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

// Column widths of the tickets table, counted in characters.
const (
	maxTitleLength      = 200
	maxDepartmentLength = 100
)

// CreateFields is the caller-supplied input for a new ticket.
type CreateFields struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Department  string
	// Status is accepted for payload compatibility and always ignored.
	Status domain.TicketStatus
}

// Assignee carries an assignment change; a nil ID clears the assignee.
type Assignee struct {
	ID *int64
}

// UpdateFields is a partial update; nil fields are left untouched.
type UpdateFields struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Department  *string
	Status      *domain.TicketStatus
	AssignedTo  *Assignee
}

// NewTicket builds an OPEN ticket owned by creator.
func NewTicket(fields CreateFields, creator *domain.User, now time.Time) (*domain.Ticket, error) {
	if creator == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	title := strings.TrimSpace(fields.Title)
	description := strings.TrimSpace(fields.Description)
	missing := []string{}
	if title == "" {
		missing = append(missing, "title")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if fields.Priority == "" {
		missing = append(missing, "priority")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(strings.Join(missing, ", ")+" required", map[string]any{"fields": missing})
	}
	if !domain.ValidPriority(fields.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": fields.Priority})
	}
	department := strings.TrimSpace(fields.Department)
	if err := checkLengths(title, department); err != nil {
		return nil, err
	}

	return &domain.Ticket{
		Title:       title,
		Description: description,
		Priority:    fields.Priority,
		Department:  department,
		Status:      domain.TicketStatusOpen,
		CreatedByID: creator.ID,
		CreatedBy:   creator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyUpdate mutates ticket in place. Tickets in a non-editable status are
// rejected before any field is inspected.
func ApplyUpdate(ticket *domain.Ticket, fields UpdateFields, actor *domain.User, now time.Time) error {
	if err := ensureEditable(ticket, "Cannot edit resolved or cancelled tickets."); err != nil {
		return err
	}
	if err := validateUpdate(fields); err != nil {
		return err
	}

	if fields.Title != nil {
		ticket.Title = strings.TrimSpace(*fields.Title)
	}
	if fields.Description != nil {
		ticket.Description = strings.TrimSpace(*fields.Description)
	}
	if fields.Priority != nil {
		ticket.Priority = *fields.Priority
	}
	if fields.Department != nil {
		ticket.Department = strings.TrimSpace(*fields.Department)
	}
	if fields.Status != nil {
		ticket.Status = *fields.Status
	}
	if fields.AssignedTo != nil {
		ticket.AssignedToID = fields.AssignedTo.ID
		ticket.AssignedTo = nil
	}
	stamp(ticket, actor, now)
	return nil
}

// Resolve moves ticket to RESOLVED. A second call fails rather than no-ops.
func Resolve(ticket *domain.Ticket, actor *domain.User, now time.Time) error {
	if err := ensureEditable(ticket, "Cannot resolve resolved or cancelled tickets."); err != nil {
		return err
	}
	ticket.Status = domain.TicketStatusResolved
	stamp(ticket, actor, now)
	return nil
}

func ensureEditable(ticket *domain.Ticket, message string) error {
	if domain.IsTerminal(ticket.Status) {
		return apperrors.NewInvalidTransition(message, map[string]any{
			"id":     ticket.ID,
			"status": ticket.Status,
		})
	}
	return nil
}

func checkLengths(title, department string) error {
	if utf8.RuneCountInString(title) > maxTitleLength {
		return apperrors.NewValidationError("title must be at most 200 characters", map[string]any{"fields": []string{"title"}, "max_length": maxTitleLength})
	}
	if utf8.RuneCountInString(department) > maxDepartmentLength {
		return apperrors.NewValidationError("department must be at most 100 characters", map[string]any{"fields": []string{"department"}, "max_length": maxDepartmentLength})
	}
	return nil
}

func validateUpdate(fields UpdateFields) error {
	if fields.Title != nil && strings.TrimSpace(*fields.Title) == "" {
		return apperrors.NewValidationError("title required", map[string]any{"fields": []string{"title"}})
	}
	if fields.Description != nil && strings.TrimSpace(*fields.Description) == "" {
		return apperrors.NewValidationError("description required", map[string]any{"fields": []string{"description"}})
	}
	if fields.Priority != nil && !domain.ValidPriority(*fields.Priority) {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *fields.Priority})
	}
	title, department := "", ""
	if fields.Title != nil {
		title = strings.TrimSpace(*fields.Title)
	}
	if fields.Department != nil {
		department = strings.TrimSpace(*fields.Department)
	}
	if err := checkLengths(title, department); err != nil {
		return err
	}
	if fields.Status != nil && !domain.ValidStatus(*fields.Status) {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": *fields.Status})
	}
	return nil
}

func stamp(ticket *domain.Ticket, actor *domain.User, now time.Time) {
	if actor != nil {
		id := actor.ID
		ticket.UpdatedByID = &id
	}
	ticket.UpdatedAt = now
}
