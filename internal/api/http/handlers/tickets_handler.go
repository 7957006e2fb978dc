package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openticket/helpdesk/internal/api/dto"
	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/repository"
	"github.com/openticket/helpdesk/internal/service"
	"github.com/openticket/helpdesk/internal/workflow"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages the ticket API.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), user, parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketPageResponse{
		Count:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Results:  dto.NewTicketResponses(page.Items),
	})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), user, workflow.CreateFields{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Department:  req.Department,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(ticket))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// ReplaceTicket PUT /tickets/:id. Title and description are required.
func (h *TicketsHandler) ReplaceTicket(c *fiber.Ctx) error {
	return h.update(c, true)
}

// PatchTicket PATCH /tickets/:id.
func (h *TicketsHandler) PatchTicket(c *fiber.Ctx) error {
	return h.update(c, false)
}

func (h *TicketsHandler) update(c *fiber.Ctx, full bool) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if full {
		missing := []string{}
		if req.Title == nil {
			missing = append(missing, "title")
		}
		if req.Description == nil {
			missing = append(missing, "description")
		}
		if len(missing) > 0 {
			return apperrors.NewValidationError(strings.Join(missing, ", ")+" required", map[string]any{"fields": missing})
		}
	}

	fields := workflow.UpdateFields{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Department:  req.Department,
		Status:      req.Status,
	}
	assignee, present, err := req.Assignment()
	if err != nil {
		return apperrors.NewValidationError("assigned_to_id must be an integer or null", map[string]any{"fields": []string{"assigned_to_id"}})
	}
	if present {
		fields.AssignedTo = &workflow.Assignee{ID: assignee}
	}

	ticket, err := h.service.Update(c.UserContext(), user, id, fields)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// ResolveTicket POST /tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Resolve(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// Stats GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketStatsResponse{
		Total:      stats.Total,
		Open:       stats.ByStatus[domain.TicketStatusOpen],
		InProgress: stats.ByStatus[domain.TicketStatusInProgress],
		Resolved:   stats.ByStatus[domain.TicketStatusResolved],
		Cancelled:  stats.ByStatus[domain.TicketStatusCancelled],
	})
}

// DeleteTicket DELETE /tickets/:id. Tickets are never deleted through the API.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	return apperrors.NewMethodNotAllowed(`method "DELETE" not allowed`)
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication credentials were not provided")
	}
	return user, nil
}

func ticketID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("ticket", map[string]any{"id": raw})
	}
	return id, nil
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListInput {
	var filter repository.TicketFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if dept := strings.TrimSpace(c.Query("department")); dept != "" {
		filter.Department = &dept
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	return service.TicketListInput{
		Filter: filter,
		Sort:   repository.ParseTicketSort(c.Query("ordering")),
		Page: repository.PageRequest{
			Page:     c.QueryInt("page", 1),
			PageSize: c.QueryInt("page_size", repository.DefaultPageSize),
		},
	}
}
