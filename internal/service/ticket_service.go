package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/repository"
	"github.com/openticket/helpdesk/internal/workflow"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows for both the API and the rendered UI.
// API methods apply the role-group policy and per-user scoping; the UI methods
// apply the ownership policy over all tickets.
type TicketService struct {
	tickets  repository.TicketRepository
	users    repository.UserRepository
	stats    repository.StatsCache
	notifier *NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	StatsCache repository.StatsCache
	Notifier   *NotificationService
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TicketListInput describes a listing request.
type TicketListInput struct {
	Filter repository.TicketFilter
	Sort   repository.TicketSort
	Page   repository.PageRequest
}

// TicketStats counts tickets per status.
type TicketStats struct {
	Total    int
	ByStatus map[domain.TicketStatus]int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:  deps.TicketRepo,
		users:    deps.UserRepo,
		stats:    deps.StatsCache,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		now:      deps.Clock,
	}
	if svc.stats == nil {
		svc.stats = repository.NopStatsCache{}
	}
	if svc.notifier == nil {
		svc.notifier = NewNotificationService(nil, nil)
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Create opens a ticket on behalf of any authenticated user.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, fields workflow.CreateFields) (*domain.Ticket, error) {
	ticket, err := workflow.NewTicket(fields, actor, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "ticket created", ticket)
	s.notifier.NotifyTicketCreated(ticket)
	return ticket, nil
}

// List returns the actor's visible tickets. Requires a support-read role.
func (s *TicketService) List(ctx context.Context, actor *domain.User, input TicketListInput) (repository.Page[domain.Ticket], error) {
	if err := auth.APIReadPolicy(actor); err != nil {
		return repository.Page[domain.Ticket]{}, err
	}
	filter := input.Filter
	filter.VisibleTo = visibilityScope(actor)
	return s.tickets.Query(ctx, filter, input.Sort, input.Page)
}

// Get returns a ticket inside the actor's scope. Requires a support-read role.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Ticket, error) {
	if err := auth.APIReadPolicy(actor); err != nil {
		return nil, err
	}
	return s.getScoped(ctx, actor, id)
}

// Update applies fields to a ticket. Requires a support-update role.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, id int64, fields workflow.UpdateFields) (*domain.Ticket, error) {
	if err := auth.APIUpdatePolicy(actor); err != nil {
		return nil, err
	}
	ticket, err := s.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, ticket, fields, actor)
}

// Resolve marks a ticket resolved. Requires a support-update role.
func (s *TicketService) Resolve(ctx context.Context, actor *domain.User, id int64) (*domain.Ticket, error) {
	if err := auth.APIUpdatePolicy(actor); err != nil {
		return nil, err
	}
	ticket, err := s.getScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Resolve(ticket, actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.afterMutation(ctx, "ticket resolved", ticket)
	s.notifier.NotifyTicketResolved(ticket)
	return ticket, nil
}

// Stats counts the actor's visible tickets per status, using the cache when warm.
func (s *TicketService) Stats(ctx context.Context, actor *domain.User) (TicketStats, error) {
	if actor == nil {
		return TicketStats{}, apperrors.NewUnauthorized("authentication credentials were not provided")
	}
	scope := visibilityScope(actor)
	key := "all"
	if scope != nil {
		key = "user:" + strconv.FormatInt(*scope, 10)
	}

	counts, slot, ok := s.stats.Get(ctx, key)
	if !ok {
		var err error
		counts, err = s.tickets.CountByStatus(ctx, repository.TicketFilter{VisibleTo: scope})
		if err != nil {
			return TicketStats{}, err
		}
		s.stats.Set(ctx, slot, counts)
	}

	stats := TicketStats{ByStatus: make(map[domain.TicketStatus]int, len(domain.Statuses()))}
	for _, status := range domain.Statuses() {
		stats.ByStatus[status] = counts[status]
		stats.Total += counts[status]
	}
	return stats, nil
}

// ListAll powers the dashboard: every live ticket, no role check.
func (s *TicketService) ListAll(ctx context.Context, input TicketListInput) (repository.Page[domain.Ticket], error) {
	return s.tickets.Query(ctx, input.Filter, input.Sort, input.Page)
}

// GetAny loads a ticket regardless of the viewer.
func (s *TicketService) GetAny(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return ticket, nil
}

// EditableByOwner loads a ticket for the edit form. The status check runs
// before the ownership check, so a terminal ticket reports INVALID_TRANSITION
// to any viewer.
func (s *TicketService) EditableByOwner(ctx context.Context, actor *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.GetAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if domain.IsTerminal(ticket.Status) {
		return ticket, apperrors.NewInvalidTransition("Cannot edit resolved or cancelled tickets.", map[string]any{"id": ticket.ID, "status": ticket.Status})
	}
	if err := auth.OwnerPolicy(actor, ticket); err != nil {
		return ticket, err
	}
	return ticket, nil
}

// UpdateAsOwner applies a form update under the creator/assignee/superuser rule.
func (s *TicketService) UpdateAsOwner(ctx context.Context, actor *domain.User, id int64, fields workflow.UpdateFields) (*domain.Ticket, error) {
	ticket, err := s.EditableByOwner(ctx, actor, id)
	if err != nil {
		return ticket, err
	}
	return s.applyUpdate(ctx, ticket, fields, actor)
}

func (s *TicketService) applyUpdate(ctx context.Context, ticket *domain.Ticket, fields workflow.UpdateFields, actor *domain.User) (*domain.Ticket, error) {
	if fields.AssignedTo != nil && fields.AssignedTo.ID != nil {
		if _, err := s.users.GetByID(ctx, *fields.AssignedTo.ID); err != nil {
			if apperrors.HasCode(apperrors.ToDomainError(err), apperrors.CodeNotFound) {
				return nil, apperrors.NewValidationError("assigned user does not exist", map[string]any{"assigned_to_id": *fields.AssignedTo.ID})
			}
			return nil, err
		}
	}
	if err := workflow.ApplyUpdate(ticket, fields, actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.afterMutation(ctx, "ticket updated", ticket)
	s.notifier.NotifyTicketUpdated(ticket)
	return ticket, nil
}

func (s *TicketService) getScoped(ctx context.Context, actor *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	if !actor.IsSuperuser && !ticket.IsCreatedBy(actor) && !ticket.IsAssignedTo(actor) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, nil
}

func (s *TicketService) afterMutation(ctx context.Context, msg string, ticket *domain.Ticket) {
	s.stats.Invalidate(ctx)
	s.logger.Info(msg, zap.Int64("ticket_id", ticket.ID), zap.String("status", string(ticket.Status)))
}

// visibilityScope returns nil for superusers, who see every ticket.
func visibilityScope(actor *domain.User) *int64 {
	if actor.IsSuperuser {
		return nil
	}
	id := actor.ID
	return &id
}

func notFound(err error, id int64) error {
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code == apperrors.CodeNotFound {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return domainErr
}
