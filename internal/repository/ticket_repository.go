package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openticket/helpdesk/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Soft-deleted rows are never returned.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Save(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Query(ctx context.Context, filter TicketFilter, sort TicketSort, page PageRequest) (Page[domain.Ticket], error)
	CountByStatus(ctx context.Context, filter TicketFilter) (map[domain.TicketStatus]int, error)
}

type ticketRepository struct {
	pool  *pgxpool.Pool
	users UserRepository
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool, users UserRepository) TicketRepository {
	return &ticketRepository{pool: pool, users: users}
}

const ticketColumns = `t.id, t.title, t.description, t.priority, t.department, t.status,
               t.created_by_id, t.assigned_to_id, t.updated_by_id, t.created_at, t.updated_at, t.deleted_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, priority, department, status, created_by_id, assigned_to_id, updated_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Department,
		ticket.Status,
		ticket.CreatedByID,
		ticket.AssignedToID,
		ticket.UpdatedByID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}
	return r.hydrate(ctx, []*domain.Ticket{ticket})
}

func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, priority=$3, department=$4, status=$5,
            assigned_to_id=$6, updated_by_id=$7, updated_at=NOW()
        WHERE id=$8 AND deleted_at IS NULL
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Department,
		ticket.Status,
		ticket.AssignedToID,
		ticket.UpdatedByID,
		ticket.ID,
	).Scan(&ticket.UpdatedAt); err != nil {
		return err
	}
	return r.hydrate(ctx, []*domain.Ticket{ticket})
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id=$1 AND t.deleted_at IS NULL`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, []*domain.Ticket{ticket}); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) Query(ctx context.Context, filter TicketFilter, sort TicketSort, page PageRequest) (Page[domain.Ticket], error) {
	page = page.Normalize()
	where, args := buildTicketWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM tickets t WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return Page[domain.Ticket]{}, err
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketColumns, where, sort.orderBy(), page.PageSize, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return Page[domain.Ticket]{}, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return Page[domain.Ticket]{}, err
	}

	refs := make([]*domain.Ticket, len(tickets))
	for i := range tickets {
		refs[i] = &tickets[i]
	}
	if err := r.hydrate(ctx, refs); err != nil {
		return Page[domain.Ticket]{}, err
	}

	return Page[domain.Ticket]{Items: tickets, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (r *ticketRepository) CountByStatus(ctx context.Context, filter TicketFilter) (map[domain.TicketStatus]int, error) {
	where, args := buildTicketWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT t.status, COUNT(*) FROM tickets t WHERE `+where+` GROUP BY t.status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int, len(domain.Statuses()))
	for rows.Next() {
		var (
			status domain.TicketStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// hydrate attaches creator and assignee records in one round trip.
func (r *ticketRepository) hydrate(ctx context.Context, tickets []*domain.Ticket) error {
	if r.users == nil || len(tickets) == 0 {
		return nil
	}
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(tickets)*2)
	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, ticket := range tickets {
		add(ticket.CreatedByID)
		if ticket.AssignedToID != nil {
			add(*ticket.AssignedToID)
		}
	}

	users, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, ticket := range tickets {
		ticket.CreatedBy = users[ticket.CreatedByID]
		ticket.AssignedTo = nil
		if ticket.AssignedToID != nil {
			ticket.AssignedTo = users[*ticket.AssignedToID]
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user text into a case-folded substring LIKE pattern
// with its wildcards matched literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

func buildTicketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"t.deleted_at IS NULL"}
	args := []any{}

	if filter.VisibleTo != nil {
		args = append(args, *filter.VisibleTo)
		clauses = append(clauses, fmt.Sprintf("(t.created_by_id=$%d OR t.assigned_to_id=$%d)", len(args), len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Department != nil && strings.TrimSpace(*filter.Department) != "" {
		args = append(args, strings.TrimSpace(*filter.Department))
		clauses = append(clauses, fmt.Sprintf("t.department=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, containsPattern(*filter.SearchTerm))
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(`(LOWER(t.title) LIKE %s ESCAPE '\' OR LOWER(t.description) LIKE %s ESCAPE '\')`, placeholder, placeholder))
	}

	if filter.TitleTerm != nil && strings.TrimSpace(*filter.TitleTerm) != "" {
		args = append(args, containsPattern(*filter.TitleTerm))
		clauses = append(clauses, fmt.Sprintf(`LOWER(t.title) LIKE $%d ESCAPE '\'`, len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Department,
		&ticket.Status,
		&ticket.CreatedByID,
		&ticket.AssignedToID,
		&ticket.UpdatedByID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
