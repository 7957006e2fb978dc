// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/repository"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
}

func NewUsers(users ...*domain.User) *Users {
	repo := &Users{byID: map[int64]*domain.User{}}
	for _, u := range users {
		_ = repo.Create(context.Background(), u)
	}
	return repo
}

func (m *Users) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	} else if user.ID > m.nextID {
		m.nextID = user.ID
	}
	user.Email = strings.ToLower(user.Email)
	copied := *user
	m.byID[user.ID] = &copied
	return nil
}

func (m *Users) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (m *Users) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := map[int64]*domain.User{}
	for _, id := range ids {
		if u, err := m.GetByID(ctx, id); err == nil {
			out[id] = u
		}
	}
	return out, nil
}

func (m *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (m *Users) List(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Tickets is an in-memory repository.TicketRepository. Query orders by id descending.
type Tickets struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Ticket
	users  *Users
	Saves  int
}

func NewTickets(users *Users) *Tickets {
	return &Tickets{rows: map[int64]domain.Ticket{}, users: users}
}

func (m *Tickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	m.nextID++
	ticket.ID = m.nextID
	m.rows[ticket.ID] = *ticket
	m.mu.Unlock()
	m.hydrate(ctx, ticket)
	return nil
}

func (m *Tickets) Save(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	if _, ok := m.rows[ticket.ID]; !ok {
		m.mu.Unlock()
		return apperrors.NewNotFound("ticket", nil)
	}
	m.rows[ticket.ID] = *ticket
	m.Saves++
	m.mu.Unlock()
	m.hydrate(ctx, ticket)
	return nil
}

func (m *Tickets) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	m.mu.Lock()
	row, ok := m.rows[id]
	m.mu.Unlock()
	if !ok || row.DeletedAt != nil {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	m.hydrate(ctx, &row)
	return &row, nil
}

func (m *Tickets) Query(ctx context.Context, filter repository.TicketFilter, _ repository.TicketSort, page repository.PageRequest) (repository.Page[domain.Ticket], error) {
	page = page.Normalize()
	matched := m.match(filter)
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	items := matched[start:end]
	for i := range items {
		m.hydrate(ctx, &items[i])
	}
	return repository.Page[domain.Ticket]{Items: items, Total: len(matched), Page: page.Page, PageSize: page.PageSize}, nil
}

func (m *Tickets) CountByStatus(_ context.Context, filter repository.TicketFilter) (map[domain.TicketStatus]int, error) {
	counts := map[domain.TicketStatus]int{}
	for _, t := range m.match(filter) {
		counts[t.Status]++
	}
	return counts, nil
}

func (m *Tickets) match(filter repository.TicketFilter) []domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Ticket
	for _, t := range m.rows {
		if t.DeletedAt != nil {
			continue
		}
		if filter.VisibleTo != nil && t.CreatedByID != *filter.VisibleTo && (t.AssignedToID == nil || *t.AssignedToID != *filter.VisibleTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, t.Priority) {
			continue
		}
		if filter.Department != nil && *filter.Department != "" && t.Department != *filter.Department {
			continue
		}
		if filter.SearchTerm != nil && !containsFold(t.Title, *filter.SearchTerm) && !containsFold(t.Description, *filter.SearchTerm) {
			continue
		}
		if filter.TitleTerm != nil && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(*filter.TitleTerm)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (m *Tickets) hydrate(ctx context.Context, t *domain.Ticket) {
	if m.users == nil {
		return
	}
	t.CreatedBy, _ = m.users.GetByID(ctx, t.CreatedByID)
	t.AssignedTo = nil
	if t.AssignedToID != nil {
		t.AssignedTo, _ = m.users.GetByID(ctx, *t.AssignedToID)
	}
}

// SoftDelete stamps deleted_at so the ticket disappears from reads.
func (m *Tickets) SoftDelete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[id]
	now := time.Now()
	row.DeletedAt = &now
	m.rows[id] = row
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

var (
	_ repository.UserRepository   = (*Users)(nil)
	_ repository.TicketRepository = (*Tickets)(nil)
)
