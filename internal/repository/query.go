package repository

import (
	"strings"

	"github.com/openticket/helpdesk/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TicketFilter narrows ticket queries. Zero values match everything.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Department *string
	SearchTerm *string
	// TitleTerm matches title only, case-insensitively.
	TitleTerm *string
	// VisibleTo restricts results to tickets created by or assigned to the user.
	VisibleTo *int64
}

// TicketSort is an ordering key, optionally prefixed with "-" for descending.
type TicketSort string

const DefaultTicketSort TicketSort = "-created_at"

var sortColumns = map[string]string{
	"created_at": "t.created_at",
	"updated_at": "t.updated_at",
	"priority":   "CASE t.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'urgent' THEN 4 END",
}

// ParseTicketSort returns the sort for raw, falling back to the default for unknown keys.
func ParseTicketSort(raw string) TicketSort {
	raw = strings.TrimSpace(raw)
	if _, ok := sortColumns[strings.TrimPrefix(raw, "-")]; !ok {
		return DefaultTicketSort
	}
	return TicketSort(raw)
}

// Field returns the sort key without its direction prefix.
func (s TicketSort) Field() string {
	return strings.TrimPrefix(string(s), "-")
}

// Descending reports whether the sort is reversed.
func (s TicketSort) Descending() bool {
	return strings.HasPrefix(string(s), "-")
}

func (s TicketSort) orderBy() string {
	column, ok := sortColumns[s.Field()]
	if !ok {
		return "t.created_at DESC, t.id DESC"
	}
	direction := "ASC"
	if s.Descending() {
		direction = "DESC"
	}
	return column + " " + direction + ", t.id " + direction
}

// PageRequest is a 1-based page selector.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps page and size to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// TotalPages returns the number of pages needed for Total items.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrevious reports whether an earlier page exists.
func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}
