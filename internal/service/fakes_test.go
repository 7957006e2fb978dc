package service_test

import (
	"context"
	"sync"

	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/events"
	"github.com/openticket/helpdesk/internal/repository"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []events.Message
}

func (r *recordingPublisher) Publish(msg events.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingPublisher) Kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, m.Type)
	}
	return out
}

func (r *recordingPublisher) Last() events.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[len(r.messages)-1]
}

type countingCache struct {
	data          map[string]map[domain.TicketStatus]int
	invalidations int
}

func newCountingCache() *countingCache {
	return &countingCache{data: map[string]map[domain.TicketStatus]int{}}
}

func (c *countingCache) Get(_ context.Context, scope string) (map[domain.TicketStatus]int, repository.StatsSlot, bool) {
	v, ok := c.data[scope]
	return v, repository.StatsSlot{Key: scope}, ok
}

func (c *countingCache) Set(_ context.Context, slot repository.StatsSlot, counts map[domain.TicketStatus]int) {
	c.data[slot.Key] = counts
}

func (c *countingCache) Invalidate(context.Context) {
	c.data = map[string]map[domain.TicketStatus]int{}
	c.invalidations++
}
