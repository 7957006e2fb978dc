package repository_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/repository"
)

var _ = Describe("StatsCache", func() {
	var (
		ctx    context.Context
		server *miniredis.Miniredis
		cache  repository.StatsCache
		counts map[domain.TicketStatus]int
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = miniredis.RunT(GinkgoT())
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		DeferCleanup(func() { _ = client.Close() })
		cache = repository.NewStatsCache(client, time.Minute, nil)
		counts = map[domain.TicketStatus]int{domain.TicketStatusOpen: 1}
	})

	It("serves counts written after a miss", func() {
		_, slot, ok := cache.Get(ctx, "all")
		Expect(ok).To(BeFalse())
		cache.Set(ctx, slot, counts)

		got, _, ok := cache.Get(ctx, "all")
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(counts))
	})

	It("keeps scopes apart", func() {
		_, slot, _ := cache.Get(ctx, "user:7")
		cache.Set(ctx, slot, counts)

		_, _, ok := cache.Get(ctx, "all")
		Expect(ok).To(BeFalse())
		_, _, ok = cache.Get(ctx, "user:7")
		Expect(ok).To(BeTrue())
	})

	It("drops every scope on invalidate", func() {
		for _, scope := range []string{"all", "user:7"} {
			_, slot, _ := cache.Get(ctx, scope)
			cache.Set(ctx, slot, counts)
		}
		cache.Invalidate(ctx)

		_, _, ok := cache.Get(ctx, "all")
		Expect(ok).To(BeFalse())
		_, _, ok = cache.Get(ctx, "user:7")
		Expect(ok).To(BeFalse())
	})

	It("does not serve counts computed before an invalidate that raced the write", func() {
		_, slot, ok := cache.Get(ctx, "all")
		Expect(ok).To(BeFalse())
		cache.Invalidate(ctx)
		cache.Set(ctx, slot, counts)

		_, _, ok = cache.Get(ctx, "all")
		Expect(ok).To(BeFalse())
	})

	It("expires entries after the ttl", func() {
		_, slot, _ := cache.Get(ctx, "all")
		cache.Set(ctx, slot, counts)
		server.FastForward(2 * time.Minute)

		_, _, ok := cache.Get(ctx, "all")
		Expect(ok).To(BeFalse())
	})

	It("treats an unreachable server as a miss", func() {
		server.Close()
		_, slot, ok := cache.Get(ctx, "all")
		Expect(ok).To(BeFalse())
		cache.Set(ctx, slot, counts)
	})
})
