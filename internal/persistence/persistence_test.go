package persistence

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/openticket/helpdesk/internal/config"
)

var _ = Describe("migrations", func() {
	It("embeds the schema in version order", func() {
		goose.SetBaseFS(migrationFS)
		DeferCleanup(func() { goose.SetBaseFS(nil) })

		migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations).To(HaveLen(2))
		Expect(migrations[0].Version).To(BeEquivalentTo(1))
		Expect(migrations[1].Version).To(BeEquivalentTo(2))
	})

	It("skips when no DSN is configured", func() {
		Expect(Migrate(context.Background(), "", MigrateUp, zap.NewNop())).To(Succeed())
	})

	It("rejects unknown directions", func() {
		err := Migrate(context.Background(), "postgres://localhost/helpdesk", "sideways", zap.NewNop())
		Expect(err).To(MatchError(ContainSubstring("unsupported migration direction")))
	})
})

var _ = Describe("connections", func() {
	It("requires a DSN for postgres", func() {
		_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
		Expect(err).To(MatchError(ErrNoDSN))
	})

	It("treats a missing redis address as a disabled cache", func() {
		rds := NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())
		Expect(rds.Client).To(BeNil())
		Expect(rds.Ping(context.Background())).To(Succeed())
		rds.Close()
	})
})
