package observability_test

import (
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/openticket/helpdesk/internal/config"
	"github.com/openticket/helpdesk/internal/observability"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

var _ = Describe("RequestLogger", func() {
	var (
		app     *fiber.App
		logs    *observer.ObservedLogs
		metrics *observability.Metrics
	)

	BeforeEach(func() {
		var core zapcore.Core
		core, logs = observer.New(zapcore.InfoLevel)
		metrics = observability.NewMetrics("test")

		app = fiber.New()
		app.Use(observability.RequestLogger(zap.New(core), metrics))
		app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
		app.Get("/missing", func(c *fiber.Ctx) error { return apperrors.NewNotFound("ticket", nil) })
	})

	It("assigns a request id and logs the request", func() {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Header.Get(observability.RequestIDHeader)).NotTo(BeEmpty())

		entries := logs.FilterMessage("request").All()
		Expect(entries).To(HaveLen(1))
		fields := entries[0].ContextMap()
		Expect(fields["route"]).To(Equal("/ok"))
		Expect(fields["status"]).To(BeEquivalentTo(fiber.StatusOK))
		Expect(fields["request_id"]).To(Equal(resp.Header.Get(observability.RequestIDHeader)))
	})

	It("keeps a caller supplied request id", func() {
		req := httptest.NewRequest(fiber.MethodGet, "/ok", nil)
		req.Header.Set(observability.RequestIDHeader, "abc-123")
		resp, err := app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Header.Get(observability.RequestIDHeader)).To(Equal("abc-123"))
	})

	It("records the status carried by a domain error", func() {
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
		Expect(err).NotTo(HaveOccurred())

		fields := logs.FilterMessage("request").All()[0].ContextMap()
		Expect(fields["status"]).To(BeEquivalentTo(fiber.StatusNotFound))

		count, err := testutil.GatherAndCount(metrics.Registry(), "test_http_requests_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})
})

var _ = Describe("Metrics", func() {
	It("tolerates a nil receiver", func() {
		var m *observability.Metrics
		Expect(func() {
			m.RecordRequest("/", "GET", 200, 0)
			m.RecordPublish("ticket_created", 2, 1)
			m.ConnectionJoined()
			m.ConnectionLeft()
		}).NotTo(Panic())
	})

	It("counts publishes by kind", func() {
		m := observability.NewMetrics("test")
		m.RecordPublish("ticket_created", 3, 1)
		m.RecordPublish("ticket_created", 1, 0)

		count, err := testutil.GatherAndCount(m.Registry(), "test_notifications_published_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})
})

var _ = Describe("NewLogger", func() {
	It("tees output into a rotating file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "helpdesk.log")
		logger, err := observability.NewLogger(config.LoggerConfig{Level: "debug", File: path, FileMaxSizeMB: 1})
		Expect(err).NotTo(HaveOccurred())

		logger.Info("hello", zap.String("component", "test"))
		_ = logger.Sync()

		raw, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"message":"hello"`))
		Expect(string(raw)).To(ContainSubstring(`"component":"test"`))
	})

	It("falls back to info for an unknown level", func() {
		logger, err := observability.NewLogger(config.LoggerConfig{Level: "chatty"})
		Expect(err).NotTo(HaveOccurred())
		Expect(logger.Core().Enabled(zapcore.DebugLevel)).To(BeFalse())
		Expect(logger.Core().Enabled(zapcore.InfoLevel)).To(BeTrue())
	})
})
