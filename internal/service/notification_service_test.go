package service_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/events"
	"github.com/openticket/helpdesk/internal/service"
)

var _ = Describe("NotificationService", func() {
	var (
		publisher *recordingPublisher
		notifier  *service.NotificationService
	)

	BeforeEach(func() {
		publisher = &recordingPublisher{}
		notifier = service.NewNotificationService(publisher, nil)
	})

	DescribeTable("severity helpers",
		func(call func(), severity events.Severity, text string) {
			call()
			msg := publisher.Last()
			Expect(msg.Type).To(Equal(events.KindCustomNotification))
			Expect(msg.NotificationType).To(Equal(severity))
			Expect(*msg.Message).To(Equal(text))
		},
		Entry("error", func() { notifier.NotifyError("disk full") }, events.SeverityError, "Error: disk full"),
		Entry("success", func() { notifier.NotifySuccess("saved") }, events.SeveritySuccess, "saved"),
		Entry("warning", func() { notifier.NotifyWarning("slow") }, events.SeverityWarning, "slow"),
		Entry("default severity", func() { notifier.NotifySystemMessage("hello", "") }, events.SeverityInfo, "hello"),
	)

	It("describes user actions", func() {
		notifier.NotifyUserAction(&domain.User{Username: "ana"}, "closed", "ticket #4")
		Expect(*publisher.Last().Message).To(Equal("User ana performed: closed on ticket #4"))

		notifier.NotifyUserAction(&domain.User{Username: "ana"}, "logged in", "")
		Expect(*publisher.Last().Message).To(Equal("User ana performed: logged in"))
	})

	It("embeds the ticket representation", func() {
		notifier.NotifyTicketUpdated(&domain.Ticket{ID: 9, Status: domain.TicketStatusInProgress, Priority: domain.TicketPriorityUrgent})
		msg := publisher.Last()
		Expect(msg.Type).To(Equal(events.KindTicketUpdated))
		Expect(msg.Ticket.StatusDisplay).To(Equal("In Progress"))
		Expect(msg.Ticket.PriorityDisplay).To(Equal("Urgent"))
	})

	It("is a no-op without a publisher", func() {
		silent := service.NewNotificationService(nil, nil)
		Expect(func() { silent.NotifyTicketCreated(&domain.Ticket{ID: 1}) }).NotTo(Panic())
	})
})
