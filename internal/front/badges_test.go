package front_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/front"
)

var _ = Describe("badge classes", func() {
	DescribeTable("status",
		func(status domain.TicketStatus, class string) {
			Expect(front.StatusBadgeClass(status)).To(Equal(class))
		},
		Entry("open", domain.TicketStatusOpen, "bg-success"),
		Entry("in progress", domain.TicketStatusInProgress, "bg-primary"),
		Entry("resolved", domain.TicketStatusResolved, "bg-info"),
		Entry("cancelled", domain.TicketStatusCancelled, "bg-danger"),
		Entry("unknown", domain.TicketStatus("archived"), "bg-secondary"),
	)

	DescribeTable("priority",
		func(priority domain.TicketPriority, class string) {
			Expect(front.PriorityBadgeClass(priority)).To(Equal(class))
		},
		Entry("low", domain.TicketPriorityLow, "bg-success"),
		Entry("medium", domain.TicketPriorityMedium, "bg-primary"),
		Entry("high", domain.TicketPriorityHigh, "bg-warning"),
		Entry("urgent", domain.TicketPriorityUrgent, "bg-danger"),
		Entry("unknown", domain.TicketPriority(""), "bg-secondary"),
	)
})
