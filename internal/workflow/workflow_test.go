package workflow_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/workflow"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

func ptr[T any](v T) *T { return &v }

var _ = Describe("Ticket workflow", func() {
	var (
		creator *domain.User
		tech    *domain.User
		now     time.Time
	)

	BeforeEach(func() {
		creator = &domain.User{ID: 1, Username: "agent", Role: domain.RoleAgent}
		tech = &domain.User{ID: 2, Username: "tech", Role: domain.RoleTechnician}
		now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	})

	Describe("NewTicket", func() {
		It("rejects an empty title", func() {
			_, err := workflow.NewTicket(workflow.CreateFields{
				Title:       "",
				Description: "D",
				Priority:    domain.TicketPriorityLow,
			}, creator, now)
			Expect(apperrors.HasCode(err, apperrors.CodeValidation)).To(BeTrue())
		})

		It("rejects whitespace-only description and missing priority together", func() {
			_, err := workflow.NewTicket(workflow.CreateFields{Title: "T", Description: "  "}, creator, now)
			Expect(apperrors.HasCode(err, apperrors.CodeValidation)).To(BeTrue())
			Expect(apperrors.ToDomainError(err).Details["fields"]).To(ConsistOf("description", "priority"))
		})

		It("rejects an unknown priority", func() {
			_, err := workflow.NewTicket(workflow.CreateFields{Title: "T", Description: "D", Priority: "critical"}, creator, now)
			Expect(apperrors.HasCode(err, apperrors.CodeValidation)).To(BeTrue())
		})

		It("forces OPEN even when a status is supplied", func() {
			ticket, err := workflow.NewTicket(workflow.CreateFields{
				Title:       "T",
				Description: "D",
				Priority:    domain.TicketPriorityLow,
				Department:  "X",
				Status:      domain.TicketStatusResolved,
			}, creator, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticket.Status).To(Equal(domain.TicketStatusOpen))
			Expect(ticket.CreatedByID).To(Equal(creator.ID))
			Expect(ticket.Department).To(Equal("X"))
			Expect(ticket.UpdatedByID).To(BeNil())
		})

		It("allows an empty department", func() {
			ticket, err := workflow.NewTicket(workflow.CreateFields{Title: "T", Description: "D", Priority: domain.TicketPriorityHigh}, creator, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticket.Department).To(BeEmpty())
		})

		It("accepts a 200 character title counted in runes", func() {
			title := strings.Repeat("é", 200)
			ticket, err := workflow.NewTicket(workflow.CreateFields{Title: title, Description: "D", Priority: domain.TicketPriorityLow}, creator, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticket.Title).To(Equal(title))
		})

		It("rejects a 201 character title", func() {
			_, err := workflow.NewTicket(workflow.CreateFields{Title: strings.Repeat("a", 201), Description: "D", Priority: domain.TicketPriorityLow}, creator, now)
			Expect(apperrors.HasCode(err, apperrors.CodeValidation)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("title"))
		})

		It("rejects a department longer than 100 characters", func() {
			_, err := workflow.NewTicket(workflow.CreateFields{Title: "T", Description: "D", Priority: domain.TicketPriorityLow, Department: strings.Repeat("d", 101)}, creator, now)
			Expect(apperrors.HasCode(err, apperrors.CodeValidation)).To(BeTrue())
		})
	})

	Describe("ApplyUpdate", func() {
		var ticket *domain.Ticket

		BeforeEach(func() {
			var err error
			ticket, err = workflow.NewTicket(workflow.CreateFields{Title: "T", Description: "D", Priority: domain.TicketPriorityLow}, creator, now)
			Expect(err).NotTo(HaveOccurred())
			ticket.ID = 10
		})

		It("applies supplied fields and stamps the actor", func() {
			later := now.Add(time.Hour)
			err := workflow.ApplyUpdate(ticket, workflow.UpdateFields{
				Title:    ptr("New title"),
				Priority: ptr(domain.TicketPriorityUrgent),
				Status:   ptr(domain.TicketStatusInProgress),
			}, tech, later)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticket.Title).To(Equal("New title"))
			Expect(ticket.Description).To(Equal("D"))
			Expect(ticket.Priority).To(Equal(domain.TicketPriorityUrgent))
			Expect(ticket.Status).To(Equal(domain.TicketStatusInProgress))
			Expect(*ticket.UpdatedByID).To(Equal(tech.ID))
			Expect(ticket.UpdatedAt).To(Equal(later))
			Expect(ticket.CreatedByID).To(Equal(creator.ID))
		})

		It("sets and clears the assignee", func() {
			Expect(workflow.ApplyUpdate(ticket, workflow.UpdateFields{AssignedTo: &workflow.Assignee{ID: ptr(int64(2))}}, tech, now)).To(Succeed())
			Expect(ticket.IsAssignedTo(tech)).To(BeTrue())
			Expect(workflow.ApplyUpdate(ticket, workflow.UpdateFields{AssignedTo: &workflow.Assignee{}}, tech, now)).To(Succeed())
			Expect(ticket.AssignedToID).To(BeNil())
		})

		It("rejects an unknown status", func() {
			err := workflow.ApplyUpdate(ticket, workflow.UpdateFields{Status: ptr(domain.TicketStatus("pending"))}, tech, now)
			Expect(apperrors.HasCode(err, apperrors.CodeValidation)).To(BeTrue())
			Expect(ticket.Status).To(Equal(domain.TicketStatusOpen))
		})

		It("rejects blank title", func() {
			err := workflow.ApplyUpdate(ticket, workflow.UpdateFields{Title: ptr(" ")}, tech, now)
			Expect(apperrors.HasCode(err, apperrors.CodeValidation)).To(BeTrue())
		})

		It("caps the title at 200 characters", func() {
			Expect(workflow.ApplyUpdate(ticket, workflow.UpdateFields{Title: ptr(strings.Repeat("b", 200))}, tech, now)).To(Succeed())
			Expect(ticket.Title).To(HaveLen(200))

			err := workflow.ApplyUpdate(ticket, workflow.UpdateFields{Title: ptr(strings.Repeat("c", 201))}, tech, now)
			Expect(apperrors.HasCode(err, apperrors.CodeValidation)).To(BeTrue())
			Expect(ticket.Title).To(Equal(strings.Repeat("b", 200)))
		})

		DescribeTable("refuses terminal tickets regardless of fields",
			func(status domain.TicketStatus, fields workflow.UpdateFields) {
				ticket.Status = status
				err := workflow.ApplyUpdate(ticket, fields, tech, now)
				Expect(apperrors.HasCode(err, apperrors.CodeInvalidTransition)).To(BeTrue())
				Expect(ticket.Status).To(Equal(status))
				Expect(ticket.UpdatedByID).To(BeNil())
			},
			Entry("cancelled, reopen", domain.TicketStatusCancelled, workflow.UpdateFields{Status: ptr(domain.TicketStatusOpen)}),
			Entry("cancelled, no fields", domain.TicketStatusCancelled, workflow.UpdateFields{}),
			Entry("cancelled, invalid field", domain.TicketStatusCancelled, workflow.UpdateFields{Title: ptr("")}),
			Entry("resolved, title", domain.TicketStatusResolved, workflow.UpdateFields{Title: ptr("x")}),
		)
	})

	Describe("Resolve", func() {
		It("resolves once and fails the second time", func() {
			ticket := &domain.Ticket{ID: 3, Status: domain.TicketStatusInProgress}
			Expect(workflow.Resolve(ticket, tech, now)).To(Succeed())
			Expect(ticket.Status).To(Equal(domain.TicketStatusResolved))
			Expect(*ticket.UpdatedByID).To(Equal(tech.ID))

			err := workflow.Resolve(ticket, tech, now)
			Expect(apperrors.HasCode(err, apperrors.CodeInvalidTransition)).To(BeTrue())
		})

		It("refuses cancelled tickets", func() {
			ticket := &domain.Ticket{ID: 4, Status: domain.TicketStatusCancelled}
			Expect(apperrors.HasCode(workflow.Resolve(ticket, tech, now), apperrors.CodeInvalidTransition)).To(BeTrue())
			Expect(ticket.Status).To(Equal(domain.TicketStatusCancelled))
		})

		It("resolves straight from OPEN", func() {
			ticket := &domain.Ticket{ID: 5, Status: domain.TicketStatusOpen}
			Expect(workflow.Resolve(ticket, tech, now)).To(Succeed())
		})
	})
})
