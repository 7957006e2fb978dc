package auth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/domain"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

var _ = Describe("Role policy", func() {
	DescribeTable("HasRole with the support update group",
		func(user *domain.User, expected bool) {
			Expect(auth.HasRole(user, auth.SupportUpdateRoles)).To(Equal(expected))
		},
		Entry("admin", &domain.User{Role: domain.RoleAdmin}, true),
		Entry("technician", &domain.User{Role: domain.RoleTechnician}, true),
		Entry("agent", &domain.User{Role: domain.RoleAgent}, false),
		Entry("agent superuser", &domain.User{Role: domain.RoleAgent, IsSuperuser: true}, true),
		Entry("unknown role", &domain.User{Role: domain.Role("auditor")}, false),
		Entry("nil user", nil, false),
	)

	It("returns a FORBIDDEN error when the role check fails", func() {
		err := auth.RequireRole(&domain.User{Role: domain.RoleAgent}, auth.SupportReadRoles)
		Expect(apperrors.HasCode(err, apperrors.CodeForbidden)).To(BeTrue())
		Expect(auth.RequireRole(&domain.User{Role: domain.RoleTechnician}, auth.SupportReadRoles)).To(Succeed())
	})

	It("keeps the API and UI update rules distinct", func() {
		creator := &domain.User{ID: 1, Role: domain.RoleAgent}
		technician := &domain.User{ID: 2, Role: domain.RoleTechnician}
		ticket := &domain.Ticket{ID: 10, CreatedByID: creator.ID}

		Expect(auth.APIUpdatePolicy(creator)).NotTo(Succeed())
		Expect(auth.OwnerPolicy(creator, ticket)).To(Succeed())

		Expect(auth.APIUpdatePolicy(technician)).To(Succeed())
		Expect(auth.OwnerPolicy(technician, ticket)).NotTo(Succeed())

		ticket.AssignedToID = &technician.ID
		Expect(auth.CanEdit(technician, ticket)).To(BeTrue())
		Expect(auth.CanEdit(&domain.User{ID: 3, IsSuperuser: true}, ticket)).To(BeTrue())
		Expect(auth.CanEdit(nil, ticket)).To(BeFalse())
	})
})
