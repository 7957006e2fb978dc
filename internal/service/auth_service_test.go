package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/config"
	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/repository/repotest"
	"github.com/openticket/helpdesk/internal/service"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

var _ = Describe("AuthService", func() {
	var (
		ctx    context.Context
		svc    *service.AuthService
		active *domain.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		users := repotest.NewUsers()
		svc = service.NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, users, auth.NewTokenManager("secret", 5, 60))

		active = &domain.User{Email: "Tech@Example.com", Username: "tech", Role: domain.RoleTechnician, IsActive: true}
		Expect(svc.CreateUser(ctx, active, "pw")).To(Succeed())
		Expect(svc.CreateUser(ctx, &domain.User{Email: "off@example.com", Username: "off", IsActive: false}, "pw")).To(Succeed())
	})

	It("logs in with an email in any case and issues a pair", func() {
		user, pair, err := svc.Login(ctx, "tech@example.com", "pw")
		Expect(err).NotTo(HaveOccurred())
		Expect(user.ID).To(Equal(active.ID))
		Expect(pair.Access).NotTo(BeEmpty())
		Expect(pair.Refresh).NotTo(BeEmpty())
		Expect(svc.Verify(pair.Access)).To(Succeed())
		Expect(svc.Verify(pair.Refresh)).To(Succeed())
	})

	DescribeTable("rejects bad credentials",
		func(email, password, code string) {
			_, _, err := svc.Login(ctx, email, password)
			Expect(apperrors.HasCode(err, code)).To(BeTrue())
		},
		Entry("wrong password", "tech@example.com", "nope", apperrors.CodeUnauthorized),
		Entry("unknown email", "ghost@example.com", "pw", apperrors.CodeUnauthorized),
		Entry("inactive", "off@example.com", "pw", apperrors.CodeUnauthorized),
		Entry("missing fields", "", "", apperrors.CodeValidation),
	)

	It("refreshes only from a refresh token", func() {
		_, pair, err := svc.Login(ctx, "tech@example.com", "pw")
		Expect(err).NotTo(HaveOccurred())

		refreshed, err := svc.Refresh(ctx, pair.Refresh)
		Expect(err).NotTo(HaveOccurred())
		Expect(refreshed.Access).NotTo(BeEmpty())
		Expect(refreshed.Refresh).To(BeEmpty())

		_, err = svc.Refresh(ctx, pair.Access)
		Expect(apperrors.HasCode(err, apperrors.CodeUnauthorized)).To(BeTrue())
	})

	It("fails verification for tampered tokens", func() {
		Expect(apperrors.HasCode(svc.Verify("abc.def.ghi"), apperrors.CodeUnauthorized)).To(BeTrue())
	})
})
