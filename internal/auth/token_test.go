package auth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/domain"
)

var _ = Describe("TokenManager", func() {
	var (
		tokens *auth.TokenManager
		user   *domain.User
	)

	BeforeEach(func() {
		tokens = auth.NewTokenManager("test-secret", 5, 60)
		user = &domain.User{ID: 7, Role: domain.RoleTechnician}
	})

	It("issues a pair whose halves carry their own type", func() {
		pair, err := tokens.GeneratePair(user)
		Expect(err).NotTo(HaveOccurred())

		access, err := tokens.ParseToken(pair.Access, auth.TokenTypeAccess)
		Expect(err).NotTo(HaveOccurred())
		Expect(access.UserID).To(Equal(int64(7)))
		Expect(access.Role).To(Equal(domain.RoleTechnician))

		_, err = tokens.ParseToken(pair.Refresh, auth.TokenTypeAccess)
		Expect(err).To(MatchError(auth.ErrUnexpectedTokenType))

		refresh, err := tokens.ParseToken(pair.Refresh, auth.TokenTypeRefresh)
		Expect(err).NotTo(HaveOccurred())
		Expect(refresh.Subject).To(Equal("7"))
	})

	It("rejects tokens signed with another secret", func() {
		other := auth.NewTokenManager("other-secret", 5, 60)
		token, _, err := other.GenerateAccess(user)
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.ParseToken(token, auth.TokenTypeAccess)
		Expect(err).To(MatchError(auth.ErrInvalidToken))
	})

	It("rejects garbage", func() {
		_, err := tokens.ParseToken("not-a-jwt", "")
		Expect(err).To(MatchError(auth.ErrInvalidToken))
	})
})
