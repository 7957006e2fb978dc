package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/openticket/helpdesk/internal/domain"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

const (
	userKey = "auth_user"

	// SessionUserKey stores the logged-in user id in the UI session.
	SessionUserKey = "user_id"
)

// UserLookup loads users for authenticated requests.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads the acting user.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("authentication credentials were not provided")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1], TokenTypeAccess)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if apperrors.HasCode(apperrors.ToDomainError(err), apperrors.CodeNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.IsActive {
		return apperrors.NewUnauthorized("user is inactive")
	}

	SetUser(c, user)
	return c.Next()
}

// SessionMiddleware loads the user stored in the UI session. Anonymous
// requests are redirected to loginPath with a next parameter.
func SessionMiddleware(store *session.Store, users UserLookup, loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return apperrors.NewInternalError(err)
		}

		id, ok := sess.Get(SessionUserKey).(int64)
		if !ok {
			return redirectToLogin(c, loginPath)
		}

		user, err := users.GetByID(c.UserContext(), id)
		if err != nil || !user.IsActive {
			sess.Delete(SessionUserKey)
			_ = sess.Save()
			return redirectToLogin(c, loginPath)
		}

		SetUser(c, user)
		return c.Next()
	}
}

func redirectToLogin(c *fiber.Ctx, loginPath string) error {
	target := loginPath + "?next=" + url.QueryEscape(c.OriginalURL())
	return c.Redirect(target, fiber.StatusFound)
}

// SetUser stores the acting user on the request.
func SetUser(c *fiber.Ctx, user *domain.User) {
	c.Locals(userKey, user)
}

// UserFromContext retrieves the authenticated user.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(userKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok && user != nil
}
