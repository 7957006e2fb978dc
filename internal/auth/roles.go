package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openticket/helpdesk/internal/domain"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

// RoleSet is a static, named grouping of roles.
type RoleSet map[domain.Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...domain.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Contains reports whether role belongs to the set.
func (s RoleSet) Contains(role domain.Role) bool {
	_, ok := s[role]
	return ok
}

var (
	// SupportUpdateRoles may update and resolve tickets through the API.
	SupportUpdateRoles = NewRoleSet(domain.RoleAdmin, domain.RoleTechnician)
	// SupportReadRoles may list and read tickets through the API.
	SupportReadRoles = NewRoleSet(domain.RoleAdmin, domain.RoleTechnician)
	AgentRoles       = NewRoleSet(domain.RoleAgent)
	AdminRoles       = NewRoleSet(domain.RoleAdmin)
)

// HasRole is true when the user's role is in allowed or the user is a superuser.
func HasRole(user *domain.User, allowed RoleSet) bool {
	if user == nil {
		return false
	}
	if user.IsSuperuser {
		return true
	}
	return allowed.Contains(user.Role)
}

// RequireRole returns a FORBIDDEN error when HasRole is false.
func RequireRole(user *domain.User, allowed RoleSet) error {
	if !HasRole(user, allowed) {
		return apperrors.NewForbidden("you do not have permission to perform this action")
	}
	return nil
}

// RequireRoles guards a route so only users holding one of the allowed roles pass.
func RequireRoles(allowed RoleSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication credentials were not provided")
		}
		if err := RequireRole(user, allowed); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a user was loaded by an earlier middleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := UserFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication credentials were not provided")
		}
		return c.Next()
	}
}
