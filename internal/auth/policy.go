package auth

import (
	"github.com/openticket/helpdesk/internal/domain"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

// APIUpdatePolicy authorizes ticket updates and resolution on the JSON API.
// Any member of SupportUpdateRoles may mutate any ticket in their scope.
func APIUpdatePolicy(user *domain.User) error {
	return RequireRole(user, SupportUpdateRoles)
}

// APIReadPolicy authorizes ticket listing and detail on the JSON API.
func APIReadPolicy(user *domain.User) error {
	return RequireRole(user, SupportReadRoles)
}

// CanEdit reports whether the rendered UI lets user edit ticket: its creator,
// its assignee, or a superuser. Role is not consulted.
func CanEdit(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	return user.IsSuperuser || ticket.IsCreatedBy(user) || ticket.IsAssignedTo(user)
}

// OwnerPolicy is the error-returning form of CanEdit.
func OwnerPolicy(user *domain.User, ticket *domain.Ticket) error {
	if !CanEdit(user, ticket) {
		return apperrors.NewForbidden("you do not have permission to edit this ticket")
	}
	return nil
}
