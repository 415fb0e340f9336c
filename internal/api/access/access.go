// Package access holds the single permission check every resource
// service goes through. Roles form a total order (anonymous < user <
// moderator < admin); permissions are decided from the actor, the kind
// of operation and the resource, never from per-endpoint checks.
package access

import (
	"titlehub/internal/api/models"
	"titlehub/internal/apperror"
)

type Action int

const (
	ActionRead Action = iota
	ActionMutate
)

type Kind int

const (
	// KindTaxonomy covers categories, genres and titles: public reads,
	// admin-only writes.
	KindTaxonomy Kind = iota
	// KindContribution covers reviews and comments: public reads, writes
	// for the author or a moderator.
	KindContribution
	// KindUsers is the admin user collection.
	KindUsers
	// KindSelf is the /users/me profile.
	KindSelf
)

// Actor is the identity established by the auth middleware. Anonymous
// requests carry the zero value.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) Authenticated() bool {
	return a.UserID != "" && a.Role != models.RoleAnonymous && a.Role != ""
}

// Resource describes what is being acted on. OwnerID is only meaningful
// for KindContribution.
type Resource struct {
	Kind    Kind
	OwnerID string
}

// Check returns nil when the action is allowed, apperror.Unauthorized
// when the actor is not authenticated for an action that needs identity,
// and apperror.Forbidden when the actor is authenticated but short of
// privilege.
func Check(actor Actor, action Action, res Resource) error {
	switch res.Kind {
	case KindTaxonomy:
		if action == ActionRead {
			return nil
		}
		return requireRank(actor, models.RoleAdmin)

	case KindContribution:
		if action == ActionRead {
			return nil
		}
		if !actor.Authenticated() {
			return apperror.Unauthorized("authentication required")
		}
		if actor.UserID == res.OwnerID {
			return nil
		}
		if actor.Role.Rank() >= models.RoleModerator.Rank() {
			return nil
		}
		return apperror.Forbidden("only the author or a moderator may modify this")

	case KindUsers:
		return requireRank(actor, models.RoleAdmin)

	case KindSelf:
		if !actor.Authenticated() {
			return apperror.Unauthorized("authentication required")
		}
		return nil
	}
	return apperror.Forbidden("unknown resource")
}

func requireRank(actor Actor, min models.Role) error {
	if !actor.Authenticated() {
		return apperror.Unauthorized("authentication required")
	}
	if actor.Role.Rank() < min.Rank() {
		return apperror.Forbidden("insufficient role")
	}
	return nil
}
