// Package authz implements role and account-state gates as pure predicates
// over the authenticated identity, independent of any web framework.
package authz

import (
	"github.com/gofiber/fiber/v2"

	"booklink/internal/models"
)

// Identity is the view of the authenticated reader that gates evaluate.
// A nil *Identity means the request carries no authenticated identity.
type Identity struct {
	ID         uint
	Role       models.Role
	IsApproved bool
	IsActive   bool
}

// Decision is the tagged result of a gate: allowed, or denied with the HTTP
// status and message the caller should surface.
type Decision struct {
	Allowed bool
	Status  int
	Reason  string
}

// Allow returns a passing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a failing decision with the given status and reason.
func Deny(status int, reason string) Decision {
	return Decision{Status: status, Reason: reason}
}

// Gate is a pure predicate over the request identity. Gates have no side
// effects; evaluation order is the caller's responsibility.
type Gate func(id *Identity) Decision

// Chain composes gates with first-deny short-circuit: the first failing gate
// yields its decision and no gate after it is evaluated.
func Chain(gates ...Gate) Gate {
	return func(id *Identity) Decision {
		for _, g := range gates {
			if d := g(id); !d.Allowed {
				return d
			}
		}
		return Allow()
	}
}

// RequireAdmin passes only for admin accounts.
func RequireAdmin(id *Identity) Decision {
	if id == nil {
		return Deny(fiber.StatusUnauthorized, "Authentication required")
	}
	if id.Role != models.RoleAdmin {
		return Deny(fiber.StatusForbidden, "Access denied. Admin privileges required.")
	}
	return Allow()
}

// RequireModerator passes for moderator and admin accounts.
func RequireModerator(id *Identity) Decision {
	if id == nil {
		return Deny(fiber.StatusUnauthorized, "Authentication required")
	}
	if id.Role != models.RoleAdmin && id.Role != models.RoleModerator {
		return Deny(fiber.StatusForbidden, "Access denied. Moderator privileges required.")
	}
	return Allow()
}

// RequireApprovedAccount passes automatically for moderators and admins;
// plain users must have been approved.
func RequireApprovedAccount(id *Identity) Decision {
	if id == nil {
		return Deny(fiber.StatusUnauthorized, "Authentication required")
	}
	if id.Role == models.RoleAdmin || id.Role == models.RoleModerator {
		return Allow()
	}
	if !id.IsApproved {
		return Deny(fiber.StatusForbidden, "Your account is pending approval. Please wait for admin verification.")
	}
	return Allow()
}

// RequireActiveAccount rejects deactivated accounts regardless of role.
func RequireActiveAccount(id *Identity) Decision {
	if id == nil {
		return Deny(fiber.StatusUnauthorized, "Authentication required")
	}
	if !id.IsActive {
		return Deny(fiber.StatusForbidden, "Your account has been deactivated. Contact support.")
	}
	return Allow()
}

// RequireApproved is the combined gate applied to marketplace actions:
// the account must be approved and active.
var RequireApproved = Chain(RequireApprovedAccount, RequireActiveAccount)
