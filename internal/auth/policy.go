package auth

import (
	"context"

	"github.com/jw6ventures/carrental-console/internal/backend"
)

// Action is something a user may do to a resource.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionBook   Action = "book"
)

// Resource is one of the console's views.
type Resource string

const (
	ResourceCars      Resource = "cars"
	ResourceBookings  Resource = "bookings"
	ResourceCustomers Resource = "customers"
)

// Policy answers capability questions for one user. The zero value denies everything.
type Policy struct {
	signedIn bool
	admin    bool
}

// PolicyFor derives the policy of u; nil means anonymous.
func PolicyFor(u *backend.UserProfile) Policy {
	if u == nil {
		return Policy{}
	}
	return Policy{signedIn: true, admin: u.IsAdmin()}
}

// PolicyFromContext returns the policy of the session attached to ctx.
func PolicyFromContext(ctx context.Context) Policy {
	return PolicyFor(CurrentUser(ctx))
}

// IsAdmin reports whether the policy belongs to an administrator.
func (p Policy) IsAdmin() bool { return p.admin }

// Can is the single authorization check every view and the navigation consult.
func (p Policy) Can(action Action, resource Resource) bool {
	if !p.signedIn {
		return false
	}
	if p.admin {
		// Administrators manage the fleet but do not rent cars themselves.
		return action != ActionBook
	}
	switch resource {
	case ResourceCars:
		return action == ActionView || action == ActionBook
	case ResourceBookings:
		return action == ActionView || action == ActionCreate
	}
	return false
}
