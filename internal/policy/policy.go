// Package policy holds the authorization rules for listing access.
//
// Decisions are pure: given the caller's identity (or nil for anonymous),
// the attempted action, and the listing it targets, CanPerform either
// allows or returns a typed denial. Nothing here touches storage, so a
// denial can never leave side effects behind.
package policy

import (
	"errors"

	"github.com/Kariuki90/car-marketplace/types"
)

// Action is an operation an identity may attempt against a listing.
type Action string

const (
	// ActionRead is a public fetch of a listing. Always allowed.
	ActionRead Action = "read"

	// ActionCreate publishes a new listing.
	ActionCreate Action = "create"

	// ActionUpdate mutates an existing listing.
	ActionUpdate Action = "update"

	// ActionDelete removes an existing listing.
	ActionDelete Action = "delete"

	// ActionViewDealerStats views aggregate counts over the caller's
	// own inventory.
	ActionViewDealerStats Action = "view-dealer-stats"

	// ActionViewDealerInventory views the caller's own inventory
	// breakdown.
	ActionViewDealerInventory Action = "view-dealer-inventory"
)

var (
	// ErrUnauthorized denies an anonymous caller a protected action.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden denies an authenticated caller who is not entitled
	// to the action. It carries no detail about why, so one user's
	// denial cannot leak another user's data.
	ErrForbidden = errors.New("not authorized to perform this action")
)

// CanPerform decides whether identity may perform action on vehicle.
// A nil identity is an anonymous caller; vehicle may be nil for actions
// that do not target an existing listing.
//
// Ownership is the sole discriminator for mutations: no role overrides
// it, and other dealers are denied like anyone else. Dealer views require
// the dealer role and are implicitly scoped to the caller's own listings.
func CanPerform(identity *types.Identity, action Action, vehicle *types.Vehicle) error {
	switch action {
	case ActionRead:
		return nil

	case ActionCreate:
		if identity == nil {
			return ErrUnauthorized
		}
		return nil

	case ActionUpdate, ActionDelete:
		if identity == nil {
			return ErrUnauthorized
		}
		if vehicle == nil || vehicle.SellerID != identity.UserID {
			return ErrForbidden
		}
		return nil

	case ActionViewDealerStats, ActionViewDealerInventory:
		if identity == nil {
			return ErrUnauthorized
		}
		if !identity.IsDealer() {
			return ErrForbidden
		}
		return nil

	default:
		return ErrForbidden
	}
}
