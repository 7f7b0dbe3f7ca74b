package policy

import (
	"testing"

	"github.com/Kariuki90/car-marketplace/types"
	"github.com/stretchr/testify/assert"
)

func TestCanPerform(t *testing.T) {
	owner := &types.Identity{UserID: 1, Role: types.RoleOwner}
	dealer := &types.Identity{UserID: 2, Role: types.RoleDealer}
	listing := &types.Vehicle{ID: 10, SellerID: 1}

	tests := []struct {
		name     string
		identity *types.Identity
		action   Action
		vehicle  *types.Vehicle
		want     error
	}{
		{"anonymous read", nil, ActionRead, listing, nil},
		{"authenticated read", owner, ActionRead, listing, nil},
		{"anonymous create", nil, ActionCreate, nil, ErrUnauthorized},
		{"authenticated create", owner, ActionCreate, nil, nil},
		{"dealer create", dealer, ActionCreate, nil, nil},
		{"anonymous update", nil, ActionUpdate, listing, ErrUnauthorized},
		{"owner update", owner, ActionUpdate, listing, nil},
		{"non-owner update", dealer, ActionUpdate, listing, ErrForbidden},
		{"update without target", owner, ActionUpdate, nil, ErrForbidden},
		{"anonymous delete", nil, ActionDelete, listing, ErrUnauthorized},
		{"owner delete", owner, ActionDelete, listing, nil},
		{"non-owner delete", dealer, ActionDelete, listing, ErrForbidden},
		{"anonymous dealer stats", nil, ActionViewDealerStats, nil, ErrUnauthorized},
		{"owner dealer stats", owner, ActionViewDealerStats, nil, ErrForbidden},
		{"dealer stats", dealer, ActionViewDealerStats, nil, nil},
		{"owner dealer inventory", owner, ActionViewDealerInventory, nil, ErrForbidden},
		{"dealer inventory", dealer, ActionViewDealerInventory, nil, nil},
		{"unknown action", owner, Action("transfer"), listing, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanPerform(tt.identity, tt.action, tt.vehicle)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCanPerformDealerUpdatingOwnListing(t *testing.T) {
	dealer := &types.Identity{UserID: 7, Role: types.RoleDealer}
	listing := &types.Vehicle{ID: 3, SellerID: 7}

	assert.NoError(t, CanPerform(dealer, ActionUpdate, listing))
	assert.NoError(t, CanPerform(dealer, ActionDelete, listing))
}
