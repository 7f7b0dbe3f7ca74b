package store

import (
	"testing"

	"github.com/Kariuki90/car-marketplace/types"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestBuildFilterClauseEmpty(t *testing.T) {
	where, args := buildFilterClause(types.VehicleFilter{})

	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildFilterClauseSingleField(t *testing.T) {
	where, args := buildFilterClause(types.VehicleFilter{Make: "Toyota"})

	assert.Equal(t, " WHERE make = $1", where)
	assert.Equal(t, []any{"Toyota"}, args)
}

func TestBuildFilterClauseRanges(t *testing.T) {
	where, args := buildFilterClause(types.VehicleFilter{
		MinYear:  intPtr(2015),
		MaxYear:  intPtr(2020),
		MinPrice: floatPtr(10000),
		MaxPrice: floatPtr(30000),
	})

	assert.Equal(t, " WHERE year >= $1 AND year <= $2 AND price >= $3 AND price <= $4", where)
	assert.Equal(t, []any{2015, 2020, float64(10000), float64(30000)}, args)
}

func TestBuildFilterClauseAllFields(t *testing.T) {
	where, args := buildFilterClause(types.VehicleFilter{
		Make:     "Honda",
		Model:    "Civic",
		MinYear:  intPtr(2018),
		MaxYear:  intPtr(2024),
		MinPrice: floatPtr(5000),
		MaxPrice: floatPtr(25000),
		Status:   types.StatusAvailable,
		Location: "Nairobi",
	})

	assert.Equal(t,
		" WHERE make = $1 AND model = $2 AND year >= $3 AND year <= $4 AND price >= $5 AND price <= $6 AND status = $7 AND location->>'city' = $8",
		where,
	)
	assert.Len(t, args, 8)
	assert.Equal(t, "Honda", args[0])
	assert.Equal(t, "available", args[6])
	assert.Equal(t, "Nairobi", args[7])
}

func TestBuildFilterClauseZeroBoundsApply(t *testing.T) {
	// A pointer to zero is an explicit bound, not an absent field.
	where, args := buildFilterClause(types.VehicleFilter{MinPrice: floatPtr(0)})

	assert.Equal(t, " WHERE price >= $1", where)
	assert.Equal(t, []any{float64(0)}, args)
}
