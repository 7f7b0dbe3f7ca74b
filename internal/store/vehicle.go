package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Kariuki90/car-marketplace/types"
)

const vehicleColumns = `id, seller_id, title, make, model, year, price, mileage, description, features, images, status, location, specifications, created_at, updated_at`

// VehicleRepository handles persistence for vehicle listings.
type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// buildFilterClause maps a VehicleFilter to a WHERE clause and its
// arguments. This is the only place a search constraint may be added:
// every predicate on the list query originates here.
func buildFilterClause(filter types.VehicleFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(format string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if filter.Make != "" {
		add("make = $%d", filter.Make)
	}
	if filter.Model != "" {
		add("model = $%d", filter.Model)
	}
	if filter.MinYear != nil {
		add("year >= $%d", *filter.MinYear)
	}
	if filter.MaxYear != nil {
		add("year <= $%d", *filter.MaxYear)
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Location != "" {
		add("location->>'city' = $%d", filter.Location)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns the page of listings matching the filter, newest first,
// along with the total match count. Equal creation timestamps are broken
// by id so repeated queries page deterministically.
func (r *VehicleRepository) List(ctx context.Context, filter types.VehicleFilter, offset, limit int) ([]types.Vehicle, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 12
	}

	where, args := buildFilterClause(filter)

	countQuery := `SELECT COUNT(1) FROM vehicles` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(
		`SELECT %s FROM vehicles%s ORDER BY created_at DESC, id DESC OFFSET $%d LIMIT $%d`,
		vehicleColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	vehicles := make([]types.Vehicle, 0, limit)
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return vehicles, total, nil
}

// Get fetches a single listing by id.
func (r *VehicleRepository) Get(ctx context.Context, id int) (types.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1`, vehicleColumns)
	vehicle, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Vehicle{}, ErrNotFound
		}
		return types.Vehicle{}, err
	}
	return vehicle, nil
}

// GetWithSeller fetches a single listing with the owner's public contact
// fields joined in.
func (r *VehicleRepository) GetWithSeller(ctx context.Context, id int) (types.Vehicle, error) {
	const query = `
		SELECT v.id, v.seller_id, v.title, v.make, v.model, v.year, v.price, v.mileage, v.description,
			v.features, v.images, v.status, v.location, v.specifications, v.created_at, v.updated_at,
			u.name, u.email, u.phone
		FROM vehicles v
		JOIN users u ON u.id = v.seller_id
		WHERE v.id = $1`

	var vehicle types.Vehicle
	var featuresJSON, imagesJSON, locationJSON, specsJSON []byte
	var seller types.SellerInfo
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.SellerID,
		&vehicle.Title,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.Price,
		&vehicle.Mileage,
		&vehicle.Description,
		&featuresJSON,
		&imagesJSON,
		&vehicle.Status,
		&locationJSON,
		&specsJSON,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
		&seller.Name,
		&seller.Email,
		&seller.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Vehicle{}, ErrNotFound
		}
		return types.Vehicle{}, err
	}

	_ = json.Unmarshal(featuresJSON, &vehicle.Features)
	_ = json.Unmarshal(imagesJSON, &vehicle.Images)
	_ = json.Unmarshal(locationJSON, &vehicle.Location)
	_ = json.Unmarshal(specsJSON, &vehicle.Specifications)
	vehicle.Seller = &seller
	return vehicle, nil
}

// Create persists a new listing and returns it with its assigned id.
// Timestamps are expected to be set by the caller.
func (r *VehicleRepository) Create(ctx context.Context, vehicle types.Vehicle) (types.Vehicle, error) {
	featuresJSON, imagesJSON, locationJSON, specsJSON, err := marshalVehicleBlocks(vehicle)
	if err != nil {
		return types.Vehicle{}, err
	}

	const query = `
		INSERT INTO vehicles (seller_id, title, make, model, year, price, mileage, description, features, images, status, location, specifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		vehicle.SellerID,
		vehicle.Title,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.Price,
		vehicle.Mileage,
		vehicle.Description,
		featuresJSON,
		imagesJSON,
		vehicle.Status,
		locationJSON,
		specsJSON,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	).Scan(&vehicle.ID); err != nil {
		return types.Vehicle{}, err
	}

	return vehicle, nil
}

// Update persists the given listing state wholesale. The seller column is
// deliberately absent from the SET list: ownership is assigned once at
// creation and never rewritten.
func (r *VehicleRepository) Update(ctx context.Context, vehicle types.Vehicle) (types.Vehicle, error) {
	featuresJSON, imagesJSON, locationJSON, specsJSON, err := marshalVehicleBlocks(vehicle)
	if err != nil {
		return types.Vehicle{}, err
	}

	const query = `
		UPDATE vehicles
		SET title = $1,
			make = $2,
			model = $3,
			year = $4,
			price = $5,
			mileage = $6,
			description = $7,
			features = $8,
			images = $9,
			status = $10,
			location = $11,
			specifications = $12,
			updated_at = $13
		WHERE id = $14`
	result, err := r.db.ExecContext(
		ctx,
		query,
		vehicle.Title,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.Price,
		vehicle.Mileage,
		vehicle.Description,
		featuresJSON,
		imagesJSON,
		vehicle.Status,
		locationJSON,
		specsJSON,
		vehicle.UpdatedAt,
		vehicle.ID,
	)
	if err != nil {
		return types.Vehicle{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Vehicle{}, err
	}
	if affected == 0 {
		return types.Vehicle{}, ErrNotFound
	}

	return vehicle, nil
}

// Delete removes a listing. Deleting an absent id reports ErrNotFound.
func (r *VehicleRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM vehicles WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBySeller returns all of one seller's listings, newest first,
// optionally narrowed to a single status. No pagination: one seller's
// inventory is small.
func (r *VehicleRepository) ListBySeller(ctx context.Context, sellerID int, status types.VehicleStatus) ([]types.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE seller_id = $1`, vehicleColumns)
	args := []any{sellerID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []types.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// CountBySeller aggregates one seller's listings by status.
func (r *VehicleRepository) CountBySeller(ctx context.Context, sellerID int) (types.DealerStats, error) {
	const query = `
		SELECT COUNT(1),
			COUNT(1) FILTER (WHERE status = 'available'),
			COUNT(1) FILTER (WHERE status = 'sold')
		FROM vehicles
		WHERE seller_id = $1`
	var stats types.DealerStats
	err := r.db.QueryRowContext(ctx, query, sellerID).Scan(
		&stats.TotalListings,
		&stats.ActiveListings,
		&stats.SoldVehicles,
	)
	if err != nil {
		return types.DealerStats{}, err
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (types.Vehicle, error) {
	var vehicle types.Vehicle
	var featuresJSON, imagesJSON, locationJSON, specsJSON []byte
	if err := row.Scan(
		&vehicle.ID,
		&vehicle.SellerID,
		&vehicle.Title,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.Price,
		&vehicle.Mileage,
		&vehicle.Description,
		&featuresJSON,
		&imagesJSON,
		&vehicle.Status,
		&locationJSON,
		&specsJSON,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	); err != nil {
		return types.Vehicle{}, err
	}

	_ = json.Unmarshal(featuresJSON, &vehicle.Features)
	_ = json.Unmarshal(imagesJSON, &vehicle.Images)
	_ = json.Unmarshal(locationJSON, &vehicle.Location)
	_ = json.Unmarshal(specsJSON, &vehicle.Specifications)
	return vehicle, nil
}

func marshalVehicleBlocks(vehicle types.Vehicle) (features, images, location, specs []byte, err error) {
	if features, err = json.Marshal(vehicle.Features); err != nil {
		return nil, nil, nil, nil, err
	}
	if images, err = json.Marshal(vehicle.Images); err != nil {
		return nil, nil, nil, nil, err
	}
	if location, err = json.Marshal(vehicle.Location); err != nil {
		return nil, nil, nil, nil, err
	}
	if specs, err = json.Marshal(vehicle.Specifications); err != nil {
		return nil, nil, nil, nil, err
	}
	return features, images, location, specs, nil
}
