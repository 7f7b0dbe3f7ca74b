package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Kariuki90/car-marketplace/internal/events"
	"github.com/Kariuki90/car-marketplace/internal/policy"
	"github.com/Kariuki90/car-marketplace/types"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// VehicleRepository defines persistence operations for listings.
type VehicleRepository interface {
	List(ctx context.Context, filter types.VehicleFilter, offset, limit int) ([]types.Vehicle, int, error)
	Get(ctx context.Context, id int) (types.Vehicle, error)
	GetWithSeller(ctx context.Context, id int) (types.Vehicle, error)
	Create(ctx context.Context, vehicle types.Vehicle) (types.Vehicle, error)
	Update(ctx context.Context, vehicle types.Vehicle) (types.Vehicle, error)
	Delete(ctx context.Context, id int) error
	ListBySeller(ctx context.Context, sellerID int, status types.VehicleStatus) ([]types.Vehicle, error)
	CountBySeller(ctx context.Context, sellerID int) (types.DealerStats, error)
}

// VehicleCache caches individual listings. Optional; a nil cache is a
// miss on every read.
type VehicleCache interface {
	Get(ctx context.Context, id int) (*types.Vehicle, error)
	Set(ctx context.Context, vehicle *types.Vehicle) error
	Delete(ctx context.Context, id int) error
}

// VehicleService encapsulates the listing lifecycle: it is the only path
// through which listings are created, mutated or removed, and it consults
// the authorization policy before every non-public action.
type VehicleService struct {
	repo      VehicleRepository
	uploads   *UploadService
	publisher *events.Publisher
	cache     VehicleCache
	logger    *zap.Logger
}

func NewVehicleService(
	repo VehicleRepository,
	uploads *UploadService,
	publisher *events.Publisher,
	cache VehicleCache,
	logger *zap.Logger,
) *VehicleService {
	return &VehicleService{
		repo:      repo,
		uploads:   uploads,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Search returns the page of listings matching the filter along with the
// total page count. Page defaults to 1, limit to 12, and the repository
// orders newest-first with an id tie-break so paging is deterministic.
func (s *VehicleService) Search(ctx context.Context, filter types.VehicleFilter) ([]types.Vehicle, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	vehicles, total, err := s.repo.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	totalPages := (total + limit - 1) / limit
	return vehicles, totalPages, nil
}

// Get fetches a single listing with the seller's public contact fields.
func (s *VehicleService) Get(ctx context.Context, id int) (types.Vehicle, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil && s.logger != nil {
			s.logger.Warn("vehicle cache read failed", zap.Int("vehicle_id", id), zap.Error(err))
		}
		if cached != nil {
			return *cached, nil
		}
	}

	vehicle, err := s.repo.GetWithSeller(ctx, id)
	if err != nil {
		return types.Vehicle{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &vehicle); err != nil && s.logger != nil {
			s.logger.Warn("vehicle cache write failed", zap.Int("vehicle_id", id), zap.Error(err))
		}
	}
	return vehicle, nil
}

// Create validates and publishes a new listing. The seller is always the
// authenticated caller; a seller supplied in the input is ignored. Every
// violated field is reported, and nothing is persisted unless the whole
// request, images included, is acceptable. If persisting the record fails
// after the images were stored, the stored blobs are removed.
func (s *VehicleService) Create(ctx context.Context, identity *types.Identity, input VehicleInput, images []Attachment) (types.Vehicle, error) {
	if err := policy.CanPerform(identity, policy.ActionCreate, nil); err != nil {
		return types.Vehicle{}, err
	}

	verr := &ValidationError{}
	if fieldErr := validateVehicleInput(input); fieldErr != nil {
		verr.Violations = append(verr.Violations, fieldErr.Violations...)
	}
	if len(images) == 0 {
		verr.add("images", "At least one image is required")
	} else if uploadErr := s.uploads.ValidateBatch(images); uploadErr != nil {
		verr.Violations = append(verr.Violations, uploadErr.Violations...)
	}
	if err := verr.orNil(); err != nil {
		return types.Vehicle{}, err
	}

	stored, err := s.uploads.Store(ctx, images)
	if err != nil {
		return types.Vehicle{}, err
	}

	status := input.Status
	if status == "" {
		status = types.StatusAvailable
	}

	now := time.Now()
	vehicle := types.Vehicle{
		SellerID:       identity.UserID,
		Title:          input.Title,
		Make:           input.Make,
		Model:          input.Model,
		Year:           input.Year,
		Price:          input.Price,
		Mileage:        input.Mileage,
		Description:    input.Description,
		Features:       input.Features,
		Images:         imageRefs(stored),
		Status:         status,
		Location:       *input.Location,
		Specifications: *input.Specifications,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.repo.Create(ctx, vehicle)
	if err != nil {
		s.uploads.Cleanup(ctx, stored)
		return types.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}

	s.publish(ctx, events.VehicleCreated, created)
	return created, nil
}

// Update applies a partial update to a listing the caller owns. Only
// supplied fields are validated and changed; a non-empty image batch
// replaces the image sequence wholesale. The modification timestamp is
// refreshed here, on the explicit mutation path.
func (s *VehicleService) Update(ctx context.Context, identity *types.Identity, id int, update VehicleUpdate, images []Attachment) (types.Vehicle, error) {
	vehicle, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Vehicle{}, err
	}

	if err := policy.CanPerform(identity, policy.ActionUpdate, &vehicle); err != nil {
		return types.Vehicle{}, err
	}

	verr := &ValidationError{}
	if fieldErr := validateVehicleUpdate(update); fieldErr != nil {
		verr.Violations = append(verr.Violations, fieldErr.Violations...)
	}
	if len(images) > 0 {
		if uploadErr := s.uploads.ValidateBatch(images); uploadErr != nil {
			verr.Violations = append(verr.Violations, uploadErr.Violations...)
		}
	}
	if err := verr.orNil(); err != nil {
		return types.Vehicle{}, err
	}

	var stored []StoredImage
	if len(images) > 0 {
		stored, err = s.uploads.Store(ctx, images)
		if err != nil {
			return types.Vehicle{}, err
		}
	}

	applyVehicleUpdate(&vehicle, update)
	if len(stored) > 0 {
		vehicle.Images = imageRefs(stored)
	}
	vehicle.UpdatedAt = time.Now()

	updated, err := s.repo.Update(ctx, vehicle)
	if err != nil {
		s.uploads.Cleanup(ctx, stored)
		return types.Vehicle{}, err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.VehicleUpdated, updated)
	return updated, nil
}

// Delete removes a listing the caller owns. Deleting an id that no longer
// exists reports not-found rather than succeeding silently.
func (s *VehicleService) Delete(ctx context.Context, identity *types.Identity, id int) error {
	vehicle, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.CanPerform(identity, policy.ActionDelete, &vehicle); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.VehicleDeleted, vehicle)
	return nil
}

// ListForSeller returns the caller's own listings, newest first.
func (s *VehicleService) ListForSeller(ctx context.Context, identity *types.Identity) ([]types.Vehicle, error) {
	if identity == nil {
		return nil, policy.ErrUnauthorized
	}
	return s.repo.ListBySeller(ctx, identity.UserID, "")
}

// DealerStats aggregates the calling dealer's own listings by status.
func (s *VehicleService) DealerStats(ctx context.Context, identity *types.Identity) (types.DealerStats, error) {
	if err := policy.CanPerform(identity, policy.ActionViewDealerStats, nil); err != nil {
		return types.DealerStats{}, err
	}
	return s.repo.CountBySeller(ctx, identity.UserID)
}

// DealerInventory returns the calling dealer's own listings, optionally
// narrowed to a status. The scope is always the caller: no dealer can
// inspect another dealer's inventory through this path.
func (s *VehicleService) DealerInventory(ctx context.Context, identity *types.Identity, status types.VehicleStatus) ([]types.Vehicle, error) {
	if err := policy.CanPerform(identity, policy.ActionViewDealerInventory, nil); err != nil {
		return nil, err
	}
	return s.repo.ListBySeller(ctx, identity.UserID, status)
}

func (s *VehicleService) publish(ctx context.Context, eventType string, vehicle types.Vehicle) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:      eventType,
		VehicleID: vehicle.ID,
		SellerID:  vehicle.SellerID,
		Status:    string(vehicle.Status),
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to publish vehicle event",
			zap.String("event", eventType),
			zap.Int("vehicle_id", vehicle.ID),
			zap.Error(err),
		)
	}
}

func (s *VehicleService) invalidate(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil && s.logger != nil {
		s.logger.Warn("vehicle cache invalidation failed", zap.Int("vehicle_id", id), zap.Error(err))
	}
}

func applyVehicleUpdate(vehicle *types.Vehicle, update VehicleUpdate) {
	if update.Title != nil {
		vehicle.Title = *update.Title
	}
	if update.Make != nil {
		vehicle.Make = *update.Make
	}
	if update.Model != nil {
		vehicle.Model = *update.Model
	}
	if update.Year != nil {
		vehicle.Year = *update.Year
	}
	if update.Price != nil {
		vehicle.Price = *update.Price
	}
	if update.Mileage != nil {
		vehicle.Mileage = *update.Mileage
	}
	if update.Description != nil {
		vehicle.Description = *update.Description
	}
	if update.Features != nil {
		vehicle.Features = update.Features
	}
	if update.Status != nil {
		vehicle.Status = *update.Status
	}
	if update.Location != nil {
		vehicle.Location = *update.Location
	}
	if update.Specifications != nil {
		vehicle.Specifications = *update.Specifications
	}
}

func imageRefs(stored []StoredImage) []string {
	refs := make([]string, 0, len(stored))
	for _, image := range stored {
		refs = append(refs, image.URL)
	}
	return refs
}
