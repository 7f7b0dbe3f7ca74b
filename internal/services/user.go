package services

import (
	"context"
	"strings"

	"github.com/Kariuki90/car-marketplace/internal/policy"
	"github.com/Kariuki90/car-marketplace/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// ProfileUpdate carries the profile fields a user may change. Nil fields
// were not supplied. Role and email are deliberately not here: the role
// is fixed at registration.
type ProfileUpdate struct {
	Name       *string
	Phone      *string
	Address    *types.Address
	Dealership *types.Dealership
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, identity *types.Identity, update ProfileUpdate) (types.User, error) {
	if identity == nil {
		return types.User{}, policy.ErrUnauthorized
	}

	verr := &ValidationError{}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		verr.add("name", "Name cannot be empty")
	}
	if err := verr.orNil(); err != nil {
		return types.User{}, err
	}

	user, err := s.repo.GetByID(ctx, identity.UserID)
	if err != nil {
		return types.User{}, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.Dealership != nil {
		user.Dealership = *update.Dealership
	}

	return s.repo.Update(ctx, user)
}
