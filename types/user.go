package types

import "time"

// Role values assignable at registration. A user's role is fixed for the
// lifetime of the account.
const (
	// RoleOwner is a private seller.
	RoleOwner = "owner"

	// RoleDealer is a commercial seller with access to inventory views.
	RoleDealer = "dealer"
)

// User represents an account in the marketplace.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address, unique across accounts.
	Email string `json:"email" db:"email"`

	// Role is either "owner" or "dealer". Immutable after registration.
	Role string `json:"role" db:"role"`

	// Phone is an optional contact number.
	Phone string `json:"phone" db:"phone"`

	// Address is the user's postal address.
	Address Address `json:"address" db:"address"`

	// Dealership holds business details for dealer accounts.
	Dealership Dealership `json:"dealership" db:"dealership"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent profile update.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Address is a user's postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Dealership holds the business details of a dealer account.
type Dealership struct {
	Name    string `json:"name"`
	License string `json:"license"`
	Website string `json:"website"`
}

// Identity is the verified actor attached to an authenticated request.
// A nil *Identity means the request is anonymous.
type Identity struct {
	UserID int
	Role   string
}

// IsDealer reports whether the identity carries the dealer role.
func (i *Identity) IsDealer() bool {
	return i != nil && i.Role == RoleDealer
}
