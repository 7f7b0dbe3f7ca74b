package types

import "time"

// VehicleStatus represents the sale state of a listing.
type VehicleStatus string

// Supported vehicle statuses.
const (
	// StatusAvailable indicates the vehicle is listed and for sale.
	StatusAvailable VehicleStatus = "available"

	// StatusPending indicates a sale is in progress.
	StatusPending VehicleStatus = "pending"

	// StatusSold indicates the vehicle has been sold.
	StatusSold VehicleStatus = "sold"
)

// Valid reports whether the status is one of the supported values.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold:
		return true
	default:
		return false
	}
}

// Vehicle represents a vehicle-for-sale listing in the marketplace.
type Vehicle struct {
	// ID is the unique identifier of the listing.
	ID int `json:"id" db:"id"`

	// SellerID identifies the user who owns the listing. It is set once
	// at creation and never reassigned.
	SellerID int `json:"sellerId" db:"seller_id"`

	// Seller carries the owner's public contact fields when the listing
	// is fetched individually. Omitted in list views.
	Seller *SellerInfo `json:"seller,omitempty" db:"-"`

	// Title is the human-readable headline of the listing.
	Title string `json:"title" db:"title"`

	// Make is the vehicle manufacturer (e.g. "Toyota").
	Make string `json:"make" db:"make"`

	// Model is the vehicle model (e.g. "Corolla").
	Model string `json:"model" db:"model"`

	// Year is the model year. Accepted range is 1900 through next year.
	Year int `json:"year" db:"year"`

	// Price is the asking price. Never negative.
	Price float64 `json:"price" db:"price"`

	// Mileage is the odometer reading. Never negative.
	Mileage int `json:"mileage" db:"mileage"`

	// Description contains the full free-form listing text.
	Description string `json:"description" db:"description"`

	// Features are free-form highlights, in the order the seller gave them.
	Features []string `json:"features" db:"features"`

	// Images are stable references to the uploaded photos, in display
	// order. A published listing carries at least one.
	Images []string `json:"images" db:"images"`

	// Status is the sale state of the listing. Defaults to "available".
	Status VehicleStatus `json:"status" db:"status"`

	// Location is where the vehicle is offered.
	Location Location `json:"location" db:"location"`

	// Specifications is the technical description block.
	Specifications Specifications `json:"specifications" db:"specifications"`

	// CreatedAt is the timestamp at which the listing was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent mutation.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// SellerInfo is the subset of the owner's profile exposed alongside a
// listing. It never includes credentials or private profile fields.
type SellerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Location describes where a vehicle is offered for sale.
type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Specifications is the technical description block of a listing.
type Specifications struct {
	Transmission string `json:"transmission"`
	FuelType     string `json:"fuelType"`
	BodyStyle    string `json:"bodyStyle"`
	Color        string `json:"color"`
	Doors        int    `json:"doors"`
	Seats        int    `json:"seats"`
	VIN          string `json:"vin"`
}

// VehicleFilter holds the optional search constraints for a listing query.
// A zero field imposes no constraint; numeric bounds are pointers so that
// zero remains a usable bound. The filter is request-scoped and is the only
// input from which a repository query may be built.
type VehicleFilter struct {
	Make     string
	Model    string
	MinYear  *int
	MaxYear  *int
	MinPrice *float64
	MaxPrice *float64
	Status   VehicleStatus
	// Location is matched against the listing's city.
	Location string
	Page     int
	Limit    int
}

// DealerStats aggregates a dealer's own listings by status.
type DealerStats struct {
	TotalListings  int `json:"totalListings"`
	ActiveListings int `json:"activeListings"`
	SoldVehicles   int `json:"soldVehicles"`
}
