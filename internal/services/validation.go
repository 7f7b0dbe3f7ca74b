package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kariuki90/car-marketplace/types"
)

const minListingYear = 1900

// FieldError names a single violated field and the rule it broke.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every violated field of a request, not just the
// first, so a form can surface all problems in one round trip.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Violations = append(e.Violations, FieldError{Field: field, Message: message})
}

// orNil returns nil when no violations were collected, so callers can
// treat the accumulator as an ordinary error value.
func (e *ValidationError) orNil() *ValidationError {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// VehicleInput carries the listing fields supplied on create.
type VehicleInput struct {
	Title          string
	Make           string
	Model          string
	Year           int
	Price          float64
	Mileage        int
	Description    string
	Features       []string
	Status         types.VehicleStatus
	Location       *types.Location
	Specifications *types.Specifications
}

// VehicleUpdate carries the listing fields supplied on update. Nil fields
// were not supplied and are left untouched and unvalidated.
type VehicleUpdate struct {
	Title          *string
	Make           *string
	Model          *string
	Year           *int
	Price          *float64
	Mileage        *int
	Description    *string
	Features       []string
	Status         *types.VehicleStatus
	Location       *types.Location
	Specifications *types.Specifications
}

func validateVehicleInput(input VehicleInput) *ValidationError {
	verr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		verr.add("title", "Title is required")
	}
	if strings.TrimSpace(input.Make) == "" {
		verr.add("make", "Make is required")
	}
	if strings.TrimSpace(input.Model) == "" {
		verr.add("model", "Model is required")
	}
	if input.Year < minListingYear || input.Year > time.Now().Year()+1 {
		verr.add("year", "Invalid year")
	}
	if input.Price < 0 {
		verr.add("price", "Price must be a positive number")
	}
	if input.Mileage < 0 {
		verr.add("mileage", "Mileage must be a positive number")
	}
	if strings.TrimSpace(input.Description) == "" {
		verr.add("description", "Description is required")
	}
	if input.Status != "" && !input.Status.Valid() {
		verr.add("status", "Invalid status")
	}
	if input.Location == nil {
		verr.add("location", "Location is required")
	}
	if input.Specifications == nil {
		verr.add("specifications", "Specifications are required")
	}

	return verr.orNil()
}

func validateVehicleUpdate(update VehicleUpdate) *ValidationError {
	verr := &ValidationError{}

	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		verr.add("title", "Title is required")
	}
	if update.Make != nil && strings.TrimSpace(*update.Make) == "" {
		verr.add("make", "Make is required")
	}
	if update.Model != nil && strings.TrimSpace(*update.Model) == "" {
		verr.add("model", "Model is required")
	}
	if update.Year != nil && (*update.Year < minListingYear || *update.Year > time.Now().Year()+1) {
		verr.add("year", "Invalid year")
	}
	if update.Price != nil && *update.Price < 0 {
		verr.add("price", "Price must be a positive number")
	}
	if update.Mileage != nil && *update.Mileage < 0 {
		verr.add("mileage", "Mileage must be a positive number")
	}
	if update.Description != nil && strings.TrimSpace(*update.Description) == "" {
		verr.add("description", "Description is required")
	}
	if update.Status != nil && !update.Status.Valid() {
		verr.add("status", "Invalid status")
	}

	return verr.orNil()
}
