package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Kariuki90/car-marketplace/internal/services"
	"github.com/Kariuki90/car-marketplace/types"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides account and dealer endpoints. Everything here is
// scoped to the authenticated caller.
type UserHandler struct {
	userService    *services.UserService
	vehicleService *services.VehicleService
}

// NewUserHandler constructs a handler with the provided services.
func NewUserHandler(userService *services.UserService, vehicleService *services.VehicleService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		vehicleService: vehicleService,
	}
}

// UserRouter registers user routes on the given router. All routes
// require authentication.
func UserRouter(r chi.Router, userService *services.UserService, vehicleService *services.VehicleService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService, vehicleService)

	r.Use(authMiddleware)
	r.Get("/profile", handler.GetProfile)
	r.Put("/profile", handler.UpdateProfile)
	r.Get("/vehicles", handler.ListOwnVehicles)
	r.Get("/dealer/stats", handler.DealerStats)
	r.Get("/dealer/inventory", handler.DealerInventory)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ProfileUpdateRequest carries the profile fields a user may change.
type ProfileUpdateRequest struct {
	Name       *string           `json:"name"`
	Phone      *string           `json:"phone"`
	Address    *types.Address    `json:"address"`
	Dealership *types.Dealership `json:"dealership"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), identityFromContext(r.Context()), services.ProfileUpdate{
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		Dealership: req.Dealership,
	})
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListOwnVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicleService.ListForSeller(r.Context(), identityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "Vehicle not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]types.Vehicle{"vehicles": vehicles})
}

func (h *UserHandler) DealerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.vehicleService.DealerStats(r.Context(), identityFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) DealerInventory(w http.ResponseWriter, r *http.Request) {
	status := types.VehicleStatus(strings.TrimSpace(r.URL.Query().Get("status")))

	vehicles, err := h.vehicleService.DealerInventory(r.Context(), identityFromContext(r.Context()), status)
	if err != nil {
		writeServiceError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]types.Vehicle{"vehicles": vehicles})
}
