package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kariuki90/car-marketplace/internal/services"
	"github.com/Kariuki90/car-marketplace/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserTestRouter(userRepo *memUserRepo, vehicleRepo *memVehicleRepo) *chi.Mux {
	userService := services.NewUserService(userRepo)
	uploads := services.NewUploadService(&memBlobStore{objects: map[string][]byte{}}, nil)
	vehicleService := services.NewVehicleService(vehicleRepo, uploads, nil, nil, nil)
	authMiddleware := RequireAuth(testJWTSecret)

	router := chi.NewRouter()
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, vehicleService, authMiddleware)
	})
	return router
}

func seedUser(t *testing.T, repo *memUserRepo, role string) types.User {
	t.Helper()
	user, err := repo.Create(context.Background(), types.User{
		Name:  "Jane",
		Email: "jane@example.com",
		Role:  role,
		Phone: "0700000000",
	})
	require.NoError(t, err)
	return user
}

func authedRequest(t *testing.T, method, path string, body []byte, userID int, role string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID, role))
	return req
}

func TestGetProfile(t *testing.T) {
	userRepo := newMemUserRepo()
	user := seedUser(t, userRepo, types.RoleOwner)
	router := newUserTestRouter(userRepo, newMemVehicleRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/users/profile", nil, user.ID, user.Role))

	require.Equal(t, http.StatusOK, rec.Code)
	var got types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "jane@example.com", got.Email)
}

func TestGetProfileRequiresAuth(t *testing.T) {
	router := newUserTestRouter(newMemUserRepo(), newMemVehicleRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfilePartial(t *testing.T) {
	userRepo := newMemUserRepo()
	user := seedUser(t, userRepo, types.RoleDealer)
	router := newUserTestRouter(userRepo, newMemVehicleRepo())

	payload, err := json.Marshal(map[string]any{
		"phone":      "0711111111",
		"dealership": map[string]string{"name": "Jane Motors"},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/users/profile", payload, user.ID, user.Role))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got types.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "0711111111", got.Phone)
	assert.Equal(t, "Jane Motors", got.Dealership.Name)
	assert.Equal(t, "Jane", got.Name)
}

func TestUpdateProfileRejectsEmptyName(t *testing.T) {
	userRepo := newMemUserRepo()
	user := seedUser(t, userRepo, types.RoleOwner)
	router := newUserTestRouter(userRepo, newMemVehicleRepo())

	payload := []byte(`{"name":"  "}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPut, "/users/profile", payload, user.ID, user.Role))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOwnVehicles(t *testing.T) {
	userRepo := newMemUserRepo()
	user := seedUser(t, userRepo, types.RoleOwner)
	vehicleRepo := newMemVehicleRepo()
	seedListing(vehicleRepo, user.ID)
	seedListing(vehicleRepo, user.ID)
	seedListing(vehicleRepo, 99)
	router := newUserTestRouter(userRepo, vehicleRepo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/users/vehicles", nil, user.ID, user.Role))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]types.Vehicle
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp["vehicles"], 2)
}

func TestDealerStatsRequiresDealerRole(t *testing.T) {
	userRepo := newMemUserRepo()
	owner := seedUser(t, userRepo, types.RoleOwner)
	router := newUserTestRouter(userRepo, newMemVehicleRepo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/users/dealer/stats", nil, owner.ID, owner.Role))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDealerStats(t *testing.T) {
	userRepo := newMemUserRepo()
	dealer := seedUser(t, userRepo, types.RoleDealer)
	vehicleRepo := newMemVehicleRepo()
	seedListing(vehicleRepo, dealer.ID)
	seedListing(vehicleRepo, dealer.ID)
	router := newUserTestRouter(userRepo, vehicleRepo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/users/dealer/stats", nil, dealer.ID, dealer.Role))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats types.DealerStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 2, stats.TotalListings)
	assert.Equal(t, 2, stats.ActiveListings)
}

func TestDealerInventoryStatusFilter(t *testing.T) {
	userRepo := newMemUserRepo()
	dealer := seedUser(t, userRepo, types.RoleDealer)
	vehicleRepo := newMemVehicleRepo()
	available := seedListing(vehicleRepo, dealer.ID)
	sold := seedListing(vehicleRepo, dealer.ID)
	sold.Status = types.StatusSold
	vehicleRepo.vehicles[sold.ID] = sold
	router := newUserTestRouter(userRepo, vehicleRepo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/users/dealer/inventory?status=available", nil, dealer.ID, dealer.Role))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]types.Vehicle
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["vehicles"], 1)
	assert.Equal(t, available.ID, resp["vehicles"][0].ID)
}
