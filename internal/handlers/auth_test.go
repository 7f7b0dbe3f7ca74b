package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kariuki90/car-marketplace/internal/services"
	"github.com/Kariuki90/car-marketplace/internal/store"
	"github.com/Kariuki90/car-marketplace/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (r *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func newAuthRouter(repo *memUserRepo) *chi.Mux {
	userService := services.NewUserService(repo)
	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testJWTSecret)
	})
	return router
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	router := newAuthRouter(newMemUserRepo())

	rec := postJSON(t, router, "/auth/register", RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "hunter22",
		Role:     types.RoleDealer,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var registered AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&registered))
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, types.RoleDealer, registered.User.Role)
	assert.Empty(t, registered.User.PasswordHash)

	rec = postJSON(t, router, "/auth/login", LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var loggedIn AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&loggedIn))

	identity, err := parseTokenIdentity(loggedIn.Token, []byte(testJWTSecret))
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, identity.UserID)
	assert.Equal(t, types.RoleDealer, identity.Role)
}

func TestRegisterDefaultsToOwnerRole(t *testing.T) {
	router := newAuthRouter(newMemUserRepo())

	rec := postJSON(t, router, "/auth/register", RegisterRequest{
		Name:     "Sam",
		Email:    "sam@example.com",
		Password: "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, types.RoleOwner, resp.User.Role)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	router := newAuthRouter(newMemUserRepo())

	rec := postJSON(t, router, "/auth/register", RegisterRequest{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "pw123456",
		Role:     "admin",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	router := newAuthRouter(newMemUserRepo())

	first := postJSON(t, router, "/auth/register", RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "pw123456",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, router, "/auth/register", RegisterRequest{
		Name: "Janet", Email: "jane@example.com", Password: "pw654321",
	})
	require.Equal(t, http.StatusBadRequest, second.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(second.Body).Decode(&resp))
	assert.Equal(t, "Email already registered", resp.Message)
}

func TestLoginWrongPassword(t *testing.T) {
	router := newAuthRouter(newMemUserRepo())

	rec := postJSON(t, router, "/auth/register", RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "correct-pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/auth/login", LoginRequest{
		Email: "jane@example.com", Password: "wrong-pw",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Invalid credentials", resp.Message)
}

func TestLoginUnknownEmail(t *testing.T) {
	router := newAuthRouter(newMemUserRepo())

	rec := postJSON(t, router, "/auth/login", LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	middleware := RequireAuth(testJWTSecret)
	protected := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromContext(r.Context())
		require.NotNil(t, identity)
		writeJSON(w, http.StatusOK, identity)
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	token, err := issueToken(types.User{ID: 1, Role: types.RoleOwner}, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	_, err = parseTokenIdentity(token, []byte(testJWTSecret))
	assert.Error(t, err)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	token, err := issueToken(types.User{ID: 1, Role: types.RoleOwner}, []byte(testJWTSecret), -time.Minute)
	require.NoError(t, err)

	_, err = parseTokenIdentity(token, []byte(testJWTSecret))
	assert.Error(t, err)
}

func TestRequireAuthInjectsIdentity(t *testing.T) {
	middleware := RequireAuth(testJWTSecret)
	var seen *types.Identity
	protected := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 9, types.RoleDealer))
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, 9, seen.UserID)
	assert.Equal(t, types.RoleDealer, seen.Role)
}
