package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Kariuki90/car-marketplace/internal/policy"
	"github.com/Kariuki90/car-marketplace/internal/services"
	"github.com/Kariuki90/car-marketplace/internal/store"
	"github.com/Kariuki90/car-marketplace/types"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ValidationResponse enumerates every violated field of a request.
type ValidationResponse struct {
	Errors []services.FieldError `json:"errors"`
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func identityFromContext(ctx context.Context) *types.Identity {
	identity, _ := ctx.Value(contextIdentityKey).(*types.Identity)
	return identity
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeServiceError maps the error taxonomy of the service layer to HTTP
// statuses: validation 400, missing credential 401, insufficient
// entitlement 403, absent entity 404, everything else a generic 500.
func writeServiceError(w http.ResponseWriter, err error, notFoundMessage string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ValidationResponse{Errors: verr.Violations})
	case errors.Is(err, policy.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, policy.ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMessage)
	default:
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
