package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Kariuki90/car-marketplace/internal/services"
	"github.com/Kariuki90/car-marketplace/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxMultipartMemory = 32 << 20
	formFieldImages    = "images"
)

// VehicleHandler provides HTTP handlers for vehicle listings.
type VehicleHandler struct {
	vehicleService *services.VehicleService
}

// NewVehicleHandler constructs a handler with the provided service.
func NewVehicleHandler(vehicleService *services.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// VehicleRouter registers vehicle routes on the given router. Reads are
// public; mutations go through the auth middleware.
func VehicleRouter(r chi.Router, vehicleService *services.VehicleService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewVehicleHandler(vehicleService)

	r.Get("/", handler.ListVehicles)
	r.With(authMiddleware).Post("/", handler.CreateVehicle)
	r.Route("/{vehicleID}", func(r chi.Router) {
		r.Get("/", handler.GetVehicle)
		r.With(authMiddleware).Put("/", handler.UpdateVehicle)
		r.With(authMiddleware).Delete("/", handler.DeleteVehicle)
	})
}

// VehicleListResponse is the paginated search response payload.
type VehicleListResponse struct {
	Vehicles   []types.Vehicle `json:"vehicles"`
	TotalPages int             `json:"totalPages"`
}

func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	filter := parseVehicleFilter(r)

	vehicles, totalPages, err := h.vehicleService.Search(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, VehicleListResponse{
		Vehicles:   vehicles,
		TotalPages: totalPages,
	})
}

func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseVehicleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := h.vehicleService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Vehicle not found")
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	input := parseVehicleInput(r)
	images, err := collectAttachments(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.vehicleService.Create(r.Context(), identityFromContext(r.Context()), input, images)
	if err != nil {
		writeServiceError(w, err, "Vehicle not found")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *VehicleHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseVehicleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	update := parseVehicleUpdate(r)
	images, err := collectAttachments(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.vehicleService.Update(r.Context(), identityFromContext(r.Context()), id, update, images)
	if err != nil {
		writeServiceError(w, err, "Vehicle not found")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseVehicleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.vehicleService.Delete(r.Context(), identityFromContext(r.Context()), id); err != nil {
		writeServiceError(w, err, "Vehicle not found")
		return
	}

	writeJSON(w, http.StatusOK, ErrorResponse{Message: "Vehicle removed"})
}

func parseVehicleID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "vehicleID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid vehicle id")
	}
	return id, nil
}

// parseVehicleFilter reads the optional search constraints. Malformed
// numeric values are treated as absent rather than rejected, so a bad
// bound degrades to an unfiltered search instead of an error.
func parseVehicleFilter(r *http.Request) types.VehicleFilter {
	q := r.URL.Query()

	filter := types.VehicleFilter{
		Make:     strings.TrimSpace(q.Get("make")),
		Model:    strings.TrimSpace(q.Get("model")),
		Status:   types.VehicleStatus(strings.TrimSpace(q.Get("status"))),
		Location: strings.TrimSpace(q.Get("location")),
	}

	if value, err := strconv.Atoi(strings.TrimSpace(q.Get("minYear"))); err == nil {
		filter.MinYear = &value
	}
	if value, err := strconv.Atoi(strings.TrimSpace(q.Get("maxYear"))); err == nil {
		filter.MaxYear = &value
	}
	if value, err := strconv.ParseFloat(strings.TrimSpace(q.Get("minPrice")), 64); err == nil {
		filter.MinPrice = &value
	}
	if value, err := strconv.ParseFloat(strings.TrimSpace(q.Get("maxPrice")), 64); err == nil {
		filter.MaxPrice = &value
	}
	if value, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil {
		filter.Page = value
	}
	if value, err := strconv.Atoi(strings.TrimSpace(q.Get("limit"))); err == nil {
		filter.Limit = value
	}

	return filter
}

// parseVehicleInput reads the listing fields from the multipart form.
// Parse failures are folded into out-of-range sentinel values so the
// service can report every violated field in one response.
func parseVehicleInput(r *http.Request) services.VehicleInput {
	return services.VehicleInput{
		Title:          strings.TrimSpace(r.FormValue("title")),
		Make:           strings.TrimSpace(r.FormValue("make")),
		Model:          strings.TrimSpace(r.FormValue("model")),
		Year:           parseIntField(r.FormValue("year"), 0),
		Price:          parseFloatField(r.FormValue("price"), -1),
		Mileage:        parseIntField(r.FormValue("mileage"), -1),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Features:       parseFeatures(r.FormValue("features")),
		Status:         types.VehicleStatus(strings.TrimSpace(r.FormValue("status"))),
		Location:       parseJSONField[types.Location](r.FormValue("location")),
		Specifications: parseJSONField[types.Specifications](r.FormValue("specifications")),
	}
}

// parseVehicleUpdate reads only the fields present in the form; an empty
// value means the field was not supplied and stays untouched.
func parseVehicleUpdate(r *http.Request) services.VehicleUpdate {
	var update services.VehicleUpdate

	if value := strings.TrimSpace(r.FormValue("title")); value != "" {
		update.Title = &value
	}
	if value := strings.TrimSpace(r.FormValue("make")); value != "" {
		update.Make = &value
	}
	if value := strings.TrimSpace(r.FormValue("model")); value != "" {
		update.Model = &value
	}
	if raw := strings.TrimSpace(r.FormValue("year")); raw != "" {
		value := parseIntField(raw, 0)
		update.Year = &value
	}
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		value := parseFloatField(raw, -1)
		update.Price = &value
	}
	if raw := strings.TrimSpace(r.FormValue("mileage")); raw != "" {
		value := parseIntField(raw, -1)
		update.Mileage = &value
	}
	if value := strings.TrimSpace(r.FormValue("description")); value != "" {
		update.Description = &value
	}
	if raw := strings.TrimSpace(r.FormValue("features")); raw != "" {
		update.Features = parseFeatures(raw)
	}
	if raw := strings.TrimSpace(r.FormValue("status")); raw != "" {
		value := types.VehicleStatus(raw)
		update.Status = &value
	}
	if location := parseJSONField[types.Location](r.FormValue("location")); location != nil {
		update.Location = location
	}
	if specs := parseJSONField[types.Specifications](r.FormValue("specifications")); specs != nil {
		update.Specifications = specs
	}

	return update
}

func parseIntField(raw string, invalid int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return invalid
	}
	return value
}

func parseFloatField(raw string, invalid float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return invalid
	}
	return value
}

// parseFeatures accepts either a JSON array or a comma-separated list.
func parseFeatures(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var features []string
		if err := json.Unmarshal([]byte(raw), &features); err == nil {
			return features
		}
	}

	parts := strings.Split(raw, ",")
	features := make([]string, 0, len(parts))
	for _, part := range parts {
		feature := strings.TrimSpace(part)
		if feature != "" {
			features = append(features, feature)
		}
	}
	return features
}

func parseJSONField[T any](raw string) *T {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil
	}
	return &value
}

// collectAttachments reads the uploaded image files. Each read is capped
// just past the per-file ceiling so an oversized file is still handed to
// the gatekeeper, which rejects it by name.
func collectAttachments(form *multipart.Form) ([]services.Attachment, error) {
	if form == nil {
		return nil, nil
	}

	files := form.File[formFieldImages]
	attachments := make([]services.Attachment, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, errors.New("failed to read upload")
		}

		data, err := io.ReadAll(io.LimitReader(file, services.MaxImageBytes+1))
		_ = file.Close()
		if err != nil {
			return nil, errors.New("failed to read upload")
		}

		attachments = append(attachments, services.Attachment{
			Filename: fileHeader.Filename,
			Data:     data,
		})
	}
	return attachments, nil
}
