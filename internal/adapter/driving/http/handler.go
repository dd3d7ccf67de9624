// Package httphandler serves the local JSON API.
package httphandler

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/ericfisherdev/medilens/internal/application"
	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	session     *application.Session
	locator     *application.Locator
	analysisSvc *application.AnalysisService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	session *application.Session,
	locator *application.Locator,
	analysisSvc *application.AnalysisService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		session:     session,
		locator:     locator,
		analysisSvc: analysisSvc,
		logger:      logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/session", h.GetSession)
	mux.HandleFunc("GET /api/v1/location", h.GetLocation)
	mux.HandleFunc("POST /api/v1/location", requireJSON(h.SetLocation))
	mux.HandleFunc("POST /api/v1/location/request", requireJSON(h.RequestLocation))
	mux.HandleFunc("DELETE /api/v1/location", h.ClearLocation)
	mux.HandleFunc("GET /api/v1/history", h.ListHistory)
}

// requireJSON rejects requests whose body is not declared as JSON. Browsers
// cannot send that content type cross-origin without a preflight, so plain
// form or text posts from other pages never reach next.
func requireJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
			return
		}
		next(w, r)
	}
}

// Health returns a simple liveness response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetSession returns the current view and authentication state.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(h.session.Screen(r.Context())))
}

// GetLocation returns the geolocation state.
func (h *Handler) GetLocation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toLocationResponse(h.locator.State()))
}

// RequestLocation acquires a position from the device and returns the
// resulting state. Denial and failures are reported in the state, not as
// HTTP errors.
func (h *Handler) RequestLocation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toLocationResponse(h.locator.Request(r.Context())))
}

// SetLocation stores manually entered coordinates.
func (h *Handler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req SetLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	if err := h.locator.SetCoordinates(model.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}); err != nil {
		writeError(w, http.StatusBadRequest, application.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, toLocationResponse(h.locator.State()))
}

// ClearLocation resets the geolocation state.
func (h *Handler) ClearLocation(w http.ResponseWriter, _ *http.Request) {
	h.locator.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// ListHistory returns past analyses, most recent first.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if !h.session.Authenticated(r.Context()) {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	entries, err := h.analysisSvc.History(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch history", "error", err)
		writeJSON(w, statusFor(err), errorResponse{
			Error: application.UserMessage(err),
			Kind:  string(application.Classify(err)),
		})
		return
	}

	resp := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toHistoryEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps a failed remote operation onto a local response status.
func statusFor(err error) int {
	switch application.Classify(err) {
	case model.ErrorKindValidation:
		return http.StatusBadRequest
	case model.ErrorKindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}
