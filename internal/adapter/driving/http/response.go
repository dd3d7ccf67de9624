package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/medilens/internal/application"
	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// SessionResponse is the JSON representation of the session state.
type SessionResponse struct {
	View          string `json:"view"`
	Authenticated bool   `json:"authenticated"`
	Subject       string `json:"subject,omitempty"`
	Placeholder   bool   `json:"placeholder"`
}

// CoordinatesResponse is a latitude/longitude pair.
type CoordinatesResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationResponse is the JSON representation of the geolocation state.
type LocationResponse struct {
	Status      string               `json:"status"`
	Coordinates *CoordinatesResponse `json:"coordinates"`
}

// SetLocationRequest is the JSON body for manually setting coordinates.
type SetLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// HistoryEntryResponse is the JSON representation of one past analysis.
type HistoryEntryResponse struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Symptoms  string               `json:"symptoms,omitempty"`
	Timestamp string               `json:"timestamp,omitempty"`
	ImageURL  string               `json:"image_url,omitempty"`
	Result    model.AnalysisResult `json:"result"`
}

func toSessionResponse(s application.ScreenState) SessionResponse {
	return SessionResponse{
		View:          string(s.View),
		Authenticated: s.Authenticated,
		Subject:       s.Subject,
		Placeholder:   s.Placeholder,
	}
}

func toLocationResponse(s application.LocationState) LocationResponse {
	resp := LocationResponse{Status: string(s.Status)}
	if s.Coords != nil {
		resp.Coordinates = &CoordinatesResponse{Latitude: s.Coords.Latitude, Longitude: s.Coords.Longitude}
	}
	return resp
}

// toHistoryEntryResponse converts a HistoryEntry. Timestamp falls back to the
// raw value when it could not be parsed.
func toHistoryEntryResponse(e model.HistoryEntry) HistoryEntryResponse {
	ts := e.RawTimestamp
	if !e.Timestamp.IsZero() {
		ts = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return HistoryEntryResponse{
		ID:        e.ID,
		Title:     e.Title,
		Symptoms:  e.Symptoms,
		Timestamp: ts,
		ImageURL:  e.ImageURL,
		Result:    e.Result,
	}
}
