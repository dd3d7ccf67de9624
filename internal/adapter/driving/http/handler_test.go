package httphandler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/medilens/internal/adapter/driven/geolocation"
	httphandler "github.com/ericfisherdev/medilens/internal/adapter/driving/http"
	"github.com/ericfisherdev/medilens/internal/application"
	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockTokenStore struct {
	cred *model.Credential
}

func (m *mockTokenStore) Set(_ context.Context, cred *model.Credential) error {
	m.cred = cred
	return nil
}

func (m *mockTokenStore) Get(_ context.Context) (*model.Credential, error) {
	return m.cred, nil
}

type mockAPI struct {
	history any
	err     error
}

func (m *mockAPI) Signup(_ context.Context, _, _, _ string) (any, error) { return nil, nil }
func (m *mockAPI) Login(_ context.Context, _, _ string) (any, error)     { return nil, nil }
func (m *mockAPI) Logout(_ context.Context) error                        { return nil }
func (m *mockAPI) AnalyzeText(_ context.Context, _ string, _ *model.Coordinates) (any, error) {
	return nil, nil
}
func (m *mockAPI) AnalyzeImage(_ context.Context, _ model.ImageFile, _ string, _ *model.Coordinates) (any, error) {
	return nil, nil
}
func (m *mockAPI) GetHistory(_ context.Context) (any, error) { return m.history, m.err }

var (
	_ driven.TokenStore  = (*mockTokenStore)(nil)
	_ driven.AnalysisAPI = (*mockAPI)(nil)
)

type fixture struct {
	mux     http.Handler
	session *application.Session
	locator *application.Locator
}

func setup(t *testing.T, cred *model.Credential, api *mockAPI, source driven.PositionSource) fixture {
	t.Helper()
	tokens := &mockTokenStore{cred: cred}
	session := application.NewSession(api, tokens, time.Hour)
	locator := application.NewLocator(source, application.DefaultPositionOptions())
	h := httphandler.NewHandler(session, locator, application.NewAnalysisService(api), slog.Default())

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	return fixture{mux: httphandler.ApplyMiddleware(mux, slog.Default()), session: session, locator: locator}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doWithType(t, h, method, path, body, "application/json")
}

func doWithType(t *testing.T, h http.Handler, method, path, body, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// --- Tests ---

func TestHealth(t *testing.T) {
	f := setup(t, nil, &mockAPI{}, nil)

	rec := do(t, f.mux, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	resp := decodeBody[httphandler.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	_, err := time.Parse(time.RFC3339, resp.Time)
	assert.NoError(t, err)
}

func TestGetSession_Splash(t *testing.T) {
	f := setup(t, nil, &mockAPI{}, nil)

	rec := do(t, f.mux, http.MethodGet, "/api/v1/session", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[httphandler.SessionResponse](t, rec)
	assert.Equal(t, "splash", resp.View)
	assert.False(t, resp.Authenticated)
}

func TestGetSession_Authenticated(t *testing.T) {
	f := setup(t, &model.Credential{Token: "t", Subject: "a@b.c"}, &mockAPI{}, nil)
	f.session.ContinueFromSplash(context.Background())

	rec := do(t, f.mux, http.MethodGet, "/api/v1/session", "")

	resp := decodeBody[httphandler.SessionResponse](t, rec)
	assert.Equal(t, "text", resp.View)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "a@b.c", resp.Subject)
	assert.False(t, resp.Placeholder)
}

func TestLocation_RequestGranted(t *testing.T) {
	src := geolocation.NewFixedSource(model.Coordinates{Latitude: 12.9, Longitude: 77.6}, true)
	f := setup(t, nil, &mockAPI{}, src)

	rec := do(t, f.mux, http.MethodPost, "/api/v1/location/request", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[httphandler.LocationResponse](t, rec)
	assert.Equal(t, "granted", resp.Status)
	require.NotNil(t, resp.Coordinates)
	assert.Equal(t, 12.9, resp.Coordinates.Latitude)
	assert.Equal(t, 77.6, resp.Coordinates.Longitude)
}

func TestLocation_RequestDenied(t *testing.T) {
	src := geolocation.NewFixedSource(model.Coordinates{Latitude: 12.9, Longitude: 77.6}, false)
	f := setup(t, nil, &mockAPI{}, src)

	rec := do(t, f.mux, http.MethodPost, "/api/v1/location/request", "")

	resp := decodeBody[httphandler.LocationResponse](t, rec)
	assert.Equal(t, "denied", resp.Status)
	assert.Nil(t, resp.Coordinates)
}

func TestLocation_RequestUnsupported(t *testing.T) {
	f := setup(t, nil, &mockAPI{}, nil)

	rec := do(t, f.mux, http.MethodPost, "/api/v1/location/request", "")

	assert.Equal(t, "unsupported", decodeBody[httphandler.LocationResponse](t, rec).Status)
}

func TestLocation_SetAndClear(t *testing.T) {
	f := setup(t, nil, &mockAPI{}, nil)

	rec := do(t, f.mux, http.MethodPost, "/api/v1/location", `{"latitude": 1.5, "longitude": 2.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[httphandler.LocationResponse](t, rec)
	require.NotNil(t, resp.Coordinates)
	assert.Equal(t, 1.5, resp.Coordinates.Latitude)

	rec = do(t, f.mux, http.MethodDelete, "/api/v1/location", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, f.mux, http.MethodGet, "/api/v1/location", "")
	resp = decodeBody[httphandler.LocationResponse](t, rec)
	assert.Equal(t, "idle", resp.Status)
	assert.Nil(t, resp.Coordinates)
}

func TestLocation_SetInvalid(t *testing.T) {
	f := setup(t, nil, &mockAPI{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{`},
		{name: "missing longitude", body: `{"latitude": 1}`},
		{name: "out of range", body: `{"latitude": 91, "longitude": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, f.mux, http.MethodPost, "/api/v1/location", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListHistory_NotLoggedIn(t *testing.T) {
	f := setup(t, nil, &mockAPI{}, nil)

	rec := do(t, f.mux, http.MethodGet, "/api/v1/history", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListHistory(t *testing.T) {
	api := &mockAPI{history: []any{
		map[string]any{"id": "1", "symptoms": "cough", "created_at": "2024-05-01T10:00:00Z"},
		map[string]any{"id": "2", "symptoms": "fever"},
	}}
	f := setup(t, &model.Credential{Token: "t", Subject: "a@b.c"}, api, nil)

	rec := do(t, f.mux, http.MethodGet, "/api/v1/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[[]httphandler.HistoryEntryResponse](t, rec)
	require.Len(t, resp, 2)
	assert.Equal(t, "2", resp[0].ID)
	assert.Equal(t, "1", resp[1].ID)
	assert.Equal(t, "2024-05-01T10:00:00Z", resp[1].Timestamp)
	assert.Equal(t, "cough", resp[1].Title)
}

func TestListHistory_GatewayError(t *testing.T) {
	api := &mockAPI{err: &model.RequestError{Message: "token expired", HTTPStatus: 401}}
	f := setup(t, &model.Credential{Token: "t", Subject: "a@b.c"}, api, nil)

	rec := do(t, f.mux, http.MethodGet, "/api/v1/history", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), application.MsgSessionInvalid)
	assert.Contains(t, rec.Body.String(), `"kind":"authentication"`)
}

func TestLocationWrites_RequireJSON(t *testing.T) {
	for _, path := range []string{"/api/v1/location", "/api/v1/location/request"} {
		for _, contentType := range []string{"text/plain", "application/x-www-form-urlencoded", ""} {
			t.Run(path+" "+contentType, func(t *testing.T) {
				src := geolocation.NewFixedSource(model.Coordinates{Latitude: 12.9, Longitude: 77.6}, true)
				f := setup(t, nil, &mockAPI{}, src)

				rec := doWithType(t, f.mux, http.MethodPost, path, `{"latitude": 1.5, "longitude": 2.5}`, contentType)

				assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
				assert.Equal(t, model.GeoStatusIdle, f.locator.State().Status)
				assert.Nil(t, f.locator.Coordinates())
			})
		}
	}
}

func TestSetLocation_AcceptsJSONWithCharset(t *testing.T) {
	f := setup(t, nil, &mockAPI{}, nil)

	rec := doWithType(t, f.mux, http.MethodPost, "/api/v1/location", `{"latitude": 1.5, "longitude": 2.5}`, "application/json; charset=utf-8")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &model.Coordinates{Latitude: 1.5, Longitude: 2.5}, f.locator.Coordinates())
}

func TestRecoveryMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := httphandler.ApplyMiddleware(mux, slog.Default())

	rec := do(t, h, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotEmpty(t, rec.Header().Get(httphandler.RequestIDHeader))
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /echo", func(w http.ResponseWriter, r *http.Request) {
		seen = httphandler.RequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := httphandler.ApplyMiddleware(mux, slog.Default())

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "assigned when missing", incoming: "", keep: false},
		{name: "incoming kept", incoming: "req-42.a_b", keep: true},
		{name: "unsafe replaced", incoming: "bad id\nInjected: 1", keep: false},
		{name: "too long replaced", incoming: strings.Repeat("a", 65), keep: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/echo", nil)
			if tt.incoming != "" {
				req.Header.Set(httphandler.RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			id := rec.Header().Get(httphandler.RequestIDHeader)
			require.NotEmpty(t, id)
			assert.Equal(t, id, seen)
			if tt.keep {
				assert.Equal(t, tt.incoming, id)
			} else {
				assert.NotEqual(t, tt.incoming, id)
				_, err := uuid.Parse(id)
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestID_OutsideMiddleware(t *testing.T) {
	assert.Equal(t, "", httphandler.RequestID(context.Background()))
}
