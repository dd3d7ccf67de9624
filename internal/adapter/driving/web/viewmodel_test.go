package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/medilens/internal/application"
	"github.com/ericfisherdev/medilens/internal/domain/model"
)

func TestToFacilityViewModel_Tiers(t *testing.T) {
	d := func(f float64) *float64 { return &f }

	tests := []struct {
		name      string
		distance  *float64
		wantClass string
		wantLabel string
		wantKm    string
	}{
		{name: "near", distance: d(1200), wantClass: "distance-near", wantLabel: "1200 m", wantKm: "1.2 km"},
		{name: "moderate", distance: d(2500), wantClass: "distance-moderate", wantLabel: "2500 m", wantKm: "2.5 km"},
		{name: "far", distance: d(2501), wantClass: "distance-far", wantLabel: "2501 m", wantKm: "2.5 km"},
		{name: "unknown", distance: nil, wantClass: "distance-unknown", wantLabel: "—", wantKm: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toFacilityViewModel(model.Facility{Name: "X", DistanceMeters: tt.distance})
			assert.Equal(t, tt.wantClass, got.TierClass)
			assert.Equal(t, tt.wantLabel, got.DistanceLabel)
			assert.Equal(t, tt.wantKm, got.KilometersLabel)
		})
	}
}

func TestToAnalysisViewModel_NumbersSteps(t *testing.T) {
	got := toAnalysisViewModel(model.AnalysisResult{
		Conditions:       []model.Condition{{Name: "Flu", Note: "*viral*"}},
		RecommendedSteps: []string{"Rest", "Fluids"},
		Facilities:       []model.Facility{},
	})

	require.Len(t, got.Steps, 2)
	assert.Equal(t, 1, got.Steps[0].Number)
	assert.Equal(t, 2, got.Steps[1].Number)
	assert.Contains(t, got.Conditions[0].NoteHTML, "<em>viral</em>")
	assert.Equal(t, "", got.DisclaimerHTML)
}

func TestToHistoryViewModels(t *testing.T) {
	entries := []model.HistoryEntry{
		{ID: "1", Title: "A", RawTimestamp: "sometime", RawResult: map[string]any{"k": "v"}},
		{ID: "2", Title: "B", Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	}

	got := toHistoryViewModels(entries)

	require.Len(t, got, 2)
	assert.Equal(t, "sometime", got[0].Timestamp)
	assert.Contains(t, got[0].RawJSON, `"k": "v"`)
	assert.NotEmpty(t, got[1].Timestamp)
	assert.Equal(t, "{}", got[1].RawJSON)
}

func TestToLocationViewModel(t *testing.T) {
	idle := toLocationViewModel(application.LocationState{Status: model.GeoStatusIdle}, "/text", true)
	assert.False(t, idle.HasCoords)
	assert.Equal(t, "", idle.StatusText)
	assert.True(t, idle.CanRequest)

	granted := toLocationViewModel(application.LocationState{
		Status: model.GeoStatusGranted,
		Coords: &model.Coordinates{Latitude: 12.9, Longitude: 77.6},
	}, "/image", false)
	assert.True(t, granted.HasCoords)
	assert.Equal(t, "Location set", granted.StatusText)
	assert.Equal(t, "Lat 12.9000, Lon 77.6000", granted.CoordsText)
	assert.Equal(t, "12.9", granted.Latitude)
	assert.Equal(t, "77.6", granted.Longitude)
	assert.Equal(t, "/image", granted.ReturnPath)

	denied := toLocationViewModel(application.LocationState{Status: model.GeoStatusDenied}, "/text", true)
	assert.Equal(t, "Permission denied for location", denied.StatusText)
}

func TestSafeURL(t *testing.T) {
	assert.Equal(t, "https://img.example/a.png", safeURL("https://img.example/a.png"))
	assert.Equal(t, "/uploads/a.png", safeURL("/uploads/a.png"))
	assert.Equal(t, "", safeURL("javascript:alert(1)"))
	assert.Equal(t, "", safeURL("data:image/png;base64,AAAA"))
	assert.Equal(t, "", safeURL("//evil.example/x"))
}
