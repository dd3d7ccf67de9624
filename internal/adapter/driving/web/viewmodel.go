package web

import (
	"encoding/json"
	"net/url"
	"strconv"

	vm "github.com/ericfisherdev/medilens/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/medilens/internal/application"
	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// historyTimeLayout formats history timestamps for display.
const historyTimeLayout = "Jan 2, 2006 15:04"

// toAnalysisViewModel converts a normalized result. Notes, steps and the
// disclaimer pass through the markdown renderer.
func toAnalysisViewModel(r model.AnalysisResult) vm.AnalysisViewModel {
	conditions := make([]vm.ConditionViewModel, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		conditions = append(conditions, vm.ConditionViewModel{
			Name:       c.Name,
			Confidence: c.ConfidenceLabel,
			NoteHTML:   RenderMarkdown(c.Note),
		})
	}

	steps := make([]vm.StepViewModel, 0, len(r.RecommendedSteps))
	for i, s := range r.RecommendedSteps {
		steps = append(steps, vm.StepViewModel{Number: i + 1, HTML: RenderMarkdown(s)})
	}

	facilities := make([]vm.FacilityViewModel, 0, len(r.Facilities))
	for _, f := range r.Facilities {
		facilities = append(facilities, toFacilityViewModel(f))
	}

	return vm.AnalysisViewModel{
		Conditions:     conditions,
		Steps:          steps,
		Facilities:     facilities,
		DisclaimerHTML: RenderMarkdown(r.Disclaimer),
	}
}

func toFacilityViewModel(f model.Facility) vm.FacilityViewModel {
	badge := application.ClassifyDistance(f.DistanceMeters)
	return vm.FacilityViewModel{
		Name:            f.Name,
		Address:         f.Address,
		Tier:            string(badge.Tier),
		TierClass:       "distance-" + string(badge.Tier),
		DistanceLabel:   badge.Label,
		KilometersLabel: application.KilometersLabel(f.DistanceMeters),
	}
}

// toHistoryViewModels converts history entries. The raw payload is kept as
// indented JSON for export.
func toHistoryViewModels(entries []model.HistoryEntry) []vm.HistoryEntryViewModel {
	vms := make([]vm.HistoryEntryViewModel, 0, len(entries))
	for _, e := range entries {
		ts := e.RawTimestamp
		if !e.Timestamp.IsZero() {
			ts = e.Timestamp.Local().Format(historyTimeLayout)
		}

		raw := "{}"
		if e.RawResult != nil {
			if b, err := json.MarshalIndent(e.RawResult, "", "  "); err == nil {
				raw = string(b)
			}
		}

		vms = append(vms, vm.HistoryEntryViewModel{
			ID:        e.ID,
			Title:     e.Title,
			Symptoms:  e.Symptoms,
			Timestamp: ts,
			ImageURL:  safeURL(e.ImageURL),
			Result:    toAnalysisViewModel(e.Result),
			RawJSON:   raw,
		})
	}
	return vms
}

// geoStatusText is the user-facing text for each geolocation status.
var geoStatusText = map[model.GeoStatus]string{
	model.GeoStatusIdle:        "",
	model.GeoStatusAsking:      "Requesting location...",
	model.GeoStatusGranted:     "Location set",
	model.GeoStatusDenied:      "Permission denied for location",
	model.GeoStatusUnsupported: "Geolocation not supported on this device",
	model.GeoStatusError:       "Error obtaining location",
}

// toLocationViewModel converts the locator state. returnPath is where the
// location forms redirect after submission.
func toLocationViewModel(s application.LocationState, returnPath string, canRequest bool) vm.LocationViewModel {
	v := vm.LocationViewModel{
		Status:     string(s.Status),
		StatusText: geoStatusText[s.Status],
		ReturnPath: returnPath,
		CanRequest: canRequest,
	}
	if s.Coords != nil {
		v.HasCoords = true
		v.CoordsText = s.Coords.String()
		v.Latitude = strconv.FormatFloat(s.Coords.Latitude, 'f', -1, 64)
		v.Longitude = strconv.FormatFloat(s.Coords.Longitude, 'f', -1, 64)
		if s.Status == model.GeoStatusIdle {
			v.StatusText = "Location set"
		}
	}
	return v
}

func errorMessage(text string) vm.MessageViewModel {
	return vm.MessageViewModel{Text: text, Kind: "error"}
}

func successMessage(text string) vm.MessageViewModel {
	return vm.MessageViewModel{Text: text, Kind: "success"}
}

// safeURL returns raw when it is an absolute http(s) URL or a path, and ""
// otherwise, so service-provided links cannot carry script URLs.
func safeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https":
		return raw
	case "":
		if u.Host == "" && u.Opaque == "" {
			return raw
		}
	}
	return ""
}
