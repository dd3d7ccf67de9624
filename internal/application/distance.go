package application

import (
	"fmt"
	"math"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// Distance tier upper bounds, inclusive, in meters.
const (
	nearMaxMeters     = 1200
	moderateMaxMeters = 2500
)

// unknownDistanceLabel is shown when no usable distance was reported.
const unknownDistanceLabel = "—"

// ClassifyDistance buckets a facility distance. Nil, NaN and infinite values
// are unknown.
func ClassifyDistance(distanceMeters *float64) model.DistanceBadge {
	if distanceMeters == nil || math.IsNaN(*distanceMeters) || math.IsInf(*distanceMeters, 0) {
		return model.DistanceBadge{Tier: model.DistanceUnknown, Label: unknownDistanceLabel}
	}

	d := *distanceMeters
	label := fmt.Sprintf("%d m", int64(math.Round(d)))

	switch {
	case d <= nearMaxMeters:
		return model.DistanceBadge{Tier: model.DistanceNear, Label: label}
	case d <= moderateMaxMeters:
		return model.DistanceBadge{Tier: model.DistanceModerate, Label: label}
	default:
		return model.DistanceBadge{Tier: model.DistanceFar, Label: label}
	}
}

// KilometersLabel formats a positive distance in kilometers to one decimal.
// Returns "" for nil, zero, negative or non-finite distances.
func KilometersLabel(distanceMeters *float64) string {
	if distanceMeters == nil {
		return ""
	}
	d := *distanceMeters
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f km", d/1000)
}
