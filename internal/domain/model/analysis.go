package model

// AnalysisResult is the canonical form of an analysis response. Collections
// are never nil once produced by the normalizer.
//
// JSON tags use the primary field names the service sends, so an encoded
// result normalizes back to an equal value.
type AnalysisResult struct {
	Conditions       []Condition `json:"possible_conditions"`
	RecommendedSteps []string    `json:"recommended_next_steps"`
	Facilities       []Facility  `json:"nearby_hospitals"`
	Disclaimer       string      `json:"disclaimer,omitempty"`
}

// Condition is one suspected condition.
type Condition struct {
	Name            string `json:"condition"`
	ConfidenceLabel string `json:"confidence_score,omitempty"`
	Note            string `json:"note,omitempty"`
}

// Facility is a nearby hospital or clinic. DistanceMeters is nil when the
// service did not report a usable distance.
type Facility struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// DistanceBadge is the display classification of a facility distance.
type DistanceBadge struct {
	Tier  DistanceTier
	Label string
}
