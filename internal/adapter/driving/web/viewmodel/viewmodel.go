// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// PageViewModel holds the data every page layout needs.
type PageViewModel struct {
	Title         string
	View          string
	Authenticated bool
	Subject       string
	CSRFToken     string
}

// MessageViewModel is a one-line status or error shown above a form.
// Kind is "success", "error" or "" for neutral.
type MessageViewModel struct {
	Text string
	Kind string
}

// LoginFormViewModel holds the login form state.
type LoginFormViewModel struct {
	Username string
	Message  MessageViewModel
}

// SignupFormViewModel holds the signup form state.
type SignupFormViewModel struct {
	Name    string
	Email   string
	Message MessageViewModel
}

// LocationViewModel holds the geolocation panel state. The form fields are
// prefilled from the current coordinates.
type LocationViewModel struct {
	Status     string
	StatusText string
	HasCoords  bool
	CoordsText string
	Latitude   string
	Longitude  string
	ReturnPath string
	CanRequest bool
}

// AnalysisFormViewModel holds the text or image analysis form state and the
// most recent result.
type AnalysisFormViewModel struct {
	Symptoms string
	Message  MessageViewModel
	Location LocationViewModel
	Result   *AnalysisViewModel
	// MaxUploadMB is shown next to the file input on the image form.
	MaxUploadMB int
}

// AnalysisViewModel holds a normalized analysis result ready for display.
type AnalysisViewModel struct {
	Conditions     []ConditionViewModel
	Steps          []StepViewModel
	Facilities     []FacilityViewModel
	DisclaimerHTML string
}

// ConditionViewModel is one suspected condition.
type ConditionViewModel struct {
	Name       string
	Confidence string
	NoteHTML   string
}

// StepViewModel is one recommended step, rendered from markdown.
type StepViewModel struct {
	Number int
	HTML   string
}

// FacilityViewModel is one nearby facility with its distance badge.
type FacilityViewModel struct {
	Name            string
	Address         string
	Tier            string
	TierClass       string
	DistanceLabel   string
	KilometersLabel string
}

// HistoryViewModel holds the history page state.
type HistoryViewModel struct {
	Entries []HistoryEntryViewModel
	Message MessageViewModel
}

// HistoryEntryViewModel is one past analysis.
type HistoryEntryViewModel struct {
	ID        string
	Title     string
	Symptoms  string
	Timestamp string
	ImageURL  string
	Result    AnalysisViewModel
	RawJSON   string
}
