package model

// View identifies one screen of the client.
type View string

const (
	ViewSplash  View = "splash"
	ViewSignup  View = "signup"
	ViewLogin   View = "login"
	ViewText    View = "text"
	ViewImage   View = "image"
	ViewHistory View = "history"
)

// RequiresAuth reports whether the view shows functional content only to an
// authenticated user.
func (v View) RequiresAuth() bool {
	switch v {
	case ViewText, ViewImage, ViewHistory:
		return true
	default:
		return false
	}
}

// Known reports whether v is one of the defined views.
func (v View) Known() bool {
	switch v {
	case ViewSplash, ViewSignup, ViewLogin, ViewText, ViewImage, ViewHistory:
		return true
	default:
		return false
	}
}

// GeoStatus is the state of a geolocation acquisition.
type GeoStatus string

const (
	GeoStatusIdle        GeoStatus = "idle"
	GeoStatusAsking      GeoStatus = "asking"
	GeoStatusGranted     GeoStatus = "granted"
	GeoStatusDenied      GeoStatus = "denied"
	GeoStatusUnsupported GeoStatus = "unsupported"
	GeoStatusError       GeoStatus = "error"
)

// DistanceTier buckets a facility distance for display ordering and coloring.
type DistanceTier string

const (
	DistanceUnknown  DistanceTier = "unknown"
	DistanceNear     DistanceTier = "near"
	DistanceModerate DistanceTier = "moderate"
	DistanceFar      DistanceTier = "far"
)

// ErrorKind is the user-facing category of a failed operation.
type ErrorKind string

const (
	ErrorKindTransport      ErrorKind = "transport"
	ErrorKindAuthentication ErrorKind = "authentication"
	ErrorKindValidation     ErrorKind = "validation"
	ErrorKindServer         ErrorKind = "server"
)
