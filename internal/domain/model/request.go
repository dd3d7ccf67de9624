package model

// AnalysisKind tags the variant of an AnalysisRequest.
type AnalysisKind string

const (
	AnalysisKindText  AnalysisKind = "text"
	AnalysisKindImage AnalysisKind = "image"
)

// ImageFile is an uploaded image.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AnalysisRequest is built immediately before submission and never persisted.
// Image is set only for AnalysisKindImage; Symptoms is required only for text.
type AnalysisRequest struct {
	Kind     AnalysisKind
	Symptoms string
	Image    *ImageFile
	Coords   *Coordinates
}

// NewTextRequest builds a text analysis request.
func NewTextRequest(symptoms string, coords *Coordinates) AnalysisRequest {
	return AnalysisRequest{Kind: AnalysisKindText, Symptoms: symptoms, Coords: coords}
}

// NewImageRequest builds an image analysis request.
func NewImageRequest(image *ImageFile, symptoms string, coords *Coordinates) AnalysisRequest {
	return AnalysisRequest{Kind: AnalysisKindImage, Image: image, Symptoms: symptoms, Coords: coords}
}
