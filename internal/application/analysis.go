package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

// minSymptomsLength is the shortest accepted trimmed symptoms text.
const minSymptomsLength = 3

// AnalysisService validates analysis requests, submits them and normalizes
// the results.
type AnalysisService struct {
	api    driven.AnalysisAPI
	logger *slog.Logger
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(api driven.AnalysisAPI) *AnalysisService {
	return &AnalysisService{api: api, logger: slog.Default()}
}

// ValidateRequest checks a request before any network call.
func ValidateRequest(req model.AnalysisRequest) error {
	switch req.Kind {
	case model.AnalysisKindText:
		if len([]rune(strings.TrimSpace(req.Symptoms))) < minSymptomsLength {
			return &model.ValidationError{Field: "symptoms", Message: MsgSymptomsTooShort}
		}
	case model.AnalysisKindImage:
		if req.Image == nil || len(req.Image.Data) == 0 {
			return &model.ValidationError{Field: "image", Message: MsgImageRequired}
		}
	default:
		return &model.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown analysis kind %q", req.Kind)}
	}

	if req.Coords != nil {
		if err := req.Coords.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Submit validates req, sends it and normalizes the response.
func (s *AnalysisService) Submit(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResult, error) {
	if err := ValidateRequest(req); err != nil {
		return model.AnalysisResult{}, err
	}

	var (
		raw any
		err error
	)
	switch req.Kind {
	case model.AnalysisKindImage:
		raw, err = s.api.AnalyzeImage(ctx, *req.Image, strings.TrimSpace(req.Symptoms), req.Coords)
	default:
		raw, err = s.api.AnalyzeText(ctx, strings.TrimSpace(req.Symptoms), req.Coords)
	}
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("analyzing %s: %w", req.Kind, err)
	}

	result := Normalize(raw)
	s.logger.Info("analysis complete",
		"kind", req.Kind,
		"conditions", len(result.Conditions),
		"facilities", len(result.Facilities),
	)
	return result, nil
}

// AnalyzeText submits a text analysis.
func (s *AnalysisService) AnalyzeText(ctx context.Context, symptoms string, coords *model.Coordinates) (model.AnalysisResult, error) {
	return s.Submit(ctx, model.NewTextRequest(symptoms, coords))
}

// AnalyzeImage submits an image analysis. symptoms is optional.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, image model.ImageFile, symptoms string, coords *model.Coordinates) (model.AnalysisResult, error) {
	return s.Submit(ctx, model.NewImageRequest(&image, symptoms, coords))
}

// History fetches past analyses, most recent first.
func (s *AnalysisService) History(ctx context.Context) ([]model.HistoryEntry, error) {
	raw, err := s.api.GetHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	return HistoryEntries(raw), nil
}
