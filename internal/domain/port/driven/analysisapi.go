package driven

import (
	"context"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// AnalysisAPI defines the driven port for the remote analysis service.
// Every method returns the decoded response body on success and a
// *model.RequestError on any failure.
type AnalysisAPI interface {
	Signup(ctx context.Context, name, email, password string) (any, error)

	// Login authenticates and, when the response carries an access token,
	// persists the credential so later calls are authorized.
	Login(ctx context.Context, username, password string) (any, error)

	// Logout discards the persisted credential and any cached responses.
	Logout(ctx context.Context) error

	AnalyzeText(ctx context.Context, symptoms string, coords *model.Coordinates) (any, error)
	AnalyzeImage(ctx context.Context, image model.ImageFile, symptoms string, coords *model.Coordinates) (any, error)
	GetHistory(ctx context.Context) (any, error)
}
