package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

// ErrPermissionDenied is returned by a PositionSource when the user refused
// access to their location.
var ErrPermissionDenied = errors.New("geolocation permission denied")

// ErrPositionUnavailable is returned when the device could not determine a
// position.
var ErrPositionUnavailable = errors.New("position unavailable")

// PositionSource defines the driven port for the platform geolocation
// capability. Implementations must honor ctx cancellation.
type PositionSource interface {
	CurrentPosition(ctx context.Context, opts model.PositionOptions) (model.Coordinates, error)
}
