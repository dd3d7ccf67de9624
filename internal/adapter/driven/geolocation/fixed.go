// Package geolocation provides PositionSource adapters.
package geolocation

import (
	"context"

	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PositionSource = (*FixedSource)(nil)

// FixedSource reports a configured device position. When permitted is false
// every request is refused as if the user had denied the permission prompt.
type FixedSource struct {
	coords    model.Coordinates
	permitted bool
}

// NewFixedSource creates a FixedSource for coords.
func NewFixedSource(coords model.Coordinates, permitted bool) *FixedSource {
	return &FixedSource{coords: coords, permitted: permitted}
}

// CurrentPosition returns the configured position, honoring ctx cancellation.
func (s *FixedSource) CurrentPosition(ctx context.Context, _ model.PositionOptions) (model.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return model.Coordinates{}, err
	}
	if !s.permitted {
		return model.Coordinates{}, driven.ErrPermissionDenied
	}
	return s.coords, nil
}
