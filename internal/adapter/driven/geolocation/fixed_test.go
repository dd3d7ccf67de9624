package geolocation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/medilens/internal/adapter/driven/geolocation"
	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

func TestFixedSource_Permitted(t *testing.T) {
	src := geolocation.NewFixedSource(model.Coordinates{Latitude: 12.9, Longitude: 77.6}, true)

	got, err := src.CurrentPosition(context.Background(), model.PositionOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.Coordinates{Latitude: 12.9, Longitude: 77.6}, got)
}

func TestFixedSource_Denied(t *testing.T) {
	src := geolocation.NewFixedSource(model.Coordinates{Latitude: 12.9, Longitude: 77.6}, false)

	_, err := src.CurrentPosition(context.Background(), model.PositionOptions{})
	assert.ErrorIs(t, err, driven.ErrPermissionDenied)
}

func TestFixedSource_CanceledContext(t *testing.T) {
	src := geolocation.NewFixedSource(model.Coordinates{}, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.CurrentPosition(ctx, model.PositionOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
