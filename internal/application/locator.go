package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

// Default acquisition options.
const (
	defaultGeoTimeout    = 8 * time.Second
	defaultGeoMaximumAge = 60 * time.Second
)

// DefaultPositionOptions returns the acquisition options used when none are configured.
func DefaultPositionOptions() model.PositionOptions {
	return model.PositionOptions{Timeout: defaultGeoTimeout, MaximumAge: defaultGeoMaximumAge}
}

// LocationState is a snapshot of a Locator.
type LocationState struct {
	Status model.GeoStatus
	Coords *model.Coordinates
}

// Locator acquires device coordinates and tracks the acquisition state:
// idle -> asking -> granted | denied | unsupported | error.
// A new request supersedes one still in flight; the older result is discarded.
type Locator struct {
	source driven.PositionSource
	opts   model.PositionOptions
	now    func() time.Time
	logger *slog.Logger

	mu         sync.Mutex
	status     model.GeoStatus
	coords     *model.Coordinates
	fixAt      time.Time
	generation uint64
}

// NewLocator creates a Locator. source may be nil when the platform has no
// geolocation capability; every request then reports unsupported.
func NewLocator(source driven.PositionSource, opts model.PositionOptions) *Locator {
	return &Locator{
		source: source,
		opts:   opts,
		now:    time.Now,
		logger: slog.Default(),
		status: model.GeoStatusIdle,
	}
}

// Request acquires a position using the configured options.
func (l *Locator) Request(ctx context.Context) LocationState {
	return l.RequestWithOptions(ctx, l.opts)
}

// RequestWithOptions acquires a position, waiting at most opts.Timeout. A fix
// no older than opts.MaximumAge is reused without consulting the source.
func (l *Locator) RequestWithOptions(ctx context.Context, opts model.PositionOptions) LocationState {
	l.mu.Lock()
	if l.source == nil {
		l.status = model.GeoStatusUnsupported
		state := l.snapshotLocked()
		l.mu.Unlock()
		return state
	}

	if l.coords != nil && !l.fixAt.IsZero() && opts.MaximumAge > 0 && l.now().Sub(l.fixAt) <= opts.MaximumAge {
		l.status = model.GeoStatusGranted
		state := l.snapshotLocked()
		l.mu.Unlock()
		return state
	}

	l.status = model.GeoStatusAsking
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	coords, err := l.acquire(ctx, opts)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		// Superseded by a newer request or a Clear.
		return l.snapshotLocked()
	}

	switch {
	case errors.Is(err, driven.ErrPermissionDenied):
		l.status = model.GeoStatusDenied
		l.logger.Info("geolocation permission denied")
	case err != nil:
		l.status = model.GeoStatusError
		l.logger.Warn("geolocation failed", "error", err)
	default:
		l.status = model.GeoStatusGranted
		l.coords = &coords
		l.fixAt = l.now()
	}

	return l.snapshotLocked()
}

// acquire calls the source with a bounded wait. The wait ends at the timeout
// even if the source does not return.
func (l *Locator) acquire(ctx context.Context, opts model.PositionOptions) (model.Coordinates, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	type result struct {
		coords model.Coordinates
		err    error
	}
	done := make(chan result, 1)
	go func() {
		c, err := l.source.CurrentPosition(ctx, opts)
		done <- result{coords: c, err: err}
	}()

	select {
	case <-ctx.Done():
		return model.Coordinates{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return model.Coordinates{}, r.err
		}
		if err := r.coords.Validate(); err != nil {
			return model.Coordinates{}, err
		}
		return r.coords, nil
	}
}

// SetCoordinates stores manually entered coordinates. The status is unchanged.
func (l *Locator) SetCoordinates(c model.Coordinates) error {
	if err := c.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.coords = &c
	l.fixAt = time.Time{}
	return nil
}

// Clear resets to idle and discards coordinates, including any cached fix.
func (l *Locator) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = model.GeoStatusIdle
	l.coords = nil
	l.fixAt = time.Time{}
	l.generation++
}

// State returns the current status and coordinates.
func (l *Locator) State() LocationState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Coordinates returns a copy of the current coordinates, or nil.
func (l *Locator) Coordinates() *model.Coordinates {
	return l.State().Coords
}

func (l *Locator) snapshotLocked() LocationState {
	state := LocationState{Status: l.status}
	if l.coords != nil {
		c := *l.coords
		state.Coords = &c
	}
	return state
}
