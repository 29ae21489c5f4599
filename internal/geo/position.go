package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Locator is the platform hook that produces a raw device position. The
// embedding surface (browser bridge, IP locator, fixed test position)
// supplies an implementation; a nil Locator means the device has no
// geolocation capability at all.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// PositionOptions control a position request. HighAccuracy is a hint
// forwarded to the locator; Timeout bounds the whole request; MaxAge is
// how long a previously resolved position may be served from cache.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration
}

// DefaultPositionOptions match the original lookup contract: high
// accuracy, 10 second timeout, 5 minute position cache.
func DefaultPositionOptions() PositionOptions {
	return PositionOptions{
		HighAccuracy: true,
		Timeout:      10 * time.Second,
		MaxAge:       5 * time.Minute,
	}
}

// PositionSource resolves the current device position with caching and a
// hard timeout on top of the underlying Locator.
type PositionSource struct {
	locator Locator
	opts    PositionOptions
	now     func() time.Time

	mu       sync.Mutex
	cached   Coordinates
	cachedAt time.Time
}

// NewPositionSource wraps a Locator. locator may be nil, in which case
// every request fails with ErrGeolocationUnsupported.
func NewPositionSource(locator Locator, opts PositionOptions) *PositionSource {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPositionOptions().Timeout
	}
	return &PositionSource{
		locator: locator,
		opts:    opts,
		now:     time.Now,
	}
}

// Current returns the device position, serving a cached fix when it is
// younger than MaxAge. Failures map to the geolocation error taxonomy:
// ErrGeolocationUnsupported, ErrPermissionDenied, ErrPositionTimeout, or
// ErrPositionUnavailable.
func (s *PositionSource) Current(ctx context.Context) (Coordinates, error) {
	if s.locator == nil {
		return Coordinates{}, ErrGeolocationUnsupported
	}

	s.mu.Lock()
	if s.opts.MaxAge > 0 && !s.cachedAt.IsZero() && s.now().Sub(s.cachedAt) < s.opts.MaxAge {
		pos := s.cached
		s.mu.Unlock()
		return pos, nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	pos, err := s.locator.Locate(ctx)
	if err != nil {
		return Coordinates{}, mapPositionError(err)
	}

	s.mu.Lock()
	s.cached = pos
	s.cachedAt = s.now()
	s.mu.Unlock()

	return pos, nil
}

func mapPositionError(err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrGeolocationUnsupported),
		errors.Is(err, ErrPositionTimeout):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrPositionTimeout
	default:
		return fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
}

// FixedLocator always reports the same position. Used when the deployment
// pins the device location through configuration.
type FixedLocator struct {
	Position Coordinates
}

func (l FixedLocator) Locate(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	return l.Position, nil
}
