package location

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that no positioning capability exists. Callers
// treat it like a permission denial: the visitor gets prompted instead.
var ErrUnavailable = errors.New("geolocation unavailable")

// Fix is a raw device position.
type Fix struct {
	Lat float64
	Lon float64
}

// LocateOptions mirror the device geolocation request knobs: a hard
// timeout, an accuracy hint, and tolerance for a cached fix.
type LocateOptions struct {
	Timeout      time.Duration
	HighAccuracy bool
	MaximumAge   time.Duration
}

// Locator abstracts device positioning. Implementations translate
// permission denials, timeouts, and missing capability into an error; the
// resolver collapses all of them into an absent location.
type Locator interface {
	Locate(ctx context.Context, opts LocateOptions) (Fix, error)
}

// UnavailableLocator always fails; the default when the host has no
// positioning source.
type UnavailableLocator struct{}

func (UnavailableLocator) Locate(context.Context, LocateOptions) (Fix, error) {
	return Fix{}, ErrUnavailable
}

// StaticLocator serves a fixed position, typically from configuration.
type StaticLocator struct {
	Lat float64
	Lon float64
}

func (l StaticLocator) Locate(context.Context, LocateOptions) (Fix, error) {
	return Fix{Lat: l.Lat, Lon: l.Lon}, nil
}
