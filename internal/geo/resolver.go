package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

// ErrOutsideBoundary means the location is valid but not in the municipality.
var ErrOutsideBoundary = errors.New("location outside the municipal boundary")

// Resolver turns a pin or a piece of free text into a Place inside the
// municipality. Both entry points go through the same boundary check.
type Resolver struct {
	geocoder Geocoder
	boundary *Boundary
}

func NewResolver(geocoder Geocoder, boundary *Boundary) *Resolver {
	return &Resolver{geocoder: geocoder, boundary: boundary}
}

// ResolvePin validates a shared location. Reverse geocoding only supplies a
// display address, so its failure does not reject the pin.
func (r *Resolver) ResolvePin(ctx context.Context, loc model.Location) (Place, error) {
	if !InRange(loc) {
		return Place{}, ErrCoordinatesOutOfRange
	}
	if err := r.checkBoundary(loc); err != nil {
		return Place{}, err
	}

	place, err := r.geocoder.Reverse(ctx, loc)
	if err != nil {
		slog.WarnContext(ctx, "reverse geocoding failed, continuing without address", "error", err)
		return Place{Location: loc}, nil
	}
	return Place{Location: loc, Address: place.Address}, nil
}

// ResolveText accepts "lat, lng" without a network call and otherwise treats
// text as an address to forward geocode.
func (r *Resolver) ResolveText(ctx context.Context, text string) (Place, error) {
	loc, err := ParseCoordinates(text)
	switch {
	case err == nil:
		return r.ResolvePin(ctx, loc)
	case errors.Is(err, ErrCoordinatesOutOfRange):
		return Place{}, err
	}

	place, err := r.geocoder.Forward(ctx, text)
	if err != nil {
		if errors.Is(err, ErrNoResults) {
			return Place{}, err
		}
		return Place{}, fmt.Errorf("resolving address: %w", err)
	}
	if err := r.checkBoundary(place.Location); err != nil {
		return Place{}, err
	}
	return place, nil
}

func (r *Resolver) checkBoundary(loc model.Location) error {
	if !r.boundary.Contains(loc) {
		return ErrOutsideBoundary
	}
	return nil
}
