package geo

import (
	"context"
	"errors"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

// ErrNoResults is returned by a Geocoder that found nothing for a query.
var ErrNoResults = errors.New("no geocoding results")

// Place is a resolved point with an optional human readable address.
type Place struct {
	Location model.Location
	Address  string
}

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	Forward(ctx context.Context, query string) (Place, error)
	Reverse(ctx context.Context, loc model.Location) (Place, error)
}
