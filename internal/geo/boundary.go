package geo

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

//go:embed turin.geojson
var turinBoundary []byte

// Boundary is the municipality's geographic area.
type Boundary struct {
	name    string
	polygon orb.MultiPolygon
}

// DefaultBoundary returns the embedded Turin boundary.
func DefaultBoundary() (*Boundary, error) {
	return ParseBoundary("Turin", turinBoundary)
}

// LoadBoundary reads a GeoJSON FeatureCollection from path.
func LoadBoundary(name, path string) (*Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boundary file: %w", err)
	}
	return ParseBoundary(name, data)
}

// ParseBoundary builds a boundary from the Polygon and MultiPolygon features
// of a GeoJSON FeatureCollection. Other geometries are skipped.
func ParseBoundary(name string, data []byte) (*Boundary, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing boundary geojson: %w", err)
	}

	var mp orb.MultiPolygon
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = append(mp, g)
		case orb.MultiPolygon:
			mp = append(mp, g...)
		}
	}
	if len(mp) == 0 {
		return nil, fmt.Errorf("boundary %q has no polygons", name)
	}

	return &Boundary{name: name, polygon: mp}, nil
}

func (b *Boundary) Name() string {
	return b.name
}

// Contains reports whether loc lies inside the boundary.
func (b *Boundary) Contains(loc model.Location) bool {
	return planar.MultiPolygonContains(b.polygon, orb.Point{loc.Longitude, loc.Latitude})
}
