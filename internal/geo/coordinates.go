package geo

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

var (
	// ErrNotCoordinates means the text does not look like a coordinate pair
	// and should be treated as an address.
	ErrNotCoordinates = errors.New("text is not a coordinate pair")
	// ErrCoordinatesOutOfRange means the text is a coordinate pair but not a
	// valid point on Earth.
	ErrCoordinatesOutOfRange = errors.New("coordinates out of range")
)

var (
	coordinatePair = regexp.MustCompile(`^\s*([-+]?\d{1,3}(?:\.\d+)?)\s*[,;]\s*([-+]?\d{1,3}(?:\.\d+)?)\s*$`)
	// Space separated pairs need decimals so "10 20" stays an address.
	spacedPair = regexp.MustCompile(`^\s*([-+]?\d{1,3}\.\d+)\s+([-+]?\d{1,3}\.\d+)\s*$`)
)

// ParseCoordinates reads "lat, lng" (comma or semicolon separated, or
// whitespace separated decimals) without touching the network. Values are
// parsed as written, never rounded.
func ParseCoordinates(text string) (model.Location, error) {
	m := coordinatePair.FindStringSubmatch(text)
	if m == nil {
		m = spacedPair.FindStringSubmatch(text)
	}
	if m == nil {
		return model.Location{}, ErrNotCoordinates
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return model.Location{}, ErrNotCoordinates
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return model.Location{}, ErrNotCoordinates
	}

	loc := model.Location{Latitude: lat, Longitude: lng}
	if !InRange(loc) {
		return model.Location{}, ErrCoordinatesOutOfRange
	}
	return loc, nil
}

// InRange reports whether loc is a valid WGS84 coordinate.
func InRange(loc model.Location) bool {
	return loc.Latitude >= -90 && loc.Latitude <= 90 &&
		loc.Longitude >= -180 && loc.Longitude <= 180
}
