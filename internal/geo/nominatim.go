package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

// Nominatim is a Geocoder backed by an OpenStreetMap Nominatim server.
type Nominatim struct {
	baseURL   string
	userAgent string
	cityBias  string
	client    *http.Client
}

type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	CityBias  string
}

func NewNominatim(cfg NominatimConfig, client *http.Client) *Nominatim {
	if client == nil {
		client = http.DefaultClient
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		cityBias:  cfg.CityBias,
		client:    client,
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (n *Nominatim) Forward(ctx context.Context, query string) (Place, error) {
	q := strings.TrimSpace(query)
	if n.cityBias != "" && !strings.Contains(strings.ToLower(q), strings.ToLower(firstWord(n.cityBias))) {
		q = q + ", " + n.cityBias
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	var places []nominatimPlace
	if err := n.get(ctx, "/search", params, &places); err != nil {
		return Place{}, fmt.Errorf("forward geocoding: %w", err)
	}
	if len(places) == 0 {
		return Place{}, ErrNoResults
	}
	return places[0].toPlace()
}

func (n *Nominatim) Reverse(ctx context.Context, loc model.Location) (Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	params.Set("format", "jsonv2")

	var place nominatimPlace
	if err := n.get(ctx, "/reverse", params, &place); err != nil {
		return Place{}, fmt.Errorf("reverse geocoding: %w", err)
	}
	if place.Error != "" || place.DisplayName == "" {
		return Place{}, ErrNoResults
	}
	// keep the caller's coordinates, the server snaps to the nearest object
	return Place{Location: loc, Address: place.DisplayName}, nil
}

func (n *Nominatim) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (p nominatimPlace) toPlace() (Place, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parsing latitude %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parsing longitude %q: %w", p.Lon, err)
	}
	return Place{
		Location: model.Location{Latitude: lat, Longitude: lng},
		Address:  p.DisplayName,
	}, nil
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, ", "); i > 0 {
		return s[:i]
	}
	return s
}
