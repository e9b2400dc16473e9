package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Geocoder resolves coordinates to a human-readable place name. It is a
// pure lookup: an empty string means "no name", never an error that
// should affect ingestion.
type Geocoder interface {
	Lookup(ctx context.Context, lat, lon float64) string
}

// NoopGeocoder never resolves a name; used when no geocoding data is
// available.
type NoopGeocoder struct{}

// Lookup always returns "".
func (NoopGeocoder) Lookup(context.Context, float64, float64) string { return "" }

// place is one entry in the coarse offline gazetteer.
type place struct {
	name string
	lat  float64
	lon  float64
}

// TableGeocoder resolves against a small in-memory gazetteer by nearest
// neighbor within a cutoff. Coarse city-level resolution is enough for
// "where was this shot" search hints; anything finer would need a real
// geodata set.
type TableGeocoder struct {
	places    []place
	maxDegree float64
}

// NewTableGeocoder builds a geocoder over the given (name, lat, lon)
// entries. maxDegree caps how far (in degrees, roughly 111km each) a
// coordinate may be from the nearest entry before the lookup returns "".
func NewTableGeocoder(entries map[string][2]float64, maxDegree float64) *TableGeocoder {
	g := &TableGeocoder{maxDegree: maxDegree}
	for name, coord := range entries {
		g.places = append(g.places, place{name: name, lat: coord[0], lon: coord[1]})
	}
	return g
}

// LoadTableGeocoder reads a gazetteer from a JSON file mapping place
// names to [lat, lon] pairs (a user-supplied places file on the drive).
func LoadTableGeocoder(path string, maxDegree float64) (*TableGeocoder, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read places file %s: %w", path, err)
	}
	var entries map[string][2]float64
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse places file %s: %w", path, err)
	}
	return NewTableGeocoder(entries, maxDegree), nil
}

// Lookup returns the nearest gazetteer entry within the cutoff, or "".
func (g *TableGeocoder) Lookup(_ context.Context, lat, lon float64) string {
	best := ""
	bestDist := g.maxDegree
	for _, p := range g.places {
		d := math.Hypot(p.lat-lat, p.lon-lon)
		if d <= bestDist {
			best = p.name
			bestDist = d
		}
	}
	return best
}
