package model

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Coordinate rounding precision for place identity: 5 decimal places is
// roughly 1 meter at the equator.
const coordPrecision = 1e5

// Place is the persisted entity of a map. Its ID is derived from rounded
// coordinates, not from the extracted name, so re-extracting the same
// location under a different name string resolves to the same Place.
type Place struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	Tag            string    `json:"tag"`
	Sentiment      Sentiment `json:"sentiment"`
	Note           string    `json:"note"`
	SourceContexts []string  `json:"source_contexts"`
}

// PlaceID derives the stable identifier for a coordinate pair. Coordinates
// within rounding precision of each other always yield the same ID.
func PlaceID(lat, lng float64) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.5f,%.5f", roundCoord(lat), roundCoord(lng))
	return fmt.Sprintf("%016x", h.Sum64())
}

func roundCoord(v float64) float64 {
	r := math.Round(v*coordPrecision) / coordPrecision
	if r == 0 {
		return 0 // collapse -0 so both signs hash identically
	}
	return r
}

// Clone returns a deep copy; SourceContexts is the only reference field.
func (p Place) Clone() Place {
	c := p
	c.SourceContexts = append([]string(nil), p.SourceContexts...)
	return c
}
