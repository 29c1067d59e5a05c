// Package geocoder resolves free-form addresses and zipcodes to coordinates.
package geocoder

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the provider has no match for an address
var ErrNotFound = errors.New("no location found")

// Location is the best match for a geocoded address
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

// Geocoder looks up the location of an address
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// Static answers from a fixed table, keyed by the normalized address
type Static map[string]Location

func (s Static) Geocode(_ context.Context, address string) (*Location, error) {
	loc, ok := s[normalize(address)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return &loc, nil
}

func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// formatAddress joins the non-empty parts the way postal addresses are written
func formatAddress(street, city, state, zipcode, country string) string {
	var parts []string
	for _, p := range []string{street, city, strings.TrimSpace(state + " " + zipcode), country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
