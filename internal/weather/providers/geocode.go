package providers

import (
	"context"
	"fmt"
	"log"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/todays-weather/internal/weather"
)

// Geocoder resolves a named place to coordinates.
type Geocoder interface {
	Locate(loc weather.Location) (lat, lon float64, err error)
}

// GoogleGeocoder resolves places through the Google geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoding client with apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

func (g *GoogleGeocoder) Locate(loc weather.Location) (float64, float64, error) {
	location, err := geocoder.Geocoding(geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %s: %w", loc.Key(), err)
	}
	return location.Latitude, location.Longitude, nil
}

// ResolveObservationSite points the provider at the observation site closest
// to loc.
func ResolveObservationSite(ctx context.Context, p *DataPointProvider, g Geocoder, loc weather.Location) (Site, error) {
	lat, lon, err := g.Locate(loc)
	if err != nil {
		return Site{}, err
	}

	sites, err := p.ObservationSites(ctx)
	if err != nil {
		return Site{}, err
	}

	site, err := ClosestSite(sites, lat, lon)
	if err != nil {
		return Site{}, err
	}

	p.SetObservationSite(site.ID)
	log.Printf("INFO: observation site for %s set to %s (%s)", loc.Key(), site.Name, site.ID)
	return site, nil
}
