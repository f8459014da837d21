package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/i474232898/todays-weather/internal/weather"
)

// DataPointSites identifies which site or region each kind is fetched for.
type DataPointSites struct {
	ForecastSite    string
	ObservationSite string
	Region          string
}

// DataPointProvider implements weather.Source for the Met Office DataPoint API.
type DataPointProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker

	mu    sync.RWMutex
	sites DataPointSites
}

func NewDataPointProvider(client *http.Client, baseURL, apiKey string, retries int, sites DataPointSites) *DataPointProvider {
	backoff := defaultBackoff()
	backoff.MaxRetries = retries

	return &DataPointProvider{
		name:    "datapoint",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newBreaker("datapoint"),
		sites:   sites,
	}
}

func (p *DataPointProvider) Name() string {
	return p.name
}

// Sites returns the currently configured sites.
func (p *DataPointProvider) Sites() DataPointSites {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sites
}

// SetObservationSite switches the site observations are fetched for.
func (p *DataPointProvider) SetObservationSite(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sites.ObservationSite = id
}

// endpoint returns the path and extra query values for a kind.
func (p *DataPointProvider) endpoint(kind weather.Kind) (string, url.Values, error) {
	sites := p.Sites()
	values := url.Values{}

	switch kind {
	case weather.KindForecast:
		values.Set("res", "3hourly")
		return "val/wxfcs/all/json/" + url.PathEscape(sites.ForecastSite), values, nil
	case weather.KindObservation:
		values.Set("res", "hourly")
		return "val/wxobs/all/json/" + url.PathEscape(sites.ObservationSite), values, nil
	case weather.KindNarrative:
		return "txt/wxfcs/regionalforecast/json/" + url.PathEscape(sites.Region), values, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", weather.ErrUnknownKind, kind)
	}
}

func (p *DataPointProvider) Fetch(ctx context.Context, kind weather.Kind) ([]byte, error) {
	path, values, err := p.endpoint(kind)
	if err != nil {
		return nil, err
	}
	return p.get(ctx, path, values)
}

func (p *DataPointProvider) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("datapoint api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("key", p.apiKey)

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, path, q.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	body, err := fetchWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("datapoint %s: response is not JSON", path)
	}
	return body, nil
}

// Site is one entry of the observation site list.
type Site struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
}

// ObservationSites fetches the observation site list.
func (p *DataPointProvider) ObservationSites(ctx context.Context) ([]Site, error) {
	body, err := p.get(ctx, "val/wxobs/all/json/sitelist", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Locations struct {
			Location weather.List[struct {
				ID        string `json:"id"`
				Name      string `json:"name"`
				Latitude  string `json:"latitude"`
				Longitude string `json:"longitude"`
			}] `json:"Location"`
		} `json:"Locations"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode sitelist: %w", err)
	}

	sites := make([]Site, 0, len(payload.Locations.Location))
	for _, l := range payload.Locations.Location {
		lat, err := strconv.ParseFloat(l.Latitude, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(l.Longitude, 64)
		if err != nil {
			continue
		}
		sites = append(sites, Site{ID: l.ID, Name: l.Name, Latitude: lat, Longitude: lon})
	}
	return sites, nil
}

// ClosestSite returns the site with the smallest planar distance to lat/lon.
func ClosestSite(sites []Site, lat, lon float64) (Site, error) {
	if len(sites) == 0 {
		return Site{}, errors.New("no sites to choose from")
	}

	best := sites[0]
	minDist := math.Inf(1)
	for _, s := range sites {
		d := math.Hypot(s.Latitude-lat, s.Longitude-lon)
		if d < minDist {
			best = s
			minDist = d
		}
	}
	log.Printf("DEBUG: closest site to %.4f,%.4f is %s (%s)", lat, lon, best.Name, best.ID)
	return best, nil
}
