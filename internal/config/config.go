package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/todays-weather/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	DataPointAPIKey  string `validate:"required"`
	DataPointBaseURL string `validate:"required,url"`

	ForecastSiteID    string `validate:"required,numeric"`
	ObservationSiteID string `validate:"required,numeric"`
	RegionID          string `validate:"required,numeric"`

	// Optional place used to pick the nearest observation site at startup.
	Location       *weather.Location
	GeocoderAPIKey string

	// Fields is the tracked field table, from FieldsFile or built in.
	Fields     weather.FieldTable `validate:"required,min=1"`
	FieldsFile string

	HTTPTimeout time.Duration `validate:"gt=0"`

	// FetchRetries is how many times a failed upstream call is retried.
	FetchRetries int `validate:"gte=0,lte=10"`

	// RefreshInterval controls how often cached documents are refetched.
	RefreshInterval time.Duration `validate:"gt=0"`

	// Cache retention.
	CacheMaxAge time.Duration // documents older than this are refetched on read
	StoreMaxAge time.Duration // documents older than this are evicted (0 = unlimited)

	Port string `validate:"required,numeric"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.DataPointAPIKey = os.Getenv("DATAPOINT_API_KEY")
	cfg.DataPointBaseURL = getenvDefault("DATAPOINT_BASE_URL", "http://datapoint.metoffice.gov.uk/public/data")
	cfg.ForecastSiteID = getenvDefault("FORECAST_SITE_ID", "352790")
	cfg.ObservationSiteID = getenvDefault("OBSERVATION_SITE_ID", "3238")
	cfg.RegionID = getenvDefault("REGION_ID", "508")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.FetchRetries = getenvInt("FETCH_RETRIES", 3)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", "1h"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.Location = loadLocation()

	cfg.FieldsFile = os.Getenv("FIELDS_FILE")
	cfg.Fields, err = weather.LoadFieldTable(cfg.FieldsFile)
	if err != nil {
		return nil, fmt.Errorf("invalid FIELDS_FILE: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadLocation() *weather.Location {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	if city == "" {
		return nil
	}
	return &weather.Location{
		City:    city,
		Country: country,
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
