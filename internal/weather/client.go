// Package weather fetches launch-site weather from the Open-Meteo forecast API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	_ "time/tzdata"

	"balloon_ofp/internal/models"
)

// ErrWeatherUnavailable is returned when no sample could be obtained
var ErrWeatherUnavailable = errors.New("weather unavailable")

const (
	DefaultBaseURL   = "https://api.open-meteo.com/v1/forecast"
	DefaultLatitude  = 40.9429
	DefaultLongitude = -4.1088
	DefaultTimezone  = "Europe/Madrid"
	DefaultTimeout   = 10 * time.Second

	sourceName = "Open-Meteo"
	timeLayout = "2006-01-02T15:04"
)

// Pressure levels reported as winds aloft, with their approximate altitude
var pressureLevels = []struct {
	hPa       int
	altitudeM float64
}{
	{850, 1500},
	{700, 3000},
}

// Config selects the forecast location
type Config struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Timezone  string
	Timeout   time.Duration
}

// Client is an Open-Meteo client. It does not retry.
type Client struct {
	cfg  Config
	http *http.Client
	loc  *time.Location
}

// NewClient creates a client. Zero-valued settings take the Segovia defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		cfg.Latitude = DefaultLatitude
		cfg.Longitude = DefaultLongitude
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		loc:  loc,
	}
}

type forecastResponse struct {
	Current struct {
		Time            string  `json:"time"`
		Temperature     float64 `json:"temperature_2m"`
		SurfacePressure float64 `json:"surface_pressure"`
		WindSpeed       float64 `json:"wind_speed_10m"`
		WindDirection   float64 `json:"wind_direction_10m"`
	} `json:"current"`
	Hourly map[string]json.RawMessage `json:"hourly"`
}

// Fetch returns the current surface conditions and winds aloft
func (c *Client) Fetch(ctx context.Context) (models.WeatherSample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return models.WeatherSample{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.WeatherSample{}, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.WeatherSample{}, fmt.Errorf("%w: unexpected status %s", ErrWeatherUnavailable, resp.Status)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.WeatherSample{}, fmt.Errorf("%w: failed to decode response: %v", ErrWeatherUnavailable, err)
	}

	return c.sample(body)
}

func (c *Client) requestURL() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.cfg.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.cfg.Longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m,surface_pressure,wind_speed_10m,wind_direction_10m")
	q.Set("hourly", "wind_speed_850hPa,wind_direction_850hPa,wind_speed_700hPa,wind_direction_700hPa")
	q.Set("forecast_days", "1")
	q.Set("timezone", c.cfg.Timezone)
	return c.cfg.BaseURL + "?" + q.Encode()
}

func (c *Client) sample(body forecastResponse) (models.WeatherSample, error) {
	observed, err := time.ParseInLocation(timeLayout, body.Current.Time, c.loc)
	if err != nil {
		return models.WeatherSample{}, fmt.Errorf("%w: bad observation time %q", ErrWeatherUnavailable, body.Current.Time)
	}

	var hours []string
	if raw, ok := body.Hourly["time"]; ok {
		if err := json.Unmarshal(raw, &hours); err != nil {
			return models.WeatherSample{}, fmt.Errorf("%w: bad hourly time series: %v", ErrWeatherUnavailable, err)
		}
	}
	idx := hourIndex(hours, observed)

	winds := make([]models.WindAloft, 0, len(pressureLevels))
	for _, lvl := range pressureLevels {
		speed, err := seriesValue(body.Hourly, fmt.Sprintf("wind_speed_%dhPa", lvl.hPa), idx)
		if err != nil {
			return models.WeatherSample{}, err
		}
		dir, err := seriesValue(body.Hourly, fmt.Sprintf("wind_direction_%dhPa", lvl.hPa), idx)
		if err != nil {
			return models.WeatherSample{}, err
		}
		winds = append(winds, models.WindAloft{AltitudeM: lvl.altitudeM, SpeedKmh: speed, DirectionDeg: dir})
	}

	return models.WeatherSample{
		SurfaceTemperatureC:     body.Current.Temperature,
		SurfacePressureHPa:      body.Current.SurfacePressure,
		SurfaceWindSpeedKmh:     body.Current.WindSpeed,
		SurfaceWindDirectionDeg: body.Current.WindDirection,
		WindsAloft:              winds,
		ObservedAt:              observed.UTC(),
		Source:                  sourceName,
	}, nil
}

// hourIndex finds the hourly slot containing the observation, or the first slot.
// The slot is the top of the local wall-clock hour; Truncate works on absolute
// time and misses it in zones with a non-whole-hour offset.
func hourIndex(hours []string, observed time.Time) int {
	slot := time.Date(observed.Year(), observed.Month(), observed.Day(), observed.Hour(), 0, 0, 0, observed.Location())
	want := slot.Format(timeLayout)
	for i, h := range hours {
		if h == want {
			return i
		}
	}
	return 0
}

// seriesValue reads one entry of an hourly series. Missing series or null entries read as zero.
func seriesValue(hourly map[string]json.RawMessage, key string, idx int) (float64, error) {
	raw, ok := hourly[key]
	if !ok {
		return 0, nil
	}
	var values []*float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return 0, fmt.Errorf("%w: bad series %s: %v", ErrWeatherUnavailable, key, err)
	}
	if idx >= len(values) || values[idx] == nil {
		return 0, nil
	}
	return *values[idx], nil
}
