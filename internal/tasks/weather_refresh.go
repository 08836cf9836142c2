package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"balloon_ofp/internal/weather"
)

// WeatherRefresh periodically fetches the launch-site weather into a shared holder
type WeatherRefresh struct {
	source   weather.Source
	latest   *weather.Latest
	interval time.Duration
}

// NewWeatherRefresh creates the refresh task. A non-positive interval defaults to 15 minutes.
func NewWeatherRefresh(source weather.Source, latest *weather.Latest, interval time.Duration) *WeatherRefresh {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &WeatherRefresh{source: source, latest: latest, interval: interval}
}

func (w *WeatherRefresh) Run(ctx context.Context) error {
	sample, err := w.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh weather: %w", err)
	}
	w.latest.Set(sample, time.Now())

	slog.Info("Weather refreshed",
		"temperature_c", sample.SurfaceTemperatureC,
		"pressure_hpa", sample.SurfacePressureHPa,
		"wind_kmh", sample.SurfaceWindSpeedKmh,
		"observed_at", sample.ObservedAt.Format(time.RFC3339),
	)
	return nil
}

func (w *WeatherRefresh) Interval() time.Duration {
	return w.interval
}

func (w *WeatherRefresh) Name() string {
	return "weather_refresh"
}
