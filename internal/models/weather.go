package models

import "time"

// WindAloft is a single wind reading at altitude
type WindAloft struct {
	AltitudeM    float64 `json:"altitude_m"`
	SpeedKmh     float64 `json:"speed_kmh"`
	DirectionDeg float64 `json:"direction_deg"`
}

// WeatherSample is a point-in-time weather observation for the launch site.
// Values are copied into a flight plan where the pilot may override them.
type WeatherSample struct {
	SurfaceTemperatureC     float64     `json:"surface_temperature_c"`
	SurfacePressureHPa      float64     `json:"surface_pressure_hpa"`
	SurfaceWindSpeedKmh     float64     `json:"surface_wind_speed_kmh"`
	SurfaceWindDirectionDeg float64     `json:"surface_wind_direction_deg"`
	WindsAloft              []WindAloft `json:"winds_aloft"`
	ObservedAt              time.Time   `json:"observed_at"`
	Source                  string      `json:"source,omitempty"`
}
