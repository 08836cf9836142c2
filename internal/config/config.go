package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigPathEnv names the environment variable that points at an explicit config file
const ConfigPathEnv = "BALLOON_OFP_CONFIG_PATH"

// Config holds all configuration for the service
type Config struct {
	HTTPAddr    string
	DB          DBConfig
	Log         LogConfig
	Performance PerformanceConfig
	Pilot       PilotConfig
	Catalog     CatalogConfig
	Weather     WeatherConfig
	Notify      NotifyConfig
	Calendar    CalendarConfig
}

// DBConfig selects the persistence backend
type DBConfig struct {
	Driver   string // sqlite or postgres
	Path     string
	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	Format     string
	File       string // empty logs to stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// PerformanceConfig holds the calibration of the performance model
type PerformanceConfig struct {
	HotAirTempC                     float64
	BaseLiftPer1000CuFtKg           float64
	ReferenceDifferentialC          float64
	DefaultAltitudeM                float64
	PropaneDensityKgPerL            float64
	ConsumptionRateLPerHour         float64
	ClothingAllowanceKgPerPassenger float64
}

// PilotConfig holds pilot document checks
type PilotConfig struct {
	ExpiryWarningDays int
}

// CatalogConfig points at optional fleet and roster files replacing the built-in lists
type CatalogConfig struct {
	FleetFile  string
	RosterFile string
}

// WeatherConfig holds the forecast source settings
type WeatherConfig struct {
	Enabled         bool
	BaseURL         string
	Latitude        float64
	Longitude       float64
	Timezone        string
	RefreshInterval time.Duration
	Timeout         time.Duration
}

// NotifyConfig holds the notification sinks
type NotifyConfig struct {
	QueueSize   int
	SendTimeout time.Duration
	NATS        NATSConfig
	SMTP        SMTPConfig
}

// NATSConfig enables publishing to NATS when URL is set
type NATSConfig struct {
	URL     string
	Subject string
}

// SMTPConfig enables email when Host is set
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	To       []string
	Username string
	Password string
}

// CalendarConfig enables the calendar import when AccessToken is set
type CalendarConfig struct {
	ID          string
	AccessToken string
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/balloon_ofp")
	v.AddConfigPath(".")

	if configPath := os.Getenv(ConfigPathEnv); configPath != "" {
		v.SetConfigFile(configPath)
	}

	// A missing config file is fine: defaults and env vars apply
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("BALLOON_OFP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		HTTPAddr: v.GetString("http_addr"),
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("db.driver")),
			Path:   v.GetString("db.path"),
			Postgres: PostgresConfig{
				Host:     v.GetString("db.postgres.host"),
				Port:     v.GetInt("db.postgres.port"),
				Database: v.GetString("db.postgres.database"),
				User:     v.GetString("db.postgres.user"),
				Password: v.GetString("db.postgres.password"),
				SSLMode:  v.GetString("db.postgres.sslmode"),
				MaxConns: v.GetInt("db.postgres.max_conns"),
			},
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		Performance: PerformanceConfig{
			HotAirTempC:                     v.GetFloat64("performance.hot_air_temp_c"),
			BaseLiftPer1000CuFtKg:           v.GetFloat64("performance.base_lift_per_1000_cuft_kg"),
			ReferenceDifferentialC:          v.GetFloat64("performance.reference_differential_c"),
			DefaultAltitudeM:                v.GetFloat64("performance.default_altitude_m"),
			PropaneDensityKgPerL:            v.GetFloat64("performance.propane_density_kg_per_l"),
			ConsumptionRateLPerHour:         v.GetFloat64("performance.consumption_rate_l_per_hour"),
			ClothingAllowanceKgPerPassenger: v.GetFloat64("performance.clothing_allowance_kg_per_passenger"),
		},
		Pilot: PilotConfig{
			ExpiryWarningDays: v.GetInt("pilot.expiry_warning_days"),
		},
		Catalog: CatalogConfig{
			FleetFile:  v.GetString("catalog.fleet_file"),
			RosterFile: v.GetString("catalog.roster_file"),
		},
		Weather: WeatherConfig{
			Enabled:         v.GetBool("weather.enabled"),
			BaseURL:         v.GetString("weather.base_url"),
			Latitude:        v.GetFloat64("weather.latitude"),
			Longitude:       v.GetFloat64("weather.longitude"),
			Timezone:        v.GetString("weather.timezone"),
			RefreshInterval: v.GetDuration("weather.refresh_interval"),
			Timeout:         v.GetDuration("weather.timeout"),
		},
		Notify: NotifyConfig{
			QueueSize:   v.GetInt("notify.queue_size"),
			SendTimeout: v.GetDuration("notify.send_timeout"),
			NATS: NATSConfig{
				URL:     v.GetString("notify.nats.url"),
				Subject: v.GetString("notify.nats.subject"),
			},
			SMTP: SMTPConfig{
				Host:     v.GetString("notify.smtp.host"),
				Port:     v.GetInt("notify.smtp.port"),
				From:     v.GetString("notify.smtp.from"),
				To:       v.GetStringSlice("notify.smtp.to"),
				Username: v.GetString("notify.smtp.username"),
				Password: v.GetString("notify.smtp.password"),
			},
		},
		Calendar: CalendarConfig{
			ID:          v.GetString("calendar.id"),
			AccessToken: v.GetString("calendar.access_token"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "flight_plans.db")
	v.SetDefault("db.postgres.host", "localhost")
	v.SetDefault("db.postgres.port", 5432)
	v.SetDefault("db.postgres.database", "balloon_ofp")
	v.SetDefault("db.postgres.user", "balloon_ofp")
	v.SetDefault("db.postgres.password", "")
	v.SetDefault("db.postgres.sslmode", "disable")
	v.SetDefault("db.postgres.max_conns", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("performance.hot_air_temp_c", 100.0)
	v.SetDefault("performance.base_lift_per_1000_cuft_kg", 7.5)
	v.SetDefault("performance.reference_differential_c", 80.0)
	v.SetDefault("performance.default_altitude_m", 1000.0)
	v.SetDefault("performance.propane_density_kg_per_l", 0.51)
	v.SetDefault("performance.consumption_rate_l_per_hour", 40.0)
	v.SetDefault("performance.clothing_allowance_kg_per_passenger", 3.0)

	v.SetDefault("pilot.expiry_warning_days", 30)

	v.SetDefault("catalog.fleet_file", "")
	v.SetDefault("catalog.roster_file", "")

	v.SetDefault("weather.enabled", true)
	v.SetDefault("weather.base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.latitude", 40.9429)
	v.SetDefault("weather.longitude", -4.1088)
	v.SetDefault("weather.timezone", "Europe/Madrid")
	v.SetDefault("weather.refresh_interval", "15m")
	v.SetDefault("weather.timeout", "10s")

	v.SetDefault("notify.queue_size", 100)
	v.SetDefault("notify.send_timeout", "30s")
	v.SetDefault("notify.nats.url", "")
	v.SetDefault("notify.nats.subject", "ofp.flight_plans.submitted")
	v.SetDefault("notify.smtp.host", "")
	v.SetDefault("notify.smtp.port", 587)
	v.SetDefault("notify.smtp.from", "")
	v.SetDefault("notify.smtp.to", []string{})
	v.SetDefault("notify.smtp.username", "")
	v.SetDefault("notify.smtp.password", "")

	v.SetDefault("calendar.id", "primary")
	v.SetDefault("calendar.access_token", "")
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("http_addr is required")
	}

	switch cfg.DB.Driver {
	case "sqlite":
		if cfg.DB.Path == "" {
			return fmt.Errorf("db.path is required for sqlite")
		}
	case "postgres":
		if cfg.DB.Postgres.Host == "" || cfg.DB.Postgres.Database == "" {
			return fmt.Errorf("db.postgres.host and db.postgres.database are required for postgres")
		}
	default:
		return fmt.Errorf("invalid db driver: %s (must be sqlite or postgres)", cfg.DB.Driver)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	p := cfg.Performance
	if p.HotAirTempC <= 0 || p.BaseLiftPer1000CuFtKg <= 0 || p.ReferenceDifferentialC <= 0 {
		return fmt.Errorf("performance lift constants must be greater than 0")
	}
	if p.PropaneDensityKgPerL <= 0 || p.ConsumptionRateLPerHour <= 0 {
		return fmt.Errorf("performance fuel constants must be greater than 0")
	}
	if p.DefaultAltitudeM < 0 || p.ClothingAllowanceKgPerPassenger < 0 {
		return fmt.Errorf("performance default altitude and clothing allowance must not be negative")
	}

	if cfg.Pilot.ExpiryWarningDays < 0 {
		return fmt.Errorf("pilot.expiry_warning_days must not be negative")
	}

	if cfg.Weather.Enabled && cfg.Weather.RefreshInterval <= 0 {
		return fmt.Errorf("weather.refresh_interval must be greater than 0")
	}

	if cfg.Notify.QueueSize <= 0 {
		return fmt.Errorf("notify.queue_size must be greater than 0")
	}

	if cfg.Notify.SMTP.Host != "" && (cfg.Notify.SMTP.From == "" || len(cfg.Notify.SMTP.To) == 0) {
		return fmt.Errorf("notify.smtp.from and notify.smtp.to are required when notify.smtp.host is set")
	}

	return nil
}
