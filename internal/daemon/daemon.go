package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"balloon_ofp/internal/api"
	"balloon_ofp/internal/calendar"
	"balloon_ofp/internal/catalog"
	"balloon_ofp/internal/config"
	"balloon_ofp/internal/database"
	"balloon_ofp/internal/flightplan"
	"balloon_ofp/internal/notify"
	"balloon_ofp/internal/performance"
	"balloon_ofp/internal/scheduler"
	"balloon_ofp/internal/tasks"
	"balloon_ofp/internal/weather"
)

const shutdownTimeout = 15 * time.Second

// Daemon wires the flight plan service together
type Daemon struct {
	store      database.Store
	server     *http.Server
	scheduler  *scheduler.Scheduler
	dispatcher *tasks.NotificationDispatcher
	closers    []io.Closer
}

// New builds every component from the configuration. It opens the store
// and connects the notification sinks but starts nothing.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	aircraft, pilots, err := loadCatalogs(cfg)
	if err != nil {
		return nil, err
	}

	calc := performance.NewCalculator(performance.Params{
		HotAirTempC:                     cfg.Performance.HotAirTempC,
		BaseLiftPer1000CuFtKg:           cfg.Performance.BaseLiftPer1000CuFtKg,
		ReferenceDifferentialC:          cfg.Performance.ReferenceDifferentialC,
		DefaultAltitudeM:                cfg.Performance.DefaultAltitudeM,
		PropaneDensityKgPerL:            cfg.Performance.PropaneDensityKgPerL,
		ConsumptionRateLPerHour:         cfg.Performance.ConsumptionRateLPerHour,
		ClothingAllowanceKgPerPassenger: cfg.Performance.ClothingAllowanceKgPerPassenger,
	})

	store, err := openStore(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		store:     store,
		scheduler: scheduler.New(),
	}

	deps := api.Deps{
		Aircraft:   aircraft,
		Pilots:     pilots,
		Assembler:  flightplan.NewAssembler(aircraft, pilots, calc),
		Repository: store.FlightPlanRepository(),
	}

	notifier, err := d.buildNotifier(cfg.Notify)
	if err != nil {
		d.Close()
		return nil, err
	}
	if notifier != nil {
		d.dispatcher = tasks.NewNotificationDispatcherWithConfig(
			deps.Repository, notifier, cfg.Notify.QueueSize, cfg.Notify.SendTimeout)
		deps.Notifications = d.dispatcher
	} else {
		slog.Warn("No notification sink configured, submitted plans will only be stored")
	}

	if cfg.Weather.Enabled {
		client := weather.NewClient(weather.Config{
			BaseURL:   cfg.Weather.BaseURL,
			Latitude:  cfg.Weather.Latitude,
			Longitude: cfg.Weather.Longitude,
			Timezone:  cfg.Weather.Timezone,
			Timeout:   cfg.Weather.Timeout,
		})
		latest := &weather.Latest{}
		d.scheduler.AddTask(tasks.NewWeatherRefresh(client, latest, cfg.Weather.RefreshInterval))

		deps.Weather = client
		deps.LatestWeather = latest
		deps.WeatherMaxAge = 2 * cfg.Weather.RefreshInterval
	}

	if cfg.Calendar.AccessToken != "" {
		importer, err := calendar.New(ctx, calendar.Config{
			CalendarID:  cfg.Calendar.ID,
			AccessToken: cfg.Calendar.AccessToken,
		})
		if err != nil {
			d.Close()
			return nil, err
		}
		deps.Calendar = importer
	}

	d.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(deps).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Daemon configured",
		"http_addr", cfg.HTTPAddr,
		"db_driver", cfg.DB.Driver,
		"aircraft", len(aircraft.Registrations()),
		"pilots", len(pilots.All()),
		"weather", cfg.Weather.Enabled,
		"calendar", deps.Calendar != nil,
		"notifications", d.dispatcher != nil,
	)

	return d, nil
}

// Handler returns the HTTP handler served by Run
func (d *Daemon) Handler() http.Handler {
	return d.server.Handler
}

// Run serves HTTP and runs the background workers until ctx is cancelled
// or one of them fails. Queued notifications are drained before it returns.
func (d *Daemon) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", d.server.Addr)
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return d.scheduler.Run(gctx)
	})

	if d.dispatcher != nil {
		g.Go(func() error {
			return d.dispatcher.Start(gctx)
		})
	}

	return g.Wait()
}

// Close releases the store and notification connections
func (d *Daemon) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	return errors.Join(errs...)
}

func loadCatalogs(cfg *config.Config) (*catalog.AircraftCatalog, *catalog.PilotRegistry, error) {
	fleet := catalog.DefaultFleet
	if cfg.Catalog.FleetFile != "" {
		loaded, err := catalog.LoadFleet(cfg.Catalog.FleetFile)
		if err != nil {
			return nil, nil, err
		}
		fleet = loaded
	}
	aircraft, err := catalog.NewAircraftCatalog(fleet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build aircraft catalog: %w", err)
	}

	roster := catalog.DefaultRoster
	if cfg.Catalog.RosterFile != "" {
		loaded, err := catalog.LoadRoster(cfg.Catalog.RosterFile)
		if err != nil {
			return nil, nil, err
		}
		roster = loaded
	}
	window := time.Duration(cfg.Pilot.ExpiryWarningDays) * 24 * time.Hour
	pilots, err := catalog.NewPilotRegistry(roster, window)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build pilot registry: %w", err)
	}

	return aircraft, pilots, nil
}

func openStore(ctx context.Context, cfg config.DBConfig) (database.Store, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := database.OpenPostgres(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: int32(cfg.Postgres.MaxConns),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, nil
	default:
		db, err := database.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, nil
	}
}

// buildNotifier returns nil when no sink is configured
func (d *Daemon) buildNotifier(cfg config.NotifyConfig) (notify.Notifier, error) {
	var sinks notify.Multi

	if cfg.NATS.URL != "" {
		n, err := notify.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, n)
		sinks = append(sinks, n)
	}

	if cfg.SMTP.Host != "" {
		e, err := notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, e)
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

var _ api.Enqueuer = (*tasks.NotificationDispatcher)(nil)
