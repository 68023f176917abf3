package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/mine-ops-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/mine-ops-etl/internal/adapter/kafka"
	"github.com/couchcryptid/mine-ops-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/mine-ops-etl/internal/adapter/postgres"
	"github.com/couchcryptid/mine-ops-etl/internal/config"
	"github.com/couchcryptid/mine-ops-etl/internal/domain"
	"github.com/couchcryptid/mine-ops-etl/internal/observability"
	"github.com/couchcryptid/mine-ops-etl/internal/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mine-etl",
		Short:         "Daily mining operations ETL",
		Long:          "Extracts staged production and telemetry, enriches them with climate data, validates, and loads the warehouse star schema.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on RUN_INTERVAL and serve health endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduled(cmd.Context())
		},
	})
	return root
}

// app holds the wired components shared by both commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	pipeline  *pipeline.Pipeline
	publisher *kafkaadapter.LedgerPublisher
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return nil, err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Climate enrichment is feature-flagged via CLIMATE_ENABLED.
	var climate domain.ClimateSource
	if cfg.ClimateEnabled {
		site := openmeteo.Site{Latitude: cfg.SiteLatitude, Longitude: cfg.SiteLongitude, Timezone: cfg.SiteTimezone}
		client := openmeteo.NewClient(cfg.ClimateBaseURL, site, cfg.ClimateTimeout, metrics, logger)
		climate = openmeteo.NewCachedSource(client, cfg.ClimateCacheSize, metrics)
		logger.Info("climate enrichment enabled", "cache_size", cfg.ClimateCacheSize, "timeout", cfg.ClimateTimeout)
	} else {
		logger.Info("climate enrichment disabled")
	}

	a := &app{cfg: cfg, logger: logger}

	var publisher pipeline.LedgerPublisher
	if cfg.LedgerEnabled() {
		a.publisher = kafkaadapter.NewLedgerPublisher(cfg, clock, logger)
		publisher = a.publisher
		logger.Info("ledger publication enabled", "topic", cfg.KafkaLedgerTopic, "brokers", cfg.KafkaBrokers)
	}

	a.pipeline, err = pipeline.New(pipeline.Options{
		Connect: func(ctx context.Context) (pipeline.Warehouse, error) {
			return postgres.Connect(ctx, cfg, logger)
		},
		Climate:   climate,
		Publisher: publisher,
		Defaults:  siteDefaults(cfg),
		Logger:    logger,
		Metrics:   metrics,
		Clock:     clock,
	})
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("kafka writer close error", "error", err)
		}
	}
}

// siteDefaults points the fallback location row at the configured site.
func siteDefaults(cfg *config.Config) domain.Defaults {
	d := domain.StandardDefaults()
	d.Location.Location = cfg.SiteName
	d.Location.Latitude = cfg.SiteLatitude
	d.Location.Longitude = cfg.SiteLongitude
	d.Location.Timezone = cfg.SiteTimezone
	if loc, err := time.LoadLocation(cfg.SiteTimezone); err == nil {
		_, d.Location.UTCOffsetSeconds = time.Now().In(loc).Zone()
	}
	return d
}

func runOnce(parent context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, runErr := a.pipeline.Run(ctx)

	if a.cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := observability.Push(pushCtx, a.cfg.PushgatewayURL, a.cfg.SiteName); err != nil {
			a.logger.Error("metrics push failed", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("run summary",
		"run_label", report.Label,
		"validation_status", report.Validation.Status,
		"total_errors", report.Validation.TotalErrors,
		"weather_complete", report.WeatherComplete,
	)
	return nil
}

func runScheduled(parent context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := pipeline.NewScheduler(a.pipeline, a.cfg.RunInterval, a.cfg.RetryBackoff, clockwork.NewRealClock(), a.logger)
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, scheduler, scheduler, a.logger)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Start(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()
	a.logger.Info("shutdown complete")
	return err
}
