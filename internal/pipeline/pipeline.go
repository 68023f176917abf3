package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/mine-ops-etl/internal/domain"
	"github.com/couchcryptid/mine-ops-etl/internal/observability"
)

// Extractor reads the raw staging datasets for one run.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawDataset, error)
}

// Sink writes one table batch to the warehouse.
type Sink interface {
	Write(ctx context.Context, batch domain.TableBatch) error
}

// Warehouse is the scoped connection used by extraction and every load step.
type Warehouse interface {
	Extractor
	Sink
	Close(ctx context.Context) error
}

// Connector opens the warehouse connection for one run.
type Connector func(ctx context.Context) (Warehouse, error)

// LedgerPublisher hands the validation ledger to an external monitor.
type LedgerPublisher interface {
	Publish(ctx context.Context, runID string, summary domain.LedgerSummary) error
}

// Options carries every collaborator a run needs. Climate and Publisher may be
// nil to disable climate enrichment and ledger publication.
type Options struct {
	Connect   Connector
	Climate   domain.ClimateSource
	Publisher LedgerPublisher
	Defaults  domain.Defaults
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Clock     clockwork.Clock
}

// Pipeline runs the extract, transform, validate, dimension-build, and load
// stages once per Run call.
type Pipeline struct {
	connect   Connector
	climate   domain.ClimateSource
	publisher LedgerPublisher
	defaults  domain.Defaults
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// New validates opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Connect == nil {
		return nil, errors.New("pipeline: warehouse connector is required")
	}
	if opts.Logger == nil || opts.Metrics == nil {
		return nil, errors.New("pipeline: logger and metrics are required")
	}
	if err := opts.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid defaults: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		connect:   opts.Connect,
		climate:   opts.Climate,
		publisher: opts.Publisher,
		defaults:  opts.Defaults,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		clock:     opts.Clock,
	}, nil
}

// Report summarizes one run.
type Report struct {
	RunID            string
	Label            string
	StartedAt        time.Time
	Duration         time.Duration
	ClimateAvailable bool
	WeatherComplete  bool
	Validation       domain.LedgerSummary
	Loaded           []TableLoad
}

// Run executes one pipeline run. The warehouse connection is closed on every
// return path. Validation findings never fail a run; extraction,
// transformation, and load errors do.
func (p *Pipeline) Run(ctx context.Context) (report Report, err error) {
	report.RunID = uuid.NewString()
	report.StartedAt = p.clock.Now()
	report.Label = "run_" + report.StartedAt.Format("20060102_150405")
	logger := p.logger.With("run_id", report.RunID, "run_label", report.Label)

	logger.Info("run started")
	p.metrics.PipelineRunning.Set(1)
	defer func() {
		p.metrics.PipelineRunning.Set(0)
		report.Duration = p.clock.Since(report.StartedAt)
		p.metrics.RunDuration.Observe(report.Duration.Seconds())
		if err != nil {
			p.metrics.RunsTotal.WithLabelValues("failure").Inc()
			logger.Error("run failed", "error", err, "duration", report.Duration)
			return
		}
		p.metrics.RunsTotal.WithLabelValues("success").Inc()
		p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
		logger.Info("run completed", "duration", report.Duration, "validation_status", report.Validation.Status)
	}()

	wh, err := p.connect(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: connect warehouse: %w", domain.ErrExtraction, err)
	}
	defer func() {
		if cerr := wh.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Warn("warehouse close failed", "error", cerr)
		}
	}()

	raw, err := wh.Extract(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	p.metrics.ExtractedRows.WithLabelValues("production").Add(float64(len(raw.Production)))
	p.metrics.ExtractedRows.WithLabelValues("sensors").Add(float64(len(raw.Sensors)))
	p.metrics.ExtractedRows.WithLabelValues("mines").Add(float64(len(raw.Mines)))
	logger.Info("extraction completed",
		"production_entries", len(raw.Production),
		"sensor_readings", len(raw.Sensors),
		"mines", len(raw.Mines),
	)

	climate := p.fetchClimate(ctx, logger, raw.Production)
	report.ClimateAvailable = !climate.Empty()

	result, err := NewTransformer(logger).Transform(raw, climate)
	if err != nil {
		return report, err
	}
	report.WeatherComplete = result.WeatherComplete
	report.Validation = result.Ledger.Summary()
	for kind, n := range report.Validation.ErrorCounts {
		p.metrics.ValidationFindings.WithLabelValues(string(kind)).Add(float64(n))
	}
	p.publishLedger(ctx, logger, report.RunID, report.Validation)

	dims := domain.BuildDimensions(raw, climate.Location, p.defaults)
	equipment := domain.BuildEquipmentMetrics(raw.Sensors, p.defaults)

	loader := NewLoadOrchestrator(p.defaults, logger, p.metrics)
	report.Loaded, err = loader.Load(ctx, wh, dims, equipment, result.Facts)
	return report, err
}

// fetchClimate returns the climate series for the production date range, or
// an empty series when climate is disabled, there is no production, or the
// fetch fails.
func (p *Pipeline) fetchClimate(ctx context.Context, logger *slog.Logger, entries []domain.ProductionEntry) domain.ClimateSeries {
	if p.climate == nil {
		logger.Info("climate enrichment disabled")
		return domain.ClimateSeries{}
	}
	r, ok := domain.ProductionDateRange(entries)
	if !ok {
		return domain.ClimateSeries{}
	}

	series, err := p.climate.FetchDaily(ctx, r)
	if err != nil {
		p.metrics.ClimateFetchFailures.Inc()
		logger.Warn("continuing without climate data",
			"error", fmt.Errorf("%w: %w", domain.ErrClimateFetch, err),
			"start", r.Start.Format(domain.DateLayout),
			"end", r.End.Format(domain.DateLayout),
		)
		return domain.ClimateSeries{}
	}
	logger.Info("climate series fetched", "days", len(series.Daily), "site_metadata", series.Location != nil)
	return series
}

func (p *Pipeline) publishLedger(ctx context.Context, logger *slog.Logger, runID string, summary domain.LedgerSummary) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, runID, summary); err != nil {
		p.metrics.LedgerPublishErrors.Inc()
		logger.Warn("ledger publish failed", "error", err)
	}
}
