package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/mine-ops-etl/internal/domain"
	"github.com/couchcryptid/mine-ops-etl/internal/observability"
)

// TableLoad records how many rows one load step wrote.
type TableLoad struct {
	Table string
	Rows  int
}

// LoadOrchestrator submits dimension sets before fact sets. The sink enforces
// no foreign keys, so this order is the only referential guarantee.
type LoadOrchestrator struct {
	defaults domain.Defaults
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewLoadOrchestrator creates a LoadOrchestrator using defaults for the
// location reference and missing-column fill.
func NewLoadOrchestrator(defaults domain.Defaults, logger *slog.Logger, metrics *observability.Metrics) *LoadOrchestrator {
	return &LoadOrchestrator{defaults: defaults, logger: logger, metrics: metrics}
}

// Load writes dim_date, dim_mine, dim_equipment, dim_location,
// fact_equipment_metrics, then fact_daily_production. Every batch is projected
// onto its schema before anything is written. The first failing write stops
// the remaining steps; earlier writes stay in place.
func (o *LoadOrchestrator) Load(
	ctx context.Context,
	sink Sink,
	dims domain.Dimensions,
	equipment []domain.EquipmentMetricsFact,
	production []domain.MergedDailyFact,
) ([]TableLoad, error) {
	productionRecords := make([]domain.Record, len(production))
	for i, row := range production {
		productionRecords[i] = row.ProductionRecord(o.defaults.Location.LocationID)
	}

	steps := []struct {
		schema  domain.TableSchema
		records []domain.Record
	}{
		{domain.DimDate, domain.Records(dims.Dates)},
		{domain.DimMine, domain.Records(dims.Mines)},
		{domain.DimEquipment, domain.Records(dims.Equipment)},
		{domain.DimLocation, domain.Records(dims.Locations)},
		{domain.FactEquipmentMetrics, domain.Records(equipment)},
		{domain.FactDailyProduction, productionRecords},
	}

	batches := make([]domain.TableBatch, 0, len(steps))
	for _, step := range steps {
		batch, err := step.schema.Project(step.records, o.defaults.MissingColumnFill)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
		}
		batches = append(batches, batch)
	}

	loaded := make([]TableLoad, 0, len(batches))
	for _, batch := range batches {
		if err := sink.Write(ctx, batch); err != nil {
			return loaded, fmt.Errorf("%w: %s: %w", domain.ErrLoad, batch.Table.Name, err)
		}
		loaded = append(loaded, TableLoad{Table: batch.Table.Name, Rows: len(batch.Rows)})
		o.metrics.RowsLoaded.WithLabelValues(batch.Table.Name).Add(float64(len(batch.Rows)))
		o.logger.Info("table loaded", "table", batch.Table.Name, "rows", len(batch.Rows))
	}
	return loaded, nil
}
