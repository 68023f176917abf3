package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/mine-ops-etl/internal/domain"
)

// TransformResult is the validated fact set and the ledger that audited it.
type TransformResult struct {
	Facts             []domain.MergedDailyFact
	Ledger            domain.Ledger
	WeatherComplete   bool
	DistinctEquipment int
}

// Transformer runs aggregation, merge, metric derivation, and validation.
type Transformer struct {
	logger *slog.Logger
}

// NewTransformer creates a Transformer that logs findings to logger.
func NewTransformer(logger *slog.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform produces the daily production facts for raw. Errors wrap
// domain.ErrTransformation; validation findings are recorded, not returned.
func (t *Transformer) Transform(raw domain.RawDataset, climate domain.ClimateSeries) (TransformResult, error) {
	production, err := domain.AggregateProduction(raw.Production)
	if err != nil {
		return TransformResult{}, err
	}
	equipment, err := domain.AggregateEquipment(raw.Sensors)
	if err != nil {
		return TransformResult{}, err
	}

	merged := domain.Merge(production, equipment.Daily, climate.Daily)
	rows := domain.DeriveMetrics(merged, equipment.DistinctEquipmentCount)
	t.logger.Info("transformation completed",
		"daily_rows", len(rows),
		"equipment_days", len(equipment.Daily),
		"distinct_equipment", equipment.DistinctEquipmentCount,
	)

	var ledger domain.Ledger
	var findings []domain.Finding

	rows, findings = domain.ValidateProduction(rows)
	ledger = t.record(ledger, findings)
	if len(findings) > 0 {
		t.logger.Info("replaced negative production values with 0", "rows", len(findings))
	}

	rows, findings = domain.ValidateUtilization(rows)
	ledger = t.record(ledger, findings)
	if len(findings) > 0 {
		t.logger.Info("clipped equipment utilization to 0-100% range", "rows", len(findings))
	}

	complete, findings := domain.ValidateWeatherCompleteness(rows, climate.Daily)
	ledger = t.record(ledger, findings)

	t.logSummary(ledger.Summary())

	return TransformResult{
		Facts:             rows,
		Ledger:            ledger,
		WeatherComplete:   complete,
		DistinctEquipment: equipment.DistinctEquipmentCount,
	}, nil
}

func (t *Transformer) record(ledger domain.Ledger, findings []domain.Finding) domain.Ledger {
	for _, f := range findings {
		attrs := []any{
			"kind", f.Kind,
			"date", f.Date.Format(domain.DateLayout),
		}
		if f.MineID != "" {
			attrs = append(attrs, "mine_id", f.MineID)
		}
		if f.Value != nil {
			attrs = append(attrs, "value", *f.Value)
		}
		t.logger.Warn(f.Message, attrs...)
	}
	return ledger.Record(findings...)
}

func (t *Transformer) logSummary(s domain.LedgerSummary) {
	attrs := []any{
		"status", s.Status,
		"total_errors", s.TotalErrors,
	}
	for _, kind := range domain.FindingKinds {
		attrs = append(attrs, string(kind), s.ErrorCounts[kind])
	}
	t.logger.Info("validation summary", attrs...)
}
