package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type productionKey struct {
	date   time.Time
	mineID string
}

type productionAccumulator struct {
	tons   Decimal
	grade  Decimal
	graded int64
}

// AggregateProduction rolls shift entries up to one row per (date, mine):
// tons are summed and quality grades averaged over the entries that have one.
// A day with no graded entry averages to 0. Output is ordered by date, then
// mine. An entry without a date or mine, or with a NaN or infinite value, is
// malformed and fails the run.
func AggregateProduction(entries []ProductionEntry) ([]DailyProductionAggregate, error) {
	groups := make(map[productionKey]*productionAccumulator)
	for i, e := range entries {
		if e.Date.IsZero() {
			return nil, fmt.Errorf("%w: production entry %d: missing date", ErrTransformation, i)
		}
		mineID := strings.TrimSpace(e.MineID)
		if mineID == "" {
			return nil, fmt.Errorf("%w: production entry %d: missing mine_id", ErrTransformation, i)
		}

		key := productionKey{date: Day(e.Date), mineID: mineID}
		acc, ok := groups[key]
		if !ok {
			acc = &productionAccumulator{}
			groups[key] = acc
		}
		if !e.TonsExtracted.Finite() {
			return nil, fmt.Errorf("%w: production entry %d: tons_extracted is %s", ErrTransformation, i, e.TonsExtracted)
		}
		var err error
		if acc.tons, err = acc.tons.Add(e.TonsExtracted); err != nil {
			return nil, fmt.Errorf("%w: production entry %d: %w", ErrTransformation, i, err)
		}

		if e.QualityGrade == nil {
			continue
		}
		if !e.QualityGrade.Finite() {
			return nil, fmt.Errorf("%w: production entry %d: quality_grade is %s", ErrTransformation, i, e.QualityGrade)
		}
		if acc.grade, err = acc.grade.Add(*e.QualityGrade); err != nil {
			return nil, fmt.Errorf("%w: production entry %d: %w", ErrTransformation, i, err)
		}
		acc.graded++
	}

	out := make([]DailyProductionAggregate, 0, len(groups))
	for key, acc := range groups {
		total, err := acc.tons.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: tons for mine %s on %s: %w", ErrTransformation, key.mineID, key.date.Format(DateLayout), err)
		}
		grade, err := averageGrade(acc)
		if err != nil {
			return nil, fmt.Errorf("%w: quality grade for mine %s on %s: %w", ErrTransformation, key.mineID, key.date.Format(DateLayout), err)
		}
		out = append(out, DailyProductionAggregate{
			DateID:               key.date,
			MineID:               key.mineID,
			TotalProductionDaily: total,
			AverageQualityGrade:  grade,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateID.Equal(out[j].DateID) {
			return out[i].DateID.Before(out[j].DateID)
		}
		return out[i].MineID < out[j].MineID
	})
	return out, nil
}

func averageGrade(acc *productionAccumulator) (float64, error) {
	if acc.graded == 0 {
		return 0, nil
	}
	mean, err := acc.grade.Div(NewDecimalFromInt64(acc.graded))
	if err != nil {
		return 0, err
	}
	return mean.Float64()
}

// AggregateEquipment rolls sensor samples up to one row per day. Each "active"
// sample counts as one operational hour. DistinctEquipmentCount is counted over
// the whole input, not per day.
func AggregateEquipment(readings []SensorReading) (EquipmentAggregates, error) {
	days := make(map[time.Time]*DailyEquipmentAggregate)
	equipment := make(map[string]struct{})

	for i, r := range readings {
		if r.Timestamp.IsZero() {
			return EquipmentAggregates{}, fmt.Errorf("%w: sensor reading %d: missing timestamp", ErrTransformation, i)
		}
		id := strings.TrimSpace(r.EquipmentID)
		if id == "" {
			return EquipmentAggregates{}, fmt.Errorf("%w: sensor reading %d: missing equipment_id", ErrTransformation, i)
		}
		equipment[id] = struct{}{}

		day := Day(r.Timestamp)
		agg, ok := days[day]
		if !ok {
			agg = &DailyEquipmentAggregate{DateID: day}
			days[day] = agg
		}
		if r.Status == SensorActive {
			agg.OperationalHours++
		}
		agg.FuelConsumption += r.FuelConsumption
	}

	daily := make([]DailyEquipmentAggregate, 0, len(days))
	for _, agg := range days {
		daily = append(daily, *agg)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].DateID.Before(daily[j].DateID) })

	return EquipmentAggregates{
		Daily:                  daily,
		DistinctEquipmentCount: len(equipment),
	}, nil
}
