package domain

import "time"

// Sensor status values reported by equipment telemetry.
const (
	SensorActive      = "active"
	SensorMaintenance = "maintenance"
	SensorIdle        = "idle"
)

// ProductionEntry is one shift's extraction record.
type ProductionEntry struct {
	Date          time.Time
	MineID        string
	TonsExtracted Decimal
	QualityGrade  *Decimal // nil when the shift has no grade
}

// SensorReading is one equipment telemetry sample.
type SensorReading struct {
	Timestamp        time.Time
	EquipmentID      string
	Status           string
	FuelConsumption  float64
	MaintenanceAlert int // 0/1 flag or alert count, summed per day
}

// Mine is a mine registry entry.
type Mine struct {
	ID       string
	Name     string
	Location string
}

// RawDataset holds everything extracted from staging for one run.
type RawDataset struct {
	Production []ProductionEntry
	Sensors    []SensorReading
	Mines      []Mine
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ProductionDateRange returns the first and last production day. The second
// result is false when there are no entries.
func ProductionDateRange(entries []ProductionEntry) (DateRange, bool) {
	var r DateRange
	for i, e := range entries {
		day := Day(e.Date)
		if i == 0 || day.Before(r.Start) {
			r.Start = day
		}
		if i == 0 || day.After(r.End) {
			r.End = day
		}
	}
	return r, len(entries) > 0
}

// Day truncates t to its calendar date, expressed at UTC midnight so that
// dates compare equal regardless of the source location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateLayout is the ISO date format used for date_id values in messages and
// external APIs.
const DateLayout = "2006-01-02"

// DailyProductionAggregate is production rolled up per (date, mine).
type DailyProductionAggregate struct {
	DateID               time.Time
	MineID               string
	TotalProductionDaily float64
	AverageQualityGrade  float64
}

// DailyEquipmentAggregate is fleet activity rolled up per day.
type DailyEquipmentAggregate struct {
	DateID           time.Time
	OperationalHours float64 // count of "active" samples
	FuelConsumption  float64
}

// EquipmentAggregates is the daily fleet rollup plus the run-wide fleet size.
type EquipmentAggregates struct {
	Daily                  []DailyEquipmentAggregate
	DistinctEquipmentCount int
}

// ClimateDailyRecord is one day of the climate series. Nil fields are days the
// archive reported without a value.
type ClimateDailyRecord struct {
	DateID          time.Time
	TemperatureMean *float64
	RainfallMM      *float64
}

// LocationMetadata describes the site as reported by the climate source.
type LocationMetadata struct {
	Latitude         float64
	Longitude        float64
	Elevation        float64
	Timezone         string
	UTCOffsetSeconds int
}

// ClimateSeries is the climate source response for one run. The zero value is
// "no climate data".
type ClimateSeries struct {
	Daily    []ClimateDailyRecord
	Location *LocationMetadata
}

// Empty reports whether the series carries no daily records.
func (s ClimateSeries) Empty() bool {
	return len(s.Daily) == 0
}

// MergedDailyFact is the joined and derived row per (date, mine), before and
// after validation. Pointer fields are absent when the joined source had no
// row for that date.
type MergedDailyFact struct {
	DateID               time.Time
	MineID               string
	TotalProductionDaily float64
	AverageQualityGrade  float64

	OperationalHours *float64
	FuelConsumption  *float64

	TemperatureMean *float64
	RainfallMM      *float64

	EquipmentUtilization float64
	FuelEfficiency       float64
}
