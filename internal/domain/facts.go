package domain

import (
	"sort"
	"strings"
	"time"
)

// EquipmentMetricsFact is one fact_equipment_metrics row.
type EquipmentMetricsFact struct {
	DateID                time.Time
	EquipmentID           string
	MineID                string
	LocationID            int
	TotalOperationalHours float64 // "active" samples
	TotalMaintenanceHours float64 // "maintenance" samples
	TotalFuelConsumption  float64
	MaintenanceAlerts     float64
}

type equipmentDayKey struct {
	date        time.Time
	equipmentID string
}

// BuildEquipmentMetrics groups sensor samples by (date, equipment_id), counting
// samples per status and summing fuel and alerts. Output is ordered by date,
// then equipment_id.
func BuildEquipmentMetrics(readings []SensorReading, d Defaults) []EquipmentMetricsFact {
	groups := make(map[equipmentDayKey]*EquipmentMetricsFact)
	for _, r := range readings {
		id := strings.TrimSpace(r.EquipmentID)
		if id == "" || r.Timestamp.IsZero() {
			continue
		}
		key := equipmentDayKey{date: Day(r.Timestamp), equipmentID: id}
		fact, ok := groups[key]
		if !ok {
			fact = &EquipmentMetricsFact{
				DateID:      key.date,
				EquipmentID: id,
				MineID:      d.EquipmentMineID,
				LocationID:  d.Location.LocationID,
			}
			groups[key] = fact
		}
		switch r.Status {
		case SensorActive:
			fact.TotalOperationalHours++
		case SensorMaintenance:
			fact.TotalMaintenanceHours++
		}
		fact.TotalFuelConsumption += r.FuelConsumption
		fact.MaintenanceAlerts += float64(r.MaintenanceAlert)
	}

	out := make([]EquipmentMetricsFact, 0, len(groups))
	for _, fact := range groups {
		out = append(out, *fact)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateID.Equal(out[j].DateID) {
			return out[i].DateID.Before(out[j].DateID)
		}
		return out[i].EquipmentID < out[j].EquipmentID
	})
	return out
}

// Record returns the fact_equipment_metrics columns of f.
func (f EquipmentMetricsFact) Record() Record {
	return Record{
		"date_id":                 f.DateID,
		"equipment_id":            f.EquipmentID,
		"mine_id":                 f.MineID,
		"location_id":             f.LocationID,
		"total_operational_hours": f.TotalOperationalHours,
		"total_maintenance_hours": f.TotalMaintenanceHours,
		"total_fuel_consumption":  f.TotalFuelConsumption,
		"maintenance_alerts":      f.MaintenanceAlerts,
	}
}

// ProductionRecord returns the fact_daily_production columns of f. Climate
// columns are omitted when the day had no climate record.
func (f MergedDailyFact) ProductionRecord(locationID int) Record {
	rec := Record{
		"date_id":                f.DateID,
		"mine_id":                f.MineID,
		"location_id":            locationID,
		"total_production_daily": f.TotalProductionDaily,
		"equipment_utilization":  f.EquipmentUtilization,
		"fuel_efficiency":        f.FuelEfficiency,
		"average_quality_grade":  f.AverageQualityGrade,
	}
	if f.TemperatureMean != nil {
		rec["temperature_2m_mean"] = *f.TemperatureMean
	}
	if f.RainfallMM != nil {
		rec["rainfall_mm"] = *f.RainfallMM
	}
	return rec
}

// Record returns the dim_date columns of r. is_weekend is stored as 0/1.
func (r DateDimensionRow) Record() Record {
	weekend := 0
	if r.IsWeekend {
		weekend = 1
	}
	return Record{
		"date_id":     r.DateID,
		"year":        r.Year,
		"month":       r.Month,
		"day":         r.Day,
		"day_of_week": r.DayOfWeek,
		"quarter":     r.Quarter,
		"is_weekend":  weekend,
	}
}

// Record returns the dim_mine columns of r.
func (r MineDimensionRow) Record() Record {
	return Record{
		"mine_id":     r.MineID,
		"location":    r.Location,
		"type":        r.Type,
		"opened_date": r.OpenedDate,
	}
}

// Record returns the dim_equipment columns of r.
func (r EquipmentDimensionRow) Record() Record {
	return Record{
		"equipment_id":          r.EquipmentID,
		"equipment_type":        r.EquipmentType,
		"last_maintenance_date": r.LastMaintenanceDate,
	}
}

// Record returns the dim_location columns of r.
func (r LocationDimensionRow) Record() Record {
	return Record{
		"location_id":        r.LocationID,
		"location":           r.Location,
		"latitude":           r.Latitude,
		"longitude":          r.Longitude,
		"elevation":          r.Elevation,
		"timezone":           r.Timezone,
		"utc_offset_seconds": r.UTCOffsetSeconds,
	}
}

// Records converts any slice of row types with a Record method.
func Records[T interface{ Record() Record }](rows []T) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = row.Record()
	}
	return out
}
