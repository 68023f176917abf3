package domain

import (
	"sort"
	"strings"
	"time"
)

// DateDimensionRow is one dim_date record.
type DateDimensionRow struct {
	DateID    time.Time
	Year      int
	Month     int
	Day       int
	DayOfWeek int // 1=Monday … 7=Sunday
	Quarter   int
	IsWeekend bool
}

// MineDimensionRow is one dim_mine record.
type MineDimensionRow struct {
	MineID     string
	Location   string
	Type       string
	OpenedDate time.Time
}

// EquipmentDimensionRow is one dim_equipment record.
type EquipmentDimensionRow struct {
	EquipmentID         string
	EquipmentType       string
	LastMaintenanceDate time.Time
}

// LocationDimensionRow is one dim_location record.
type LocationDimensionRow struct {
	LocationID       int
	Location         string
	Latitude         float64
	Longitude        float64
	Elevation        float64
	Timezone         string
	UTCOffsetSeconds int
}

// Dimensions holds every dimension set for one run.
type Dimensions struct {
	Dates     []DateDimensionRow
	Mines     []MineDimensionRow
	Equipment []EquipmentDimensionRow
	Locations []LocationDimensionRow
}

// BuildDimensions derives all dimension sets from the raw inputs and the
// climate site metadata, which may be nil.
func BuildDimensions(raw RawDataset, site *LocationMetadata, d Defaults) Dimensions {
	return Dimensions{
		Dates:     BuildDateDimension(raw.Production),
		Mines:     BuildMineDimension(raw.Mines, raw.Sensors, d),
		Equipment: BuildEquipmentDimension(raw.Sensors, d),
		Locations: BuildLocationDimension(site, d),
	}
}

// BuildDateDimension returns one row per distinct production date, ascending.
func BuildDateDimension(entries []ProductionEntry) []DateDimensionRow {
	seen := make(map[time.Time]struct{})
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		seen[Day(e.Date)] = struct{}{}
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	rows := make([]DateDimensionRow, 0, len(days))
	for _, day := range days {
		rows = append(rows, newDateDimensionRow(day))
	}
	return rows
}

func newDateDimensionRow(day time.Time) DateDimensionRow {
	dow := isoWeekday(day.Weekday())
	return DateDimensionRow{
		DateID:    day,
		Year:      day.Year(),
		Month:     int(day.Month()),
		Day:       day.Day(),
		DayOfWeek: dow,
		Quarter:   (int(day.Month())-1)/3 + 1,
		IsWeekend: dow >= 6,
	}
}

// isoWeekday maps Sunday=0 … Saturday=6 to Monday=1 … Sunday=7.
func isoWeekday(wd time.Weekday) int {
	return (int(wd)+6)%7 + 1
}

// BuildMineDimension returns one row per registry mine, ordered by mine_id.
// Duplicate registry entries keep the first occurrence. When readings produce
// any fact_equipment_metrics row, the d.EquipmentMineID placeholder those rows
// reference is added too.
func BuildMineDimension(mines []Mine, readings []SensorReading, d Defaults) []MineDimensionRow {
	seen := make(map[string]struct{}, len(mines))
	rows := make([]MineDimensionRow, 0, len(mines))
	for _, m := range mines {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		location := strings.TrimSpace(m.Location)
		if location == "" {
			location = d.MineLocation
		}
		rows = append(rows, MineDimensionRow{
			MineID:     id,
			Location:   location,
			Type:       d.MineType,
			OpenedDate: d.MineOpenedDate,
		})
	}

	if _, registered := seen[d.EquipmentMineID]; !registered && hasEquipmentFacts(readings) {
		rows = append(rows, MineDimensionRow{
			MineID:     d.EquipmentMineID,
			Location:   d.MineLocation,
			Type:       d.MineType,
			OpenedDate: d.MineOpenedDate,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].MineID < rows[j].MineID })
	return rows
}

// hasEquipmentFacts reports whether BuildEquipmentMetrics would emit a row.
func hasEquipmentFacts(readings []SensorReading) bool {
	for _, r := range readings {
		if strings.TrimSpace(r.EquipmentID) != "" && !r.Timestamp.IsZero() {
			return true
		}
	}
	return false
}

// BuildEquipmentDimension returns one row per distinct equipment_id, ordered
// by ID.
func BuildEquipmentDimension(readings []SensorReading, d Defaults) []EquipmentDimensionRow {
	seen := make(map[string]struct{})
	for _, r := range readings {
		if id := strings.TrimSpace(r.EquipmentID); id != "" {
			seen[id] = struct{}{}
		}
	}

	rows := make([]EquipmentDimensionRow, 0, len(seen))
	for id := range seen {
		rows = append(rows, EquipmentDimensionRow{
			EquipmentID:         id,
			EquipmentType:       d.EquipmentType,
			LastMaintenanceDate: d.EquipmentLastMaintenance,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EquipmentID < rows[j].EquipmentID })
	return rows
}

// BuildLocationDimension returns the single site row: coordinates from the
// climate source when available, otherwise the fallback in d.
func BuildLocationDimension(site *LocationMetadata, d Defaults) []LocationDimensionRow {
	row := d.Location
	if site != nil {
		row.Latitude = site.Latitude
		row.Longitude = site.Longitude
		row.Elevation = site.Elevation
		row.Timezone = site.Timezone
		row.UTCOffsetSeconds = site.UTCOffsetSeconds
	}
	return []LocationDimensionRow{row}
}
