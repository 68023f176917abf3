package domain

import "fmt"

// TableSchema describes a warehouse table: its name, natural key, and the full
// column list in insert order.
type TableSchema struct {
	Name    string
	Key     []string
	Columns []string
}

// Warehouse tables in load order: dimensions first, then facts.
var (
	DimDate = TableSchema{
		Name:    "dim_date",
		Key:     []string{"date_id"},
		Columns: []string{"date_id", "year", "month", "day", "day_of_week", "quarter", "is_weekend"},
	}
	DimMine = TableSchema{
		Name:    "dim_mine",
		Key:     []string{"mine_id"},
		Columns: []string{"mine_id", "location", "type", "opened_date"},
	}
	DimEquipment = TableSchema{
		Name:    "dim_equipment",
		Key:     []string{"equipment_id"},
		Columns: []string{"equipment_id", "equipment_type", "last_maintenance_date"},
	}
	DimLocation = TableSchema{
		Name:    "dim_location",
		Key:     []string{"location_id"},
		Columns: []string{"location_id", "location", "latitude", "longitude", "elevation", "timezone", "utc_offset_seconds"},
	}
	FactEquipmentMetrics = TableSchema{
		Name: "fact_equipment_metrics",
		Key:  []string{"date_id", "equipment_id"},
		Columns: []string{
			"date_id", "equipment_id", "mine_id", "location_id",
			"total_operational_hours", "total_maintenance_hours", "total_fuel_consumption", "maintenance_alerts",
		},
	}
	FactDailyProduction = TableSchema{
		Name: "fact_daily_production",
		Key:  []string{"date_id", "mine_id"},
		Columns: []string{
			"date_id", "mine_id", "location_id",
			"total_production_daily", "equipment_utilization", "fuel_efficiency", "average_quality_grade",
			"temperature_2m_mean", "rainfall_mm",
		},
	}
)

// Record is one row keyed by column name. Columns a source cannot supply are
// simply left out.
type Record map[string]any

// TableBatch is a fully-typed set of rows ready for a sink, with values in
// Table.Columns order.
type TableBatch struct {
	Table TableSchema
	Rows  [][]any
}

// Project orders each record's values by the schema's columns. A missing
// non-key column takes fill; a missing key column is an error because the row
// could not be addressed.
func (s TableSchema) Project(records []Record, fill any) (TableBatch, error) {
	key := make(map[string]struct{}, len(s.Key))
	for _, k := range s.Key {
		key[k] = struct{}{}
	}

	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		row := make([]any, len(s.Columns))
		for j, col := range s.Columns {
			v, ok := rec[col]
			if !ok || v == nil {
				if _, isKey := key[col]; isKey {
					return TableBatch{}, fmt.Errorf("%s row %d: missing key column %s", s.Name, i, col)
				}
				v = fill
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return TableBatch{Table: s, Rows: rows}, nil
}
