package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEquipmentMetrics(t *testing.T) {
	d := StandardDefaults()
	readings := []SensorReading{
		{Timestamp: july1.Add(time.Hour), EquipmentID: "EQ1", Status: SensorActive, FuelConsumption: 5, MaintenanceAlert: 0},
		{Timestamp: july1.Add(2 * time.Hour), EquipmentID: "EQ1", Status: SensorMaintenance, FuelConsumption: 1, MaintenanceAlert: 1},
		{Timestamp: july1.Add(3 * time.Hour), EquipmentID: "EQ1", Status: SensorActive, FuelConsumption: 4, MaintenanceAlert: 1},
		{Timestamp: july1.Add(time.Hour), EquipmentID: "EQ0", Status: SensorIdle, FuelConsumption: 0.5},
		{Timestamp: july2, EquipmentID: "EQ1", Status: SensorActive, FuelConsumption: 3},
	}

	got := BuildEquipmentMetrics(readings, d)
	require.Len(t, got, 3)

	assert.Equal(t, "EQ0", got[0].EquipmentID)
	assert.Equal(t, 0.0, got[0].TotalOperationalHours)

	assert.Equal(t, EquipmentMetricsFact{
		DateID:                july1,
		EquipmentID:           "EQ1",
		MineID:                d.EquipmentMineID,
		LocationID:            d.Location.LocationID,
		TotalOperationalHours: 2,
		TotalMaintenanceHours: 1,
		TotalFuelConsumption:  10,
		MaintenanceAlerts:     2,
	}, got[1])
	assert.Equal(t, july2, got[2].DateID)
}

func TestTableSchema_Project(t *testing.T) {
	row := MergedDailyFact{
		DateID:               july2,
		MineID:               "M1",
		TotalProductionDaily: 120,
		EquipmentUtilization: 40,
		FuelEfficiency:       1.2,
		AverageQualityGrade:  3.3,
	}

	t.Run("missing climate columns take the fill value", func(t *testing.T) {
		batch, err := FactDailyProduction.Project([]Record{row.ProductionRecord(1)}, 0.0)
		require.NoError(t, err)
		require.Len(t, batch.Rows, 1)
		assert.Equal(t, FactDailyProduction, batch.Table)
		assert.Equal(t, []any{july2, "M1", 1, 120.0, 40.0, 1.2, 3.3, 0.0, 0.0}, batch.Rows[0])
	})

	t.Run("present climate columns are kept", func(t *testing.T) {
		withClimate := row
		withClimate.TemperatureMean = ptr(26.4)
		withClimate.RainfallMM = ptr(0)
		batch, err := FactDailyProduction.Project([]Record{withClimate.ProductionRecord(1)}, 0.0)
		require.NoError(t, err)
		assert.Equal(t, 26.4, batch.Rows[0][7])
		assert.Equal(t, 0.0, batch.Rows[0][8])
	})

	t.Run("missing key column", func(t *testing.T) {
		_, err := FactDailyProduction.Project([]Record{{"date_id": july1}}, 0.0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mine_id")
	})

	t.Run("dimension rows", func(t *testing.T) {
		dates := BuildDateDimension([]ProductionEntry{entry(time.Date(2024, time.July, 6, 0, 0, 0, 0, time.UTC), "M1", "1", "1")})
		batch, err := DimDate.Project(Records(dates), 0.0)
		require.NoError(t, err)
		assert.Equal(t, []any{time.Date(2024, time.July, 6, 0, 0, 0, 0, time.UTC), 2024, 7, 6, 6, 3, 1}, batch.Rows[0])
	})
}

func TestSchemas_KeysAreColumns(t *testing.T) {
	for _, s := range []TableSchema{DimDate, DimMine, DimEquipment, DimLocation, FactEquipmentMetrics, FactDailyProduction} {
		cols := make(map[string]bool, len(s.Columns))
		for _, c := range s.Columns {
			cols[c] = true
		}
		for _, k := range s.Key {
			assert.True(t, cols[k], "%s key %s", s.Name, k)
		}
	}
}
