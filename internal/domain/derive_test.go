package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentUtilization(t *testing.T) {
	tests := []struct {
		name     string
		hours    float64
		fleet    int
		expected float64
	}{
		{"fleet-wide capacity", 50, 4, 50.0 / 96.0 * 100},
		{"full capacity", 24, 1, 100},
		{"over capacity is not clamped here", 48, 1, 200},
		{"no fleet", 10, 0, 0},
		{"no hours", 0, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EquipmentUtilization(tt.hours, tt.fleet), 1e-9)
		})
	}
}

func TestFuelEfficiency(t *testing.T) {
	tests := []struct {
		name       string
		production float64
		fuel       *float64
		expected   float64
	}{
		{"regular", 500, ptr(250), 2},
		{"zero fuel floors to one", 500, ptr(0), 500},
		{"missing fuel floors to one", 500, nil, 500},
		{"sub-unit fuel floors to one", 500, ptr(0.5), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuelEfficiency(tt.production, tt.fuel)
			assert.False(t, math.IsInf(got, 0) || math.IsNaN(got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDeriveMetrics(t *testing.T) {
	// Scenario: 4 distinct machines, 50 active samples on one day.
	readings := make([]SensorReading, 0, 50)
	fleet := []string{"EQ1", "EQ2", "EQ3", "EQ4"}
	for i := 0; i < 50; i++ {
		readings = append(readings, sample(july1, fleet[i%len(fleet)], SensorActive, 2))
	}
	equipment, err := AggregateEquipment(readings)
	require.NoError(t, err)
	require.Equal(t, 4, equipment.DistinctEquipmentCount)

	production := []DailyProductionAggregate{
		{DateID: july1, MineID: "M1", TotalProductionDaily: 1000},
		{DateID: july2, MineID: "M1", TotalProductionDaily: 300},
	}
	merged := Merge(production, equipment.Daily, nil)

	got := DeriveMetrics(merged, equipment.DistinctEquipmentCount)
	require.Len(t, got, 2)
	assert.InDelta(t, 52.08, got[0].EquipmentUtilization, 0.01)
	assert.Equal(t, 10.0, got[0].FuelEfficiency)

	// No equipment data for the day: hours and fuel fall back to 0 and 1.
	assert.Equal(t, 0.0, got[1].EquipmentUtilization)
	assert.Equal(t, 300.0, got[1].FuelEfficiency)

	assert.Zero(t, merged[0].EquipmentUtilization, "input rows are not modified")
}
