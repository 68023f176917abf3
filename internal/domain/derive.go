package domain

// hoursPerDay is the theoretical daily capacity of one machine.
const hoursPerDay = 24

// DeriveMetrics returns a copy of rows with equipment_utilization and
// fuel_efficiency filled in. distinctEquipment is the run-wide fleet size from
// [AggregateEquipment].
func DeriveMetrics(rows []MergedDailyFact, distinctEquipment int) []MergedDailyFact {
	out := make([]MergedDailyFact, len(rows))
	for i, row := range rows {
		hours := 0.0
		if row.OperationalHours != nil {
			hours = *row.OperationalHours
		}
		row.EquipmentUtilization = EquipmentUtilization(hours, distinctEquipment)
		row.FuelEfficiency = FuelEfficiency(row.TotalProductionDaily, row.FuelConsumption)
		out[i] = row
	}
	return out
}

// EquipmentUtilization is operational hours as a percentage of the fleet's
// daily capacity. A fleet of zero has 0 utilization.
func EquipmentUtilization(operationalHours float64, distinctEquipment int) float64 {
	if distinctEquipment <= 0 {
		return 0
	}
	return operationalHours / float64(distinctEquipment*hoursPerDay) * 100
}

// FuelEfficiency is tons produced per unit of fuel. Missing fuel and fuel below
// 1 are floored to 1.
func FuelEfficiency(production float64, fuel *float64) float64 {
	denominator := 1.0
	if fuel != nil && *fuel > denominator {
		denominator = *fuel
	}
	return production / denominator
}
