package domain

import "time"

// Merge left-joins the daily production aggregate with the equipment aggregate
// and, when present, the climate series, all on date. Every production row
// appears exactly once in the output, in input order. Unmatched equipment and
// climate fields stay nil; filling them is the metric deriver's and loader's
// concern.
func Merge(production []DailyProductionAggregate, equipment []DailyEquipmentAggregate, climate []ClimateDailyRecord) []MergedDailyFact {
	equipmentByDay := make(map[time.Time]DailyEquipmentAggregate, len(equipment))
	for _, e := range equipment {
		day := Day(e.DateID)
		if _, seen := equipmentByDay[day]; !seen {
			equipmentByDay[day] = e
		}
	}

	climateByDay := make(map[time.Time]ClimateDailyRecord, len(climate))
	for _, c := range climate {
		day := Day(c.DateID)
		if _, seen := climateByDay[day]; !seen {
			climateByDay[day] = c
		}
	}

	out := make([]MergedDailyFact, 0, len(production))
	for _, p := range production {
		day := Day(p.DateID)
		row := MergedDailyFact{
			DateID:               day,
			MineID:               p.MineID,
			TotalProductionDaily: p.TotalProductionDaily,
			AverageQualityGrade:  p.AverageQualityGrade,
		}
		if e, ok := equipmentByDay[day]; ok {
			row.OperationalHours = float64Ptr(e.OperationalHours)
			row.FuelConsumption = float64Ptr(e.FuelConsumption)
		}
		if c, ok := climateByDay[day]; ok {
			row.TemperatureMean = c.TemperatureMean
			row.RainfallMM = c.RainfallMM
		}
		out = append(out, row)
	}
	return out
}

func float64Ptr(v float64) *float64 {
	return &v
}
