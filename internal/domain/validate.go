package domain

import (
	"fmt"
	"sort"
	"time"
)

// FindingKind names a validation rule.
type FindingKind string

const (
	KindNegativeProduction FindingKind = "negative_production"
	KindInvalidUtilization FindingKind = "invalid_utilization"
	KindMissingWeather     FindingKind = "missing_weather"
)

// FindingKinds lists every rule in the order they run.
var FindingKinds = []FindingKind{KindNegativeProduction, KindInvalidUtilization, KindMissingWeather}

// Finding is one detected anomaly. Value is the offending value before
// correction and is nil for rules that do not inspect a value.
type Finding struct {
	Kind    FindingKind `json:"type"`
	Date    time.Time   `json:"date"`
	MineID  string      `json:"mine_id,omitempty"`
	Value   *float64    `json:"value"`
	Message string      `json:"message"`
}

const (
	minUtilization = 0
	maxUtilization = 100
)

// ValidateProduction clamps negative total_production_daily to 0 and reports
// one finding per clamped row. rows is not modified.
func ValidateProduction(rows []MergedDailyFact) ([]MergedDailyFact, []Finding) {
	out := make([]MergedDailyFact, len(rows))
	var findings []Finding
	for i, row := range rows {
		if row.TotalProductionDaily < 0 {
			findings = append(findings, Finding{
				Kind:   KindNegativeProduction,
				Date:   row.DateID,
				MineID: row.MineID,
				Value:  float64Ptr(row.TotalProductionDaily),
				Message: fmt.Sprintf("Negative production found: %g tons on date %s at mine %s",
					row.TotalProductionDaily, row.DateID.Format(DateLayout), row.MineID),
			})
			row.TotalProductionDaily = 0
		}
		out[i] = row
	}
	return out, findings
}

// ValidateUtilization clamps equipment_utilization into [0, 100] and reports
// one finding per clamped row. rows is not modified.
func ValidateUtilization(rows []MergedDailyFact) ([]MergedDailyFact, []Finding) {
	out := make([]MergedDailyFact, len(rows))
	var findings []Finding
	for i, row := range rows {
		u := row.EquipmentUtilization
		if u < minUtilization || u > maxUtilization {
			findings = append(findings, Finding{
				Kind:   KindInvalidUtilization,
				Date:   row.DateID,
				MineID: row.MineID,
				Value:  float64Ptr(u),
				Message: fmt.Sprintf("Invalid equipment utilization: %g%% on date %s at mine %s",
					u, row.DateID.Format(DateLayout), row.MineID),
			})
			row.EquipmentUtilization = min(max(u, minUtilization), maxUtilization)
		}
		out[i] = row
	}
	return out, findings
}

// ValidateWeatherCompleteness reports one finding per production date that has
// no climate record, in date order. It never changes data; the boolean is true
// when every production date is covered.
func ValidateWeatherCompleteness(rows []MergedDailyFact, climate []ClimateDailyRecord) (bool, []Finding) {
	covered := make(map[time.Time]struct{}, len(climate))
	for _, c := range climate {
		covered[Day(c.DateID)] = struct{}{}
	}

	missing := make(map[time.Time]struct{})
	for _, row := range rows {
		day := Day(row.DateID)
		if _, ok := covered[day]; !ok {
			missing[day] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(missing))
	for day := range missing {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	findings := make([]Finding, 0, len(days))
	for _, day := range days {
		findings = append(findings, Finding{
			Kind:    KindMissingWeather,
			Date:    day,
			Message: fmt.Sprintf("Missing weather data for production date: %s", day.Format(DateLayout)),
		})
	}
	return len(days) == 0, findings
}
