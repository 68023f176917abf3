// Package domain models the daily operational record of a mining site and the
// pure stages that turn raw telemetry into warehouse rows.
//
// # Data Sources
//
// Three staging datasets are read once per run:
//
//	production_logs    one row per shift: date, mine_id, tons_extracted, quality_grade
//	equipment_sensors  one row per telemetry sample: timestamp, equipment_id, status,
//	                   fuel_consumption, maintenance_alert
//	mines              the mine registry: mine_id, mine_name, location
//
// A daily climate series (mean temperature, precipitation sum) for the single
// deployment site is fetched from an external archive for the date range the
// production entries cover. Its absence never fails a run.
//
// # Grain Alignment
//
// Production is rolled up per (date, mine); sensor samples are rolled up per
// date only because sensors carry no mine reference; climate is already daily.
// The merged record keeps one row per (date, mine) and left-joins the other two
// on date, so a day without equipment or climate data is kept with those
// fields absent.
//
// Numeric staging columns arrive as fixed-point NUMERIC text. They are summed
// and averaged as arbitrary-precision decimals ([Decimal]) and only converted
// to float64 once per aggregate.
//
// # Derived Metrics
//
//	equipment_utilization = operational_hours / (distinct_equipment × 24) × 100
//	    operational_hours is the count of "active" samples for the day.
//	    distinct_equipment is counted across the whole run, not per day.
//	    A run with no equipment yields 0.
//	fuel_efficiency = total_production_daily / max(fuel_consumption, 1)
//	    Missing or sub-unit fuel figures are floored to 1. This understates
//	    efficiency on days with very low recorded fuel but never yields Inf/NaN.
//
// # Validation
//
// Validation rules are pure functions returning the corrected rows and the
// findings they produced. Findings are folded into an immutable [Ledger] by the
// caller. Out-of-range values are repaired, never rejected:
//
//	negative_production   total_production_daily < 0 is clamped to 0
//	invalid_utilization   equipment_utilization outside [0, 100] is clamped
//	missing_weather       a production date without a climate record (no change)
//
// # Dimensions
//
// Dimension rows carry placeholder attributes where staging has none (mine
// type, opening date, equipment type, last maintenance). Every placeholder is
// listed in [Defaults].
package domain
