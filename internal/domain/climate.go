package domain

import "context"

// ClimateSource supplies the daily climate series for the deployment site.
type ClimateSource interface {
	// FetchDaily returns one record per day in r together with site metadata.
	FetchDaily(ctx context.Context, r DateRange) (ClimateSeries, error)
}
