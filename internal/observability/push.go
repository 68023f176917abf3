package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJob is the Pushgateway job name for one-shot runs.
const PushJob = "mine_etl"

// Push sends the default registry to a Prometheus Pushgateway, grouped by site.
// One-shot runs exit before a scrape would happen, so their metrics are pushed
// instead.
func Push(ctx context.Context, gatewayURL, site string) error {
	err := push.New(gatewayURL, PushJob).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("site", site).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
