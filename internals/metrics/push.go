package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push replaces the Pushgateway group job/<job>/command/<command> with what g
// gathers. CLI runs exit before any scrape, so each one pushes on the way out.
func Push(ctx context.Context, url, job, command string, g prometheus.Gatherer) error {
	return push.New(url, job).
		Gatherer(g).
		Grouping("command", command).
		PushContext(ctx)
}
