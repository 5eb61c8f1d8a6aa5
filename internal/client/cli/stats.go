package cli

import (
	"context"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/prometheus/client_golang/prometheus"
)

// gatherer is where remote call metrics are read from. Tests may swap it.
var gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Stats prints the remote call counters collected in this process.
func (a *App) Stats(ctx context.Context) error {
	stats, err := client.RequestStats(gatherer)
	if err != nil {
		a.logger.Warn(ctx, "reading request metrics", "error", err)
		return err
	}
	printStats(a.out, stats)
	return nil
}

// logStats writes the counters to the debug log, one line per row.
func (a *App) logStats(ctx context.Context) {
	stats, err := client.RequestStats(gatherer)
	if err != nil {
		a.logger.Debug(ctx, "reading request metrics", "error", err)
		return
	}
	for _, s := range stats {
		a.logger.Debug(ctx, "remote calls", "op", s.Op, "code", s.Code, "count", s.Count, "mean", s.Mean)
	}
}
