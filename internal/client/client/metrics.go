package client

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	remoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "supportportal_client",
			Name:      "remote_requests_total",
			Help:      "Remote API calls by operation and HTTP status (0 = no response).",
		},
		[]string{"op", "code"},
	)

	remoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "supportportal_client",
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of remote API calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func observeRequest(op string, code int, start time.Time) {
	remoteRequestsTotal.WithLabelValues(op, strconv.Itoa(code)).Inc()
	remoteRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RequestStat is one row of the remote request counters.
type RequestStat struct {
	Op    string
	Code  string
	Count uint64
	// Mean is the average latency of op over all status codes.
	Mean time.Duration
}

// RequestStats reads the request metrics back from g, normally
// prometheus.DefaultGatherer. Rows are ordered by op, then code.
func RequestStats(g prometheus.Gatherer) ([]RequestStat, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	const prefix = "supportportal_client_"
	means := make(map[string]time.Duration)
	var stats []RequestStat
	for _, mf := range families {
		switch mf.GetName() {
		case prefix + "remote_request_duration_seconds":
			for _, m := range mf.GetMetric() {
				h := m.GetHistogram()
				if h.GetSampleCount() == 0 {
					continue
				}
				mean := h.GetSampleSum() / float64(h.GetSampleCount())
				means[labelValue(m.GetLabel(), "op")] = time.Duration(mean * float64(time.Second))
			}
		case prefix + "remote_requests_total":
			for _, m := range mf.GetMetric() {
				stats = append(stats, RequestStat{
					Op:    labelValue(m.GetLabel(), "op"),
					Code:  labelValue(m.GetLabel(), "code"),
					Count: uint64(m.GetCounter().GetValue()),
				})
			}
		}
	}

	for i := range stats {
		stats[i].Mean = means[stats[i].Op]
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Op != stats[j].Op {
			return stats[i].Op < stats[j].Op
		}
		return stats[i].Code < stats[j].Code
	})
	return stats, nil
}

func labelValue(labels []*dto.LabelPair, name string) string {
	for _, l := range labels {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}
