package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notify",
		Name:      "dispatch_total",
		Help:      "Completed dispatches by aggregate status.",
	}, []string{"status"})

	outcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notify",
		Name:      "channel_outcome_total",
		Help:      "Per-channel delivery outcomes.",
	}, []string{"channel", "result"})

	dispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "notify",
		Name:      "dispatch_duration_seconds",
		Help:      "Wall time of one dispatch, fan-out included.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

// observeDispatch records the metrics for one completed dispatch.
func observeDispatch(status AggregateStatus, outcomes []Outcome, elapsed time.Duration) {
	dispatchTotal.WithLabelValues(string(status)).Inc()
	for _, o := range outcomes {
		outcomeTotal.WithLabelValues(string(o.Channel), string(o.Result)).Inc()
	}
	dispatchDuration.Observe(elapsed.Seconds())
}
