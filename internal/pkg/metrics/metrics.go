package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfolio"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
)

var (
	// RefreshCycles counts settled refresh cycles per chain and outcome.
	RefreshCycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_cycles_total",
		Help:      "Number of settled refresh cycles by chain and outcome.",
	}, []string{"chain", "outcome"})

	// ChainAPIRequestDuration observes balance/transaction service latency.
	ChainAPIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chain_api_request_duration_seconds",
		Help:      "Latency of requests to the balance/transaction service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"chain", "operation", "outcome"})

	// TotalValueUSD is the current total portfolio value.
	TotalValueUSD = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "total_value_usd",
		Help:      "Current total portfolio value in USD.",
	})

	// ChainValueUSD is the current value held per chain.
	ChainValueUSD = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chain_value_usd",
		Help:      "Current portfolio value per chain in USD.",
	}, []string{"chain"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry.
// Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RefreshCycles, ChainAPIRequestDuration, TotalValueUSD, ChainValueUSD)
	})
}

// ObserveRequest records one chain API call started at start.
func ObserveRequest(chain, operation string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	ChainAPIRequestDuration.WithLabelValues(chain, operation, outcome).Observe(time.Since(start).Seconds())
}
