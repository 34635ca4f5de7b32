package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_calls_total",
			Help: "Total calls issued to the game service",
		},
		[]string{"operation", "result"}, // result: success|transport_error|protocol_error|decode_error|encode_error
	)

	CallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duel_call_duration_seconds",
			Help:    "Duration from issue to resolution of a game service call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CallsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "duel_calls_in_flight",
			Help: "Calls issued and not yet resolved",
		},
	)

	RoundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_rounds_total",
			Help: "Total rounds played",
		},
		[]string{"result"}, // victory|defeat|error
	)

	RoundDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duel_round_duration_seconds",
			Help:    "Duration of a fetch-allocate-submit round",
			Buckets: prometheus.DefBuckets,
		},
	)

	AllocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_allocations_total",
			Help: "Allocations computed, by ranking branch",
		},
		[]string{"branch"}, // single_max|tied_max|multi_max
	)
)

func init() {
	prometheus.MustRegister(CallsTotal)
	prometheus.MustRegister(CallDuration)
	prometheus.MustRegister(CallsInFlight)
	prometheus.MustRegister(RoundsTotal)
	prometheus.MustRegister(RoundDuration)
	prometheus.MustRegister(AllocationsTotal)
}

func Register(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
