package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	RolloverSweepFailure       = "rollover_sweep_failure"
	RolloverSweepDuration      = "rollover_sweep_duration_seconds"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		RolloverSweepFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RolloverSweepFailure,
			Help: "Count of per-user failures during a rollover sweep",
		}, []string{"reason"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
		RolloverSweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: RolloverSweepDuration,
			Help: "Duration of a full rollover sweep",
		}, []string{"trigger"}),
	}
)

func init() {
	for _, counter := range PromCounters {
		prometheus.MustRegister(counter)
	}

	for _, histogram := range PromHistograms {
		prometheus.MustRegister(histogram)
	}
}
