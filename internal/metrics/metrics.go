package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess    = "success"
	OutcomeInputError = "input_error"
	OutcomeModelError = "model_error"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bikerental",
			Name:      "predictions_total",
			Help:      "Form evaluations, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	predictionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bikerental",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent parsing a submission and evaluating the model.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bikerental",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, partitioned by method and status code.",
		},
		[]string{"method", "status"},
	)

	sinkFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bikerental",
			Name:      "prediction_sink_failures_total",
			Help:      "Failed deliveries of successful predictions to the audit log or event broker.",
		},
		[]string{"sink"},
	)
)

// Register attaches the service collectors to reg.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		predictionsTotal,
		predictionDurationSeconds,
		httpRequestsTotal,
		sinkFailuresTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObservePrediction records one evaluation. Unknown outcomes count as model errors.
func ObservePrediction(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeInputError:
	default:
		outcome = OutcomeModelError
	}
	predictionsTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	predictionDurationSeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest counts one served request.
func ObserveHTTPRequest(method string, status int) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveSinkFailure counts one failed prediction delivery.
func ObserveSinkFailure(sink string) {
	sinkFailuresTotal.WithLabelValues(sink).Inc()
}
