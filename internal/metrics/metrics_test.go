package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register() = %v; want nil", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register() = %v; want nil", err)
	}
}

func TestObservePrediction_outcomeLabels(t *testing.T) {
	before := testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeModelError))

	ObservePrediction(time.Millisecond, "something-else")
	ObservePrediction(-time.Second, OutcomeModelError)

	after := testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeModelError))
	if after-before != 2 {
		t.Errorf("model_error delta = %v; want 2", after-before)
	}
}

func TestObservePrediction_success(t *testing.T) {
	before := testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeSuccess))
	ObservePrediction(time.Millisecond, OutcomeSuccess)
	after := testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeSuccess))
	if after-before != 1 {
		t.Errorf("success delta = %v; want 1", after-before)
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "200"))
	ObserveHTTPRequest("POST", 200)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "200"))
	if after-before != 1 {
		t.Errorf("delta = %v; want 1", after-before)
	}
}

func TestObserveSinkFailure(t *testing.T) {
	before := testutil.ToFloat64(sinkFailuresTotal.WithLabelValues("mqtt"))
	ObserveSinkFailure("mqtt")
	after := testutil.ToFloat64(sinkFailuresTotal.WithLabelValues("mqtt"))
	if after-before != 1 {
		t.Errorf("delta = %v; want 1", after-before)
	}
}
