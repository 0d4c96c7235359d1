package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"bikerental-server/internal/modules/rental/types"
)

type memorySink struct {
	name string
	err  error

	mu  sync.Mutex
	got []types.Prediction
}

func (m *memorySink) Name() string { return m.name }

func (m *memorySink) Record(_ context.Context, p types.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, p)
	return m.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Predict_recordsSuccess(t *testing.T) {
	sink := &memorySink{name: "memory"}
	svc := NewService(&stubPredictor{value: 12.5}, ModelInfo{Name: "hgb", Version: "3"}, quietLogger(), sink)
	fixed := time.Date(2026, 6, 15, 17, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	form := validForm()
	form.Set("unrelated", "ignored")
	out := svc.Predict(context.Background(), form)
	if !out.OK() {
		t.Fatalf("Outcome = %+v; want success", out)
	}

	if len(sink.got) != 1 {
		t.Fatalf("sink received %d predictions; want 1", len(sink.got))
	}
	p := sink.got[0]
	if p.Value != 12.5 || p.Model != "hgb" || p.ModelVersion != "3" || !p.Time.Equal(fixed) {
		t.Errorf("prediction = %+v", p)
	}
	if p.Inputs["temp_c"] != "20.5" || p.Inputs["holiday"] != "no" {
		t.Errorf("Inputs = %v; want submitted values", p.Inputs)
	}
	if _, ok := p.Inputs["unrelated"]; ok {
		t.Error("Inputs kept an unknown field")
	}
	if p.Features.Hr != 17 {
		t.Errorf("Features.Hr = %d; want 17", p.Features.Hr)
	}
}

func TestService_Predict_failureNotRecorded(t *testing.T) {
	sink := &memorySink{name: "memory"}
	svc := NewService(&stubPredictor{value: 1}, ModelInfo{}, quietLogger(), sink)

	form := validForm()
	form.Del("holiday")
	out := svc.Predict(context.Background(), form)
	if out.OK() {
		t.Fatal("Outcome OK; want failure")
	}
	if len(sink.got) != 0 {
		t.Errorf("sink received %d predictions; want 0", len(sink.got))
	}
}

func TestService_Predict_sinkErrorKeepsOutcome(t *testing.T) {
	failing := &memorySink{name: "broken", err: errors.New("disk full")}
	healthy := &memorySink{name: "memory"}
	svc := NewService(&stubPredictor{value: 7}, ModelInfo{}, quietLogger(), failing, healthy)

	out := svc.Predict(context.Background(), validForm())
	if !out.OK() || *out.Prediction != 7 {
		t.Fatalf("Outcome = %+v; want prediction 7", out)
	}
	if len(healthy.got) != 1 {
		t.Errorf("healthy sink received %d; want 1", len(healthy.got))
	}
}

func TestNewService_nilLogger(t *testing.T) {
	svc := NewService(&stubPredictor{}, ModelInfo{}, nil)
	if svc.logger == nil {
		t.Fatal("logger = nil; want slog.Default()")
	}
}
