package service

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"bikerental-server/internal/metrics"
	"bikerental-server/internal/modules/rental/types"
)

// Sink receives successful predictions. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Record(ctx context.Context, p types.Prediction) error
}

// ModelInfo identifies the loaded artifact in stored predictions.
type ModelInfo struct {
	Name    string
	Version string
}

type Service struct {
	predictor Predictor
	info      ModelInfo
	sinks     []Sink
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(predictor Predictor, info ModelInfo, logger *slog.Logger, sinks ...Sink) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		predictor: predictor,
		info:      info,
		sinks:     sinks,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Info() ModelInfo { return s.info }

// Predict evaluates a submission, records metrics and forwards successes to
// the configured sinks. Sink failures are logged and never change the outcome.
func (s *Service) Predict(ctx context.Context, form url.Values) types.Outcome {
	start := time.Now()
	out := Evaluate(ctx, s.predictor, form)
	kind := ErrorKind(out.Err)
	metrics.ObservePrediction(time.Since(start), kind)

	if !out.OK() {
		s.logger.Info("prediction rejected", "kind", kind, "error", out.Err)
		return out
	}
	s.logger.Debug("prediction served", "value", *out.Prediction, "features", out.Record.Vector())

	if len(s.sinks) == 0 {
		return out
	}
	p := types.Prediction{
		Time:         s.now(),
		Model:        s.info.Name,
		ModelVersion: s.info.Version,
		Inputs:       submittedValues(form),
		Features:     *out.Record,
		Value:        *out.Prediction,
	}
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, p); err != nil {
			metrics.ObserveSinkFailure(sink.Name())
			s.logger.Error("record prediction", "sink", sink.Name(), "error", err)
		}
	}
	return out
}

// submittedValues keeps the first value of each known form field.
func submittedValues(form url.Values) map[string]string {
	out := make(map[string]string, len(FormFields))
	for _, key := range FormFields {
		if vs, ok := form[key]; ok && len(vs) > 0 {
			out[key] = vs[0]
		}
	}
	return out
}
