package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"bikerental-server/internal/modules/rental/types"
)

const (
	tempScale      = 41.0
	humidityScale  = 100.0
	windspeedScale = 67.0
)

// FormFields lists the keys a submission must carry.
var FormFields = []string{
	"season", "yr", "mnth", "day", "hr", "weekday", "weathersit",
	"holiday", "workingday", "temp_c", "hum_percent", "windspeed",
}

var (
	// ErrInput marks failures caused by the submitted values.
	ErrInput = errors.New("invalid input")
	// ErrModel marks failures raised by the predictor.
	ErrModel = errors.New("prediction failed")
)

// FieldError describes a missing or malformed form field.
type FieldError struct {
	Field string
	Value string
	// Missing is set when the key was absent from the submission.
	Missing bool
	Err     error
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing field %q", e.Field)
	}
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Field, e.Err)
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInput}
	}
	return []error{ErrInput, e.Err}
}

// Predictor evaluates one feature row given in types.FeatureNames order.
type Predictor interface {
	Predict(ctx context.Context, row []float64) (float64, error)
}

// ParseFlag maps free-text yes/no answers to 1 or 0. It never fails.
func ParseFlag(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "y":
		return 1
	default:
		return 0
	}
}

// Normalize converts user units into the model's [0,1] scaled features.
func Normalize(tempC, humPercent, windspeed float64) (temp, hum, wind float64) {
	return tempC / tempScale, humPercent / humidityScale, windspeed / windspeedScale
}

// ParseForm builds a FeatureRecord from a submission.
func ParseForm(form url.Values) (types.FeatureRecord, error) {
	p := formParser{form: form}

	rec := types.FeatureRecord{
		Season:     p.intField("season"),
		Yr:         p.intField("yr"),
		Mnth:       p.intField("mnth"),
		Day:        p.intField("day"),
		Hr:         p.intField("hr"),
		Weekday:    p.intField("weekday"),
		Weathersit: p.intField("weathersit"),
		Holiday:    p.flagField("holiday"),
		Workingday: p.flagField("workingday"),
	}
	tempC := p.floatField("temp_c")
	humPercent := p.floatField("hum_percent")
	wind := p.floatField("windspeed")
	if p.err != nil {
		return types.FeatureRecord{}, p.err
	}

	rec.Temp, rec.Hum, rec.Windspeed = Normalize(tempC, humPercent, wind)
	return rec, nil
}

// Evaluate parses the submission and runs the predictor. Every failure is
// reported through Outcome.Err; Evaluate itself never fails.
func Evaluate(ctx context.Context, predictor Predictor, form url.Values) types.Outcome {
	rec, err := ParseForm(form)
	if err != nil {
		return types.Outcome{Err: err}
	}

	y, err := predictor.Predict(ctx, rec.Vector())
	if err != nil {
		return types.Outcome{Record: &rec, Err: fmt.Errorf("%w: %w", ErrModel, err)}
	}
	return types.Outcome{Record: &rec, Prediction: &y}
}

// formParser keeps the first failure; later lookups become no-ops.
type formParser struct {
	form url.Values
	err  error
}

func (p *formParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	vs, ok := p.form[key]
	if !ok || len(vs) == 0 {
		p.err = &FieldError{Field: key, Missing: true}
		return "", false
	}
	return vs[0], true
}

func (p *formParser) intField(key string) int {
	raw, ok := p.lookup(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.err = &FieldError{Field: key, Value: raw, Err: errors.New("expected an integer")}
		return 0
	}
	return n
}

func (p *formParser) floatField(key string) float64 {
	raw, ok := p.lookup(key)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		p.err = &FieldError{Field: key, Value: raw, Err: errors.New("expected a number")}
		return 0
	}
	// NaN is passed through as a missing value; infinities are rejected.
	if math.IsInf(f, 0) {
		p.err = &FieldError{Field: key, Value: raw, Err: errors.New("expected a finite number")}
		return 0
	}
	return f
}

func (p *formParser) flagField(key string) int {
	raw, ok := p.lookup(key)
	if !ok {
		return 0
	}
	return ParseFlag(raw)
}

// ErrorKind labels an evaluation failure for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInput):
		return "input_error"
	default:
		return "model_error"
	}
}
