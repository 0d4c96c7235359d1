package types

import "time"

// FeatureNames is the column order the model was trained on.
var FeatureNames = []string{
	"season",
	"yr",
	"mnth",
	"hr",
	"holiday",
	"weekday",
	"workingday",
	"weathersit",
	"temp",
	"hum",
	"windspeed",
	"day",
}

// FeatureRecord is one row of model input. Field order follows FeatureNames.
type FeatureRecord struct {
	Season     int     `json:"season"`
	Yr         int     `json:"yr"`
	Mnth       int     `json:"mnth"`
	Hr         int     `json:"hr"`
	Holiday    int     `json:"holiday"`
	Weekday    int     `json:"weekday"`
	Workingday int     `json:"workingday"`
	Weathersit int     `json:"weathersit"`
	Temp       float64 `json:"temp"`
	Hum        float64 `json:"hum"`
	Windspeed  float64 `json:"windspeed"`
	Day        int     `json:"day"`
}

// Vector returns the record as a positional row matching FeatureNames.
func (r FeatureRecord) Vector() []float64 {
	return []float64{
		float64(r.Season),
		float64(r.Yr),
		float64(r.Mnth),
		float64(r.Hr),
		float64(r.Holiday),
		float64(r.Weekday),
		float64(r.Workingday),
		float64(r.Weathersit),
		r.Temp,
		r.Hum,
		r.Windspeed,
		float64(r.Day),
	}
}

// Outcome is the result of one form evaluation: either Prediction is set or Err is.
type Outcome struct {
	Record     *FeatureRecord
	Prediction *float64
	Err        error
}

// OK reports whether the evaluation produced a prediction.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Prediction != nil
}

// Prediction is a stored, successful evaluation.
type Prediction struct {
	ID           int64             `json:"id"`
	Time         time.Time         `json:"time"`
	Model        string            `json:"model"`
	ModelVersion string            `json:"modelVersion"`
	Inputs       map[string]string `json:"inputs"`
	Features     FeatureRecord     `json:"features"`
	Value        float64           `json:"value"`
}
