package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jszwec/csvutil"

	"bikerental-server/internal/modules/rental/types"
)

type csvRow struct {
	ID           int64   `csv:"id"`
	Time         string  `csv:"time"`
	Model        string  `csv:"model"`
	ModelVersion string  `csv:"model_version"`
	Season       int     `csv:"season"`
	Yr           int     `csv:"yr"`
	Mnth         int     `csv:"mnth"`
	Hr           int     `csv:"hr"`
	Holiday      int     `csv:"holiday"`
	Weekday      int     `csv:"weekday"`
	Workingday   int     `csv:"workingday"`
	Weathersit   int     `csv:"weathersit"`
	Temp         float64 `csv:"temp"`
	Hum          float64 `csv:"hum"`
	Windspeed    float64 `csv:"windspeed"`
	Day          int     `csv:"day"`
	Prediction   float64 `csv:"prediction"`
}

// WriteCSV writes predictions with a header row, one line per prediction.
func WriteCSV(w io.Writer, predictions []types.Prediction) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(csvRow{}); err != nil {
		return fmt.Errorf("encode csv header: %w", err)
	}
	for _, p := range predictions {
		f := p.Features
		row := csvRow{
			ID:           p.ID,
			Time:         p.Time.UTC().Format(time.RFC3339),
			Model:        p.Model,
			ModelVersion: p.ModelVersion,
			Season:       f.Season,
			Yr:           f.Yr,
			Mnth:         f.Mnth,
			Hr:           f.Hr,
			Holiday:      f.Holiday,
			Weekday:      f.Weekday,
			Workingday:   f.Workingday,
			Weathersit:   f.Weathersit,
			Temp:         f.Temp,
			Hum:          f.Hum,
			Windspeed:    f.Windspeed,
			Day:          f.Day,
			Prediction:   p.Value,
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encode prediction %d: %w", p.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
