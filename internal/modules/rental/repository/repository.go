package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"bikerental-server/internal/modules/rental/types"
)

//go:embed sql/insert-prediction.sql
var insertPredictionSQL string

//go:embed sql/get-recent-predictions.sql
var getRecentPredictionsSQL string

//go:embed sql/count-predictions.sql
var countPredictionsSQL string

// tsLayout is fixed width so that ts sorts chronologically as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type PredictionRepository interface {
	InsertPrediction(ctx context.Context, p types.Prediction) (int64, error)
	GetRecentPredictions(ctx context.Context, limit int) ([]types.Prediction, error)
	CountPredictions(ctx context.Context) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) PredictionRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertPrediction(ctx context.Context, p types.Prediction) (int64, error) {
	inputs, err := json.Marshal(p.Inputs)
	if err != nil {
		return 0, fmt.Errorf("marshal inputs: %w", err)
	}
	if p.Time.IsZero() {
		p.Time = time.Now()
	}
	f := p.Features
	res, err := r.db.ExecContext(ctx, insertPredictionSQL,
		p.Time.UTC().Format(tsLayout), p.Model, p.ModelVersion, string(inputs),
		f.Season, f.Yr, f.Mnth, f.Hr, f.Holiday, f.Weekday, f.Workingday, f.Weathersit,
		f.Temp, f.Hum, f.Windspeed, f.Day,
		p.Value,
	)
	if err != nil {
		return 0, fmt.Errorf("insert prediction: %w", err)
	}
	return res.LastInsertId()
}

func (r *repositoryImpl) GetRecentPredictions(ctx context.Context, limit int) ([]types.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, getRecentPredictionsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close predictions rows", "error", err)
		}
	}()

	out := []types.Prediction{}
	for rows.Next() {
		var (
			p      types.Prediction
			ts     string
			inputs string
		)
		f := &p.Features
		if err := rows.Scan(
			&p.ID, &ts, &p.Model, &p.ModelVersion, &inputs,
			&f.Season, &f.Yr, &f.Mnth, &f.Hr, &f.Holiday, &f.Weekday, &f.Workingday, &f.Weathersit,
			&f.Temp, &f.Hum, &f.Windspeed, &f.Day,
			&p.Value,
		); err != nil {
			return nil, err
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", p.ID, err)
		}
		p.Time = t
		if err := json.Unmarshal([]byte(inputs), &p.Inputs); err != nil {
			return nil, fmt.Errorf("prediction %d: decode inputs: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func parseTimestamp(ts string) (time.Time, error) {
	t, errNano := time.Parse(time.RFC3339Nano, ts)
	if errNano == nil {
		return t, nil
	}
	t, errSec := time.Parse(time.RFC3339, ts)
	if errSec != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", ts, errNano, errSec)
	}
	return t, nil
}

func (r *repositoryImpl) CountPredictions(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countPredictionsSQL).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Sink stores successful predictions in the audit log.
type Sink struct {
	repo PredictionRepository
}

func NewSink(repo PredictionRepository) *Sink {
	return &Sink{repo: repo}
}

func (s *Sink) Name() string { return "sqlite" }

func (s *Sink) Record(ctx context.Context, p types.Prediction) error {
	_, err := s.repo.InsertPrediction(ctx, p)
	return err
}
