package rental

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"bikerental-server/internal/migrate"
	"bikerental-server/internal/model"
	"bikerental-server/internal/modules/rental/types"
	"bikerental-server/internal/modules/rental/views"
)

type recordingSink struct {
	mu  sync.Mutex
	got []types.Prediction
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Record(_ context.Context, p types.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, p)
	return nil
}

func loadModel(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.Load("../../../models/hgb_pipeline.json", types.FeatureNames)
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	return m
}

func exampleForm() url.Values {
	return url.Values{
		"season": {"1"}, "yr": {"1"}, "mnth": {"6"}, "day": {"15"},
		"hr": {"17"}, "weekday": {"3"}, "weathersit": {"1"},
		"holiday": {"no"}, "workingday": {"yes"},
		"temp_c": {"20.5"}, "hum_percent": {"60"}, "windspeed": {"10"},
	}
}

func post(mux *http.ServeMux, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRegisterFeature_endToEnd(t *testing.T) {
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer func() { _ = db.Close() }()
	if _, err := migrate.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	events := &recordingSink{}
	mux := http.NewServeMux()
	RegisterFeature(mux, loadModel(t), db, events, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := post(mux, exampleForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("POST / status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "469.46") {
		t.Fatalf("POST / body missing prediction; got %q", body)
	}

	bad := exampleForm()
	bad.Del("hr")
	if rec := post(mux, bad); !strings.Contains(rec.Body.String(), `missing field &#34;hr&#34;`) {
		t.Errorf("missing hr not reported; got %q", rec.Body.String())
	}

	if len(events.got) != 1 || events.got[0].Value < 469.45 || events.got[0].Value > 469.47 {
		t.Errorf("events = %+v; want one successful prediction", events.got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/predictions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/predictions status = %d", rec.Code)
	}
	var stored []types.Prediction
	if err := json.NewDecoder(rec.Body).Decode(&stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stored) != 1 || stored[0].Model != "hgb_pipeline" || stored[0].Features.Workingday != 1 {
		t.Errorf("stored = %+v; want the one successful prediction", stored)
	}
}

func TestRegisterFeature_withoutOptionalSinks(t *testing.T) {
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	mux := http.NewServeMux()
	RegisterFeature(mux, loadModel(t), nil, nil, nil)

	if rec := post(mux, exampleForm()); !strings.Contains(rec.Body.String(), "469.46") {
		t.Errorf("POST / body missing prediction")
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/predictions", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("history endpoint status = %d; want 404 without a database", rec.Code)
	}
}
