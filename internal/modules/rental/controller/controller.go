package controller

import (
	"context"
	"net/http"
	"net/url"

	"bikerental-server/internal/modules/rental/repository"
	"bikerental-server/internal/modules/rental/service"
	"bikerental-server/internal/modules/rental/types"
)

// Evaluator turns a form submission into an outcome.
type Evaluator interface {
	Predict(ctx context.Context, form url.Values) types.Outcome
	Info() service.ModelInfo
}

type RentalController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type rentalControllerImpl struct {
	evaluator  Evaluator
	repository repository.PredictionRepository
}

// NewRentalController builds the form controller. repo may be nil when the
// audit log is disabled; the history endpoints are then not registered.
func NewRentalController(evaluator Evaluator, repo repository.PredictionRepository) RentalController {
	return &rentalControllerImpl{evaluator: evaluator, repository: repo}
}

func (c *rentalControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleIndex)
	mux.HandleFunc("POST /", c.handlePredict)

	if c.repository == nil {
		return
	}
	mux.HandleFunc("GET /api/v1/predictions", c.handleRecent)
	mux.HandleFunc("GET /api/v1/predictions.csv", c.handleExportCSV)
}
