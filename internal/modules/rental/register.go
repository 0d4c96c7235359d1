package rental

import (
	"database/sql"
	"log/slog"
	"net/http"

	"bikerental-server/internal/model"
	"bikerental-server/internal/modules/rental/controller"
	"bikerental-server/internal/modules/rental/repository"
	"bikerental-server/internal/modules/rental/service"
)

// RegisterFeature wires the prediction form onto mux. db and events are
// optional: a nil db disables the audit log and its endpoints, a nil events
// sink disables publishing.
func RegisterFeature(mux *http.ServeMux, m *model.Model, db *sql.DB, events service.Sink, logger *slog.Logger) {
	var (
		sinks []service.Sink
		repo  repository.PredictionRepository
	)
	if db != nil {
		repo = repository.NewRepository(db)
		sinks = append(sinks, repository.NewSink(repo))
	}
	if events != nil {
		sinks = append(sinks, events)
	}

	info := service.ModelInfo{Name: m.Name(), Version: m.Version()}
	rentalService := service.NewService(m, info, logger, sinks...)
	rentalController := controller.NewRentalController(rentalService, repo)
	rentalController.RegisterRoutes(mux)
}
