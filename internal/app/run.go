package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bikerental-server/internal/config"
	db "bikerental-server/internal/db"
	httpapi "bikerental-server/internal/httpapi"
	"bikerental-server/internal/metrics"
	"bikerental-server/internal/migrate"
	"bikerental-server/internal/model"
	rental "bikerental-server/internal/modules/rental"
	"bikerental-server/internal/modules/rental/service"
	"bikerental-server/internal/modules/rental/types"
	rentalviews "bikerental-server/internal/modules/rental/views"
	"bikerental-server/internal/mqtt"
)

const shutdownTimeout = 10 * time.Second

var newPublisher = mqtt.NewPublisher

// Run loads the model and serves the form until ctx is canceled.
// Model, template and database failures abort startup; an unreachable
// broker only disables event publishing until paho reconnects.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"modelPath", cfg.ModelPath,
		"metricsEnabled", cfg.MetricsEnabled,
		"sqlitePath", cfg.SQLitePath,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	m, err := model.Load(cfg.ModelPath, types.FeatureNames)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	logger.Info("model loaded", "name", m.Name(), "version", m.Version(), "kind", m.Kind())

	if err := rentalviews.LoadTemplates(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if err := metrics.Register(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		gatherer = reg
	}

	var dbConn *sql.DB
	if cfg.AuditLogEnabled() {
		dbConn, err = db.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(dbConn); closeErr != nil {
				logger.Error("db close", "error", closeErr)
			}
		}()
		n, err := migrate.Run(ctx, dbConn)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("audit log ready", "path", cfg.SQLitePath, "migrationsApplied", n)
	}

	var (
		events    service.Sink
		publisher *mqtt.Publisher
	)
	if cfg.EventsEnabled() {
		publisher = newPublisher(cfg, logger)
		defer publisher.Disconnect()
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing without events until reconnect)", "error", err)
		}
		events = publisher
	}

	mux := httpapi.NewMux(dbConn, m, gatherer)
	rental.RegisterFeature(mux, m, dbConn, events, logger)

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
