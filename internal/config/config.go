package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// ModelPath points at the JSON model artifact loaded once at startup.
	ModelPath      string
	MetricsEnabled bool

	// SQLitePath enables the prediction audit log when non-empty.
	SQLitePath            string
	SQLiteDriver          string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	SQLiteLogStatements   bool

	// MQTTBroker enables prediction event publishing when non-empty.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// AuditLogEnabled reports whether predictions are stored in SQLite.
func (c Config) AuditLogEnabled() bool { return c.SQLitePath != "" }

// EventsEnabled reports whether predictions are published over MQTT.
func (c Config) EventsEnabled() bool { return c.MQTTBroker != "" }

func LoadFromEnv() (Config, error) {
	appEnv := envString("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envString("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	metricsEnabled, err := envBool("METRICS_ENABLED", true)
	if err != nil {
		return Config{}, err
	}

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}

	connMaxLifetimeStr := envString("DB_CONN_MAX_LIFETIME", "0s")
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	logStatements, err := envBool("DB_LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %d (must be 1-65535)", mqttPort)
	}

	modelPath := envString("MODEL_PATH", "models/hgb_pipeline.json")

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              envString("HTTP_ADDR", "127.0.0.1:5001"),
		ModelPath:             modelPath,
		MetricsEnabled:        metricsEnabled,
		SQLitePath:            envString("SQLITE_PATH", ""),
		SQLiteDriver:          envString("DB_DRIVER", "sqlite3"),
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogStatements:   logStatements,
		MQTTBroker:            envString("MQTT_BROKER", ""),
		MQTTPort:              mqttPort,
		MQTTClientID:          envString("MQTT_CLIENT_ID", "bikerental-server"),
		MQTTTopic:             envString("MQTT_TOPIC", "bikerental/predictions"),
	}, nil
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
