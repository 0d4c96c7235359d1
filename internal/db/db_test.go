package db

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bikerental-server/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "empty", path: "", wantErr: true},
		{name: "memory", path: ":memory:", want: ":memory:"},
		{name: "file uri", path: "file:/data/app.db", want: "file:/data/app.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
		{name: "file uri with params", path: "file:/data/app.db?mode=ro", want: "file:/data/app.db?mode=ro&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
		{name: "plain path", path: filepath.Join(dir, "audit.db"), want: "file:" + filepath.Join(dir, "audit.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildDSN(%q) err = %v; wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("buildDSN(%q) = %q; want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestBuildDSN_createsParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "audit.db")
	if _, err := buildDSN(path); err != nil {
		t.Fatalf("buildDSN: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent dir not created: %v", err)
	}
}

func TestOpen(t *testing.T) {
	cfg := config.Config{
		SQLitePath:         filepath.Join(t.TempDir(), "audit.db"),
		SQLiteDriver:       "sqlite3",
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
	}

	conn, err := Open(context.Background(), cfg, slog.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = Close(conn) }()

	if got := conn.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d; want 1", got)
	}
	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q; want wal", mode)
	}
}

func TestOpen_loggingConnector(t *testing.T) {
	handler := &captureHandler{}
	cfg := config.Config{
		SQLitePath:          ":memory:",
		SQLiteDriver:        "sqlite3",
		SQLiteMaxOpenConns:  1,
		SQLiteLogStatements: true,
	}

	conn, err := Open(context.Background(), cfg, slog.New(handler))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = Close(conn) }()

	if _, err := conn.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if len(handler.recordsFor(t, "sql")) == 0 {
		t.Error("statement not logged with SQLiteLogStatements set")
	}
}

func TestOpen_unknownDriver(t *testing.T) {
	cfg := config.Config{SQLitePath: ":memory:", SQLiteDriver: "nope"}
	if _, err := Open(context.Background(), cfg, slog.Default()); err == nil {
		t.Fatal("Open with unknown driver = nil; want error")
	}
}

func TestClose_nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v; want nil", err)
	}
}
