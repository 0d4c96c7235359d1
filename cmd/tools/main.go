package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bikerental-server/internal/config"
	"bikerental-server/internal/db"
	"bikerental-server/internal/logging"
	"bikerental-server/internal/migrate"
	"bikerental-server/internal/modules/rental/repository"
)

const usage = `usage: %s <command> [flags]
  migrate          apply pending audit log migrations
  status           list migrations and whether they are applied
  export [-limit N] [-o file]
                   write the newest predictions as CSV (default stdout)
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if !cfg.AuditLogEnabled() {
		fmt.Fprintln(os.Stderr, "SQLITE_PATH is not set")
		os.Exit(1)
	}
	logger := logging.New(cfg, "dev", "bikerental-tools")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, cmd string, args []string, stdout io.Writer) error {
	switch cmd {
	case "migrate", "status", "export":
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	conn, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	switch cmd {
	case "migrate":
		n, err := migrate.Run(ctx, conn)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "%d migrations applied\n", n)
		return err

	case "status":
		migrations, err := migrate.Status(ctx, conn)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			state := "pending"
			if m.Applied {
				state = "applied"
			}
			if _, err := fmt.Fprintf(stdout, "%s_%s\t%s\n", m.Version, m.Name, state); err != nil {
				return err
			}
		}
		return nil

	default:
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		limit := fs.Int("limit", 1000, "number of newest predictions to export")
		out := fs.String("o", "", "output file (default stdout)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *limit <= 0 {
			return fmt.Errorf("-limit must be > 0")
		}

		predictions, err := repository.NewRepository(conn).GetRecentPredictions(ctx, *limit)
		if err != nil {
			return err
		}

		w := stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		if err := repository.WriteCSV(w, predictions); err != nil {
			return err
		}
		logger.Info("predictions exported", "count", len(predictions), "output", *out)
		return nil
	}
}
