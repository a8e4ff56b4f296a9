package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	auth "github.com/loadline/authd"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(slogger)
	logger := auth.NewSlogLogger(slogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, slogger); err != nil {
		slogger.Error("service exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, logger auth.Logger, slogger *slog.Logger) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := auth.Migrate(ctx, db); err != nil {
		return err
	}

	users := auth.NewUsersRepository(db)
	provider := auth.NewUserProvider(users).WithLogger(logger)
	auther := auth.NewAuthenticator(provider, cfg).WithLogger(logger)

	controller := auth.NewAuthController(
		auth.WithUsers(users),
		auth.WithAuthenticator(auther),
		auth.WithControllerLogger(logger),
		auth.WithDebug(cfg.Debug),
		auth.WithHashCost(cfg.BcryptCost),
	)

	guard := auth.ProtectedRoute(cfg, auther.TokenService())

	app := fiber.New(fiber.Config{
		AppName:               "authd",
		DisableStartupMessage: !cfg.Debug,
	})

	auth.RegisterAuthRoutes(app, controller, guard)

	errCh := make(chan error, 1)
	go func() {
		slogger.Info("listening", "addr", cfg.Addr)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slogger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}

	return nil
}
