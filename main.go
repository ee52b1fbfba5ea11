package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/matchpoint/internal/config"
	"github.com/msomdec/matchpoint/internal/domain"
	"github.com/msomdec/matchpoint/internal/handler"
	"github.com/msomdec/matchpoint/internal/media"
	"github.com/msomdec/matchpoint/internal/repository/postgres"
	"github.com/msomdec/matchpoint/internal/repository/sqlite"
	"github.com/msomdec/matchpoint/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	level := new(slog.LevelVar)
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "driver", cfg.DBDriver)

	hasher := service.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	authService := service.NewAuthService(db.Users(), db.Sessions(), hasher, cfg.JWTSecret, cfg.TokenTTL)

	var resolver service.PhotoURLResolver
	if cfg.S3Enabled() {
		r, err := media.NewResolver(ctx, media.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			URLTTL:    cfg.S3URLTTL,
		})
		if err != nil {
			slog.Error("failed to configure photo storage", "error", err)
			os.Exit(1)
		}
		resolver = r
		slog.Info("presigning photo URLs", "bucket", cfg.S3Bucket)
	}
	profileService := service.NewProfileService(db.Users(), db.Photos(), resolver)

	var limiter handler.Limiter
	if cfg.AuthRateBurst > 0 {
		limiter = service.NewTokenBucket(ctx, cfg.AuthRatePerSecond(), float64(cfg.AuthRateBurst))
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, profileService, db, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Wrap(mux, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		authService.RunSessionJanitor(gctx, cfg.SessionSweep)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openDatabase(ctx context.Context, cfg *config.Config) (domain.Database, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return sqlite.New(cfg.DatabasePath)
	default:
		return postgres.New(ctx, cfg.PostgresDSN(), cfg.DBPoolSize)
	}
}
