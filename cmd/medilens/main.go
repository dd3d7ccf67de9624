package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/medilens/internal/adapter/driven/api"
	"github.com/ericfisherdev/medilens/internal/adapter/driven/geolocation"
	sqliteadapter "github.com/ericfisherdev/medilens/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/medilens/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/medilens/internal/adapter/driving/web"
	"github.com/ericfisherdev/medilens/internal/application"
	"github.com/ericfisherdev/medilens/internal/config"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env (optional) and configuration.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"env", cfg.Env,
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"api_base", cfg.APIBaseURL,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open local storage and migrate.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 4. Wire adapters.
	tokens := sqliteadapter.NewTokenRepo(db, cfg.SecretKey)
	client, err := api.NewClient(cfg.APIBaseURL, tokens, cfg.HTTPTimeout)
	if err != nil {
		return err
	}

	var source driven.PositionSource
	if cfg.HasDevicePosition() {
		source = geolocation.NewFixedSource(*cfg.DevicePosition, cfg.GeoPermitted)
		slog.Info("position source configured", "permitted", cfg.GeoPermitted)
	} else {
		slog.Info("no position source configured, coordinates must be entered manually")
	}

	// 5. Application services.
	locator := application.NewLocator(source, cfg.PositionOptions())
	go autoLocate(ctx, cfg.GeoAuto, locator, slog.Default())

	session := application.NewSession(client, tokens, cfg.SplashDuration)
	go session.RunSplash(ctx)

	analysisSvc := application.NewAnalysisService(client)

	// 6. HTTP surfaces.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(session, locator, analysisSvc, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(session, locator, analysisSvc, cfg.HasDevicePosition(), slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("medilens started", "listen_addr", cfg.ListenAddr)

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// autoLocate runs the startup location request when enabled. Without a
// position source the request settles on unsupported.
func autoLocate(ctx context.Context, enabled bool, locator *application.Locator, logger *slog.Logger) {
	if !enabled {
		return
	}
	state := locator.Request(ctx)
	logger.Info("auto location request finished", "status", state.Status)
}
