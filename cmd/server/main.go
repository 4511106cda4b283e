// Command server runs the launchpad tokenomics engine behind its REST API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	app "github.com/curvelaunch/launchpad/internal/app"
	"github.com/curvelaunch/launchpad/internal/app/httpapi"
	"github.com/curvelaunch/launchpad/internal/app/storage/postgres"
	"github.com/curvelaunch/launchpad/internal/config"
	"github.com/curvelaunch/launchpad/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to launchpad.yaml (defaults to config/launchpad.yaml)")
	flag.Parse()

	log := logger.NewDefault("server")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("load .env")
	}

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.LoadFromPath(*configPath)
		if err != nil {
			log.WithError(err).Error("load config")
			os.Exit(1)
		}
		if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
			loaded.DatabaseURL = dsn
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	stores := app.Stores{}
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Error("open database")
			os.Exit(1)
		}
		defer db.Close()

		store := postgres.New(db)
		if err := store.Migrate(context.Background()); err != nil {
			log.WithError(err).Error("migrate database")
			os.Exit(1)
		}
		stores = app.Stores{
			Projects:   store,
			Holdings:   store,
			Offers:     store,
			Governance: store,
		}
		log.Info("using postgres storage")
	} else {
		log.Info("DATABASE_URL not set; using in-memory storage")
	}

	application, err := app.New(stores, cfg, log)
	if err != nil {
		log.WithError(err).Error("build application")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("start application")
		os.Exit(1)
	}

	handler := httpapi.WithRateLimit(httpapi.NewHandler(application), cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application shutdown")
	}
}
