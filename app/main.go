package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/alert-comb/app/alert"
	"github.com/lysyi3m/alert-comb/app/api"
	"github.com/lysyi3m/alert-comb/app/cfg"
	"github.com/lysyi3m/alert-comb/app/database"
	"github.com/lysyi3m/alert-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Alert Comb server", "version", appCfg.Version)

	// Database connection: an unusable store is fatal at startup, the
	// service must not serve traffic without it.
	slog.Info("Connecting to database")
	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	slog.Info("Migrations applied", "version", version, "dirty", dirty)

	if err := database.SeedEmojiTables(db); err != nil {
		slog.Warn("Failed to seed emoji tables", "error", err)
	}

	// Initialize core components
	alertRepo := database.NewAlertRepository(db)
	httpClient := &http.Client{}
	normalizer := alert.NewNormalizer()
	enricher := alert.NewEnricher(httpClient, appCfg.UserAgent)

	// Initialize and start the poller
	slog.Info("Starting background scheduler",
		"poll_interval", appCfg.PollInterval, "workers", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(alertRepo, httpClient, enricher, normalizer)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	apiHandler := api.NewHandler(alertRepo, normalizer)
	server := api.NewServer(apiHandler, appCfg.AdminAPIKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Alert Comb server started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Alert Comb server shutdown complete")
}
