package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/database"
	"shg-service/internal/handler"
	"shg-service/internal/metrics"
	"shg-service/internal/repository"
	"shg-service/internal/service"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}

	// Connect to database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database, log); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	appMetrics := metrics.New()

	// Initialize repositories
	repos := repository.NewRepository(db)

	// Initialize services
	services := service.NewService(service.Dependencies{
		Repos:   repos,
		Logger:  log,
		Config:  cfg,
		Metrics: appMetrics,
	})

	// Initialize handlers
	handlers := handler.NewHandler(handler.Dependencies{
		Services: services,
		Logger:   log,
		Config:   cfg,
		Metrics:  appMetrics,
	})

	// Configure and start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handlers.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server gracefully stopped")
}
