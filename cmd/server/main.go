// Package main provides the HTTP server for the vehicle match engine.
// It serves profile capture, quiz scoring, ranking and catalog management.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"vehicle-match-engine/internal/app"
	"vehicle-match-engine/internal/config"
	"vehicle-match-engine/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create app", utils.Error(err))
	}
	defer a.Close()

	if err := a.OpenProfiles(ctx); err != nil {
		logger.Fatal("Failed to open profile store", utils.Error(err))
	}
	if err := a.LoadCatalog(ctx); err != nil {
		logger.Warn("Starting with an empty catalog", utils.Error(err))
	}
	if err := a.LoadReviews(); err != nil {
		logger.Warn("Review summaries unavailable", utils.Error(err))
	}

	mux := a.API(ctx).Routes()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", utils.Error(err))
		}
	}()

	logger.Info("Vehicle match engine API server",
		utils.String("addr", addr),
		utils.String("stage", cfg.Stage),
		utils.Int("vehicles", a.Catalog.Len()))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", utils.Error(err))
	}
	logger.Info("Server stopped")
}
