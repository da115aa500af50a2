package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/legal-dossier/internal/adapters/http"
	"github.com/kirillkom/legal-dossier/internal/bootstrap"
	"github.com/kirillkom/legal-dossier/internal/config"
	"github.com/kirillkom/legal-dossier/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewJSONLogger("api", "info").Error("config.load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap.failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, httpadapter.Services{
		Documents:  app.Services.Documents,
		Cases:      app.Services.Cases,
		Sync:       app.Services.Sync,
		CauseLists: app.Services.CauseLists,
		Backup:     app.Services.Backup,
		Settings:   app.Services.Settings,
		Cloud:      app.Services.Cloud,
		Indexer:    app.Services.Indexer,
		Assistant:  app.Services.Assistant,
	})
	if app.HTTPMetrics != nil {
		router = router.WithMetrics(app.HTTPMetrics)
	}

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api.listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api.server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api.shutdown_failed", "error", err)
	}
	if err := app.Scheduler.Close(shutdownCtx); err != nil {
		logger.Warn("pipeline.shutdown_interrupted", "error", err)
	}
}
