package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sig-dashboard/internal/config"
	"sig-dashboard/internal/middleware"
	"sig-dashboard/internal/observability"
	"sig-dashboard/internal/server"
	"sig-dashboard/internal/services"
	"sig-dashboard/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	dataset := services.NewDataset(logger)

	switch {
	case cfg.Data.CSVFile != "":
		ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
		if _, err := dataset.LoadFile(ctx, cfg.Data.CSVFile); err != nil {
			cancel()
			logger.Error("failed to load CSV data", "file", cfg.Data.CSVFile, "error", err)
			os.Exit(1)
		}
		cancel()
		logger.Info("startup CSV loaded", "file", cfg.Data.CSVFile)
	case cfg.Data.AutoloadSample:
		if _, err := dataset.LoadSample(cfg.Data.SampleRecords, cfg.Data.SampleSeed); err != nil {
			logger.Error("failed to load sample data", "error", err)
			os.Exit(1)
		}
		logger.Info("sample dataset loaded", "records", cfg.Data.SampleRecords)
	default:
		logger.Info("starting without a dataset; waiting for an upload")
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(dataset, logger, templateHandlers, cfg.Data.MaxUploadBytes)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down dataset service")
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
