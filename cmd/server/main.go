package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/sheetmap/internal/config"
	"github.com/JonMunkholm/sheetmap/internal/core"
	_ "github.com/JonMunkholm/sheetmap/internal/core/datasets" // Register all datasets
	"github.com/JonMunkholm/sheetmap/internal/logging"
	"github.com/JonMunkholm/sheetmap/internal/web"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	service, err := core.NewService(core.ServiceConfig{
		SheetName:     cfg.Export.SheetName,
		DateFormat:    cfg.Export.DateFormat,
		TableStyle:    core.TableStyle(cfg.Export.TableStyleName()),
		RowHeight:     cfg.Export.RowHeight,
		HeaderFont:    cfg.Export.HeaderFont,
		StrictMerge:   cfg.Export.StrictMerge,
		Validate:      cfg.Import.Validate,
		MaxConcurrent: cfg.Limits.MaxConcurrent,
		MaxWait:       cfg.Limits.MaxWaitTime,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("datasets registered",
		"count", core.DatasetCount(),
		"groups", len(core.Groups()),
	)

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests, then wait for conversions already admitted
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for conversions to complete", "active", status.Active)
			if err := service.WaitForConversions(shutdownCtx); err != nil {
				slog.Warn("conversions did not complete in time", "error", err)
			} else {
				slog.Info("all conversions completed")
			}
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
