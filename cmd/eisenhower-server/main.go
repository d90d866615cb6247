package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/eisenhower/internal/config"
	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/storage"
	"github.com/existflow/eisenhower/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.FilePath = cfg.LogFile
	logCfg.Console = true
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, storage.Options{
		Driver:     cfg.StorageDriver,
		DSN:        cfg.StorageDSN,
		Passphrase: cfg.Passphrase,
		Breaker:    cfg.Breaker,
	})
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	srv := server.New(store)
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error closing server", logger.F("error", err))
		}
	}()

	go func() {
		logger.Info("Eisenhower server starting",
			logger.F("addr", cfg.ServerAddr),
			logger.F("driver", cfg.StorageDriver))
		if err := srv.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", logger.F("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", logger.F("error", err))
	}
	logger.Info("Server stopped")
}
