/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load configuration (env vars, optional config.yaml)
  2. Initialize structured logging
  3. Open the SQLite store
  4. Build the ledger service and HTTP router
  5. Serve with graceful shutdown

CONFIGURATION (IBANK_ prefix):
  IBANK_PORT     HTTP server port (default: 8080)
  IBANK_DB_PATH  SQLite database path (default: ibank.db, ":memory:" works)
  IBANK_APP_ENV  "dev" for human-readable logs, anything else for JSON

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  in-flight requests, close the database, exit.
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/deymer/ibank-ledger/api"
	"github.com/deymer/ibank-ledger/config"
	"github.com/deymer/ibank-ledger/ledger"
	"github.com/deymer/ibank-ledger/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Env)
	defer logger.Sync()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	svc := ledger.NewService(store)
	handler := api.NewHandler(svc, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("db", cfg.DBPath),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newLogger builds the zap logger for the environment: colored console
// output in dev, JSON to stdout otherwise.
func newLogger(env string) *zap.Logger {
	var zcfg zap.Config
	if env == "dev" || env == "qa" {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stdout"}
		zcfg.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
