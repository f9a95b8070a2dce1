package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kamanufred/reBLAST/logger"
)

var version = "0.1.0"

func main() {

	// Try load env
	dotenvErr := godotenv.Load()

	level := zapcore.InfoLevel
	if text := os.Getenv("REBLAST_LOG_LEVEL"); text != "" {
		if parsed, err := logger.ParseLevel(text); err == nil {
			level = parsed
		}
	}
	if err := logger.InitLogger(level); err != nil {
		panic(err)
	}
	defer logger.Sync() // Make sure that the buffered is flushed.

	if dotenvErr != nil {
		logger.Debug("No .env found, using local environment")
	}

	// SIGINT/SIGTERM cancel running BLAST processes; the workspace is still cleaned up.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Debug("Exiting with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
