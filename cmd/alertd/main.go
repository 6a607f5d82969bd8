package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"job-alert-engine/internal/config"
	"job-alert-engine/internal/logger"
	"job-alert-engine/internal/match"
	"job-alert-engine/internal/notify"
	"job-alert-engine/internal/scheduler"
	"job-alert-engine/internal/storage/postgres"
	"job-alert-engine/internal/storage/redis"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Local development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting job alert daemon",
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("check_interval", cfg.CheckInterval),
	)

	log.Info("connecting to PostgreSQL...")
	store, err := postgres.New(cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("connecting to Redis...")
	cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer cache.Close()

	var notifier notify.Notifier
	if cfg.SMTPAddr != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword, log)
		log.Info("using SMTP notifier", zap.String("addr", cfg.SMTPAddr))
	} else {
		notifier = notify.NewLogNotifier(log)
		log.Info("SMTP not configured, digests go to the log")
	}

	processor := match.NewProcessor(store, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	checker := scheduler.New(processor, store, cache, notifier, cfg, log)
	if err := checker.Start(ctx); err != nil {
		log.Fatal("failed to start alert checker", zap.Error(err))
	}

	log.Info("daemon is running...")

	<-ctx.Done()

	log.Info("shutting down gracefully...")
	checker.Stop()
	log.Info("daemon stopped")
}
