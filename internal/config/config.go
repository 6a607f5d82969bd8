package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Alert processing
	CheckInterval    time.Duration
	MaxJobsPerDigest int
	MailHourlyBudget int

	// SMTP delivery; when SMTPAddr is empty digests go to the log notifier
	SMTPAddr     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		CheckInterval:    time.Hour,
		MaxJobsPerDigest: 5,
		MailHourlyBudget: 100,
		LogLevel:         "info",
		RedisDB:          0,
	}

	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	} else {
		cfg.RedisAddr = "localhost:6379"
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		db, err := strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if interval := os.Getenv("CHECK_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid CHECK_INTERVAL: %w", err)
		}
		cfg.CheckInterval = d
	}

	if maxJobs := os.Getenv("MAX_JOBS_PER_DIGEST"); maxJobs != "" {
		n, err := strconv.Atoi(maxJobs)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_JOBS_PER_DIGEST: %w", err)
		}
		cfg.MaxJobsPerDigest = n
	}

	if budget := os.Getenv("MAIL_HOURLY_BUDGET"); budget != "" {
		n, err := strconv.Atoi(budget)
		if err != nil {
			return nil, fmt.Errorf("invalid MAIL_HOURLY_BUDGET: %w", err)
		}
		cfg.MailHourlyBudget = n
	}

	cfg.SMTPAddr = os.Getenv("SMTP_ADDR")
	cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is empty")
	}

	if c.CheckInterval < time.Minute {
		return fmt.Errorf("check interval too small: %v", c.CheckInterval)
	}

	if c.MaxJobsPerDigest < 1 || c.MaxJobsPerDigest > 10 {
		return fmt.Errorf("max jobs per digest must be between 1 and 10")
	}

	if c.MailHourlyBudget < 1 {
		return fmt.Errorf("mail hourly budget must be positive")
	}

	if c.SMTPAddr != "" && c.SMTPFrom == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_ADDR is set")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
