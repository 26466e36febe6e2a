// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/emberjournal/ember-backend/pkg/extensions"
	"github.com/emberjournal/ember-backend/pkg/logging"
	"github.com/emberjournal/ember-backend/services/personalization"
)

// envConfig is the environment-driven configuration surface for the
// personalization binary. An optional YAML file (PERSONALIZATION_CONFIG)
// provides the same keys; environment variables win.
type envConfig struct {
	Port              int           `yaml:"port" env:"PERSONALIZATION_PORT" env-default:"12310"`
	LLMBackend        string        `yaml:"llm_backend" env:"LLM_BACKEND" env-default:"none"`
	DataDir           string        `yaml:"data_dir" env:"PERSONALIZATION_DATA_DIR"`
	OTelEndpoint      string        `yaml:"otel_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	EnableTracing     bool          `yaml:"enable_tracing" env:"ENABLE_TRACING" env-default:"false"`
	GinMode           string        `yaml:"gin_mode" env:"GIN_MODE"`
	RateLimitCapacity int           `yaml:"rate_limit_capacity" env:"RATE_LIMIT_CAPACITY"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window" env:"RATE_LIMIT_WINDOW"`
	SweepInterval     time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
	ProviderTimeout   time.Duration `yaml:"provider_timeout" env:"PROVIDER_TIMEOUT"`
	JWTSecret         string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTIssuer         string        `yaml:"jwt_issuer" env:"JWT_ISSUER"`
	LogLevel          string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogDir            string        `yaml:"log_dir" env:"LOG_DIR"`
}

func loadConfig() (envConfig, error) {
	var cfg envConfig
	if path := os.Getenv("PERSONALIZATION_CONFIG"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		Service: "personalization",
		LogDir:  cfg.LogDir,
		JSON:    true,
	})
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	opts := extensions.DefaultOptions()
	if cfg.JWTSecret != "" {
		provider, err := extensions.NewJWTAuthProvider(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			log.Fatalf("failed to create JWT auth provider: %v", err)
		}
		opts.AuthProvider = provider
		slog.Info("JWT authentication enabled", "issuer", cfg.JWTIssuer)
	} else {
		slog.Warn("JWT_SECRET not set, all requests map to local-user (development only)")
	}

	svc, err := personalization.New(personalization.Config{
		Port:              cfg.Port,
		LLMBackend:        cfg.LLMBackend,
		DataDir:           cfg.DataDir,
		OTelEndpoint:      cfg.OTelEndpoint,
		EnableTracing:     cfg.EnableTracing,
		GinMode:           cfg.GinMode,
		RateLimitCapacity: cfg.RateLimitCapacity,
		RateLimitWindow:   cfg.RateLimitWindow,
		SweepInterval:     cfg.SweepInterval,
		ProviderTimeout:   cfg.ProviderTimeout,
	}, &opts)
	if err != nil {
		log.Fatalf("failed to create personalization service: %v", err)
	}

	if err := svc.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
