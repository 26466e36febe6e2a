// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package personalization provides the personalization and resilient
// generation service for Ember.
//
// The service coordinates all components behind the HTTP surface:
// per-user admission control, journal statistics, prompt policy, the
// generation cascade, the embedded record store, and observability
// infrastructure.
//
// # Usage
//
//	cfg := personalization.Config{Port: 12310, LLMBackend: "openai"}
//	svc, err := personalization.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
//
// Custom authentication is injected via extensions.ServiceOptions; the
// default NopAuthProvider is for local development only.
package personalization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emberjournal/ember-backend/pkg/extensions"
	"github.com/emberjournal/ember-backend/services/llm"
	"github.com/emberjournal/ember-backend/services/personalization/datatypes"
	"github.com/emberjournal/ember-backend/services/personalization/generation"
	"github.com/emberjournal/ember-backend/services/personalization/handlers"
	"github.com/emberjournal/ember-backend/services/personalization/observability"
	"github.com/emberjournal/ember-backend/services/personalization/ratelimit"
	"github.com/emberjournal/ember-backend/services/personalization/routes"
	"github.com/emberjournal/ember-backend/services/personalization/store"
)

// Service defines the contract for the personalization service.
//
// Run() blocks and should only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	Router() *gin.Engine
}

// Config holds personalization service configuration. All fields have
// defaults applied by New().
type Config struct {
	// Port is the HTTP server port. Default: 12310.
	Port int

	// LLMBackend selects the generation provider.
	// Valid values: "openai", "claude", "anthropic", "none".
	// Default: "none" (every request uses the local fallback).
	LLMBackend string

	// DataDir is the directory for the embedded record store. If
	// empty, an in-memory store is used and records do not survive a
	// restart.
	DataDir string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "ember-otel-collector:4317".
	OTelEndpoint string

	// EnableTracing controls OTLP trace export. Default: false (the
	// service runs fine without a collector).
	EnableTracing bool

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	GinMode string

	// RateLimitCapacity is the free-tier request cap per window.
	// Default: 10.
	RateLimitCapacity int

	// RateLimitWindow is the admission window length. Default: 24h.
	RateLimitWindow time.Duration

	// SweepInterval is how often expired admission windows are
	// evicted. Default: 1 hour.
	SweepInterval time.Duration

	// ProviderTimeout bounds the single provider call. Default: 12s.
	ProviderTimeout time.Duration

	// ShutdownGrace bounds graceful shutdown. Default: 10s.
	ShutdownGrace time.Duration
}

type service struct {
	config        Config
	opts          extensions.ServiceOptions
	router        *gin.Engine
	store         store.Store
	limiter       *ratelimit.Limiter
	sweeper       *ratelimit.Sweeper
	orchestrator  *generation.Orchestrator
	llmClient     llm.LLMClient
	metrics       *observability.Metrics
	tracerCleanup func(context.Context)
}

// New creates a personalization Service with the given configuration.
// If opts is nil, DefaultOptions() is used (NopAuthProvider).
func New(cfg Config, opts *extensions.ServiceOptions) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	if opts != nil {
		s.opts = *opts
	} else {
		s.opts = extensions.DefaultOptions()
	}
	s.opts = s.opts.Normalize()

	if s.config.EnableTracing {
		cleanup, err := s.initTracer()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		s.tracerCleanup = cleanup
	}

	// Reuse the singleton when a previous instance registered the
	// metrics; re-registration panics.
	if observability.DefaultMetrics == nil {
		observability.InitMetrics()
	}
	s.metrics = observability.DefaultMetrics

	if err := s.initStore(); err != nil {
		return nil, fmt.Errorf("failed to initialize record store: %w", err)
	}

	s.initLimiter()
	s.initLLMClient()

	if err := s.initOrchestrator(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize generation cascade: %w", err)
	}

	s.initRouter()

	return s, nil
}

// Run starts the sweeper and HTTP server and blocks until a shutdown
// signal or server error. Cleanup is automatic on return.
func (s *service) Run() error {
	defer s.cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start rate limit sweeper: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting personalization server", "port", s.config.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down personalization server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *service) Router() *gin.Engine {
	return s.router
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12310
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "none"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "ember-otel-collector:4317"
	}
	if cfg.RateLimitCapacity == 0 {
		cfg.RateLimitCapacity = ratelimit.DefaultConfig().Capacity
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = ratelimit.DefaultConfig().Window
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = ratelimit.DefaultSweeperConfig().Interval
	}
	if cfg.ProviderTimeout == 0 {
		cfg.ProviderTimeout = generation.DefaultProviderTimeout
	}
	if cfg.ShutdownGrace == 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	return cfg
}

// initTracer sets up OTLP trace export to the configured collector.
// Uses an insecure gRPC connection, appropriate for internal networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("personalization-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initStore opens the embedded record store, or an in-memory one when
// no data directory is configured.
func (s *service) initStore() error {
	if s.config.DataDir == "" {
		slog.Info("No data directory configured, using in-memory record store")
		s.store = store.NewMemoryStore()
		return nil
	}

	badgerStore, err := store.OpenBadger(store.DefaultBadgerConfig(s.config.DataDir))
	if err != nil {
		return err
	}
	s.store = badgerStore
	slog.Info("Record store opened", "data_dir", s.config.DataDir)
	return nil
}

func (s *service) initLimiter() {
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{
		Capacity: s.config.RateLimitCapacity,
		Window:   s.config.RateLimitWindow,
	}, func(ctx context.Context, userID string) (datatypes.Tier, error) {
		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			return "", err
		}
		return user.Tier, nil
	})
	s.sweeper = ratelimit.NewSweeper(s.limiter, ratelimit.SweeperConfig{
		Interval: s.config.SweepInterval,
	})
}

// initLLMClient creates the provider client for the configured backend.
// A missing credential is not fatal: the service runs in fallback-only
// mode and every request is answered by the local template path.
func (s *service) initLLMClient() {
	var err error

	switch s.config.LLMBackend {
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
	case "claude", "anthropic":
		s.llmClient, err = llm.NewAnthropicClient()
	case "none":
		slog.Info("No LLM backend configured, running in fallback-only mode")
		return
	default:
		slog.Warn("Unknown LLM backend, running in fallback-only mode",
			"backend", s.config.LLMBackend)
		return
	}

	if err != nil {
		slog.Warn("LLM client initialization failed, running in fallback-only mode",
			"backend", s.config.LLMBackend, "error", err)
		s.llmClient = nil
		return
	}
	slog.Info("LLM client initialized", "backend", s.config.LLMBackend)
}

func (s *service) initOrchestrator() error {
	templates, err := generation.LoadTemplates()
	if err != nil {
		return err
	}
	s.orchestrator = generation.New(s.llmClient, templates,
		generation.WithTimeout(s.config.ProviderTimeout),
		generation.WithMetrics(s.metrics))
	return nil
}

func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("personalization-service"))

	deps := handlers.Deps{
		Users:        s.store,
		Entries:      s.store,
		Limiter:      s.limiter,
		Orchestrator: s.orchestrator,
		Metrics:      s.metrics,
	}
	routes.SetupRoutes(s.router, deps, s.opts)
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.sweeper != nil {
		if err := s.sweeper.Stop(); err != nil {
			slog.Warn("Sweeper stop error", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("Record store close error", "error", err)
		}
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}
