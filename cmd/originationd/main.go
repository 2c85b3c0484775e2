package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/origination/internal/application/assessment"
	"github.com/bibbank/origination/internal/application/stage"
	"github.com/bibbank/origination/internal/application/usecase"
	"github.com/bibbank/origination/internal/domain/port"
	"github.com/bibbank/origination/internal/infrastructure/adapter"
	"github.com/bibbank/origination/internal/infrastructure/config"
	"github.com/bibbank/origination/internal/infrastructure/memory"
	"github.com/bibbank/origination/internal/infrastructure/messaging"
	pgstore "github.com/bibbank/origination/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/bibbank/origination/internal/presentation/grpc"
	"github.com/bibbank/origination/internal/presentation/rest"
	"github.com/bibbank/origination/pkg/auth"
	pkgkafka "github.com/bibbank/origination/pkg/kafka"
	"github.com/bibbank/origination/pkg/observability"
	pkgpostgres "github.com/bibbank/origination/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: "json",
	})
	slog.SetDefault(logger)

	logger.Info("starting origination-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"event_backend", cfg.EventBackend,
		"document_backend", cfg.DocumentBackend,
	)

	// Tracing is best-effort; a missing collector must not block startup.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(ctx) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// Session store with TTL eviction.
	store := memory.NewSessionStore(cfg.Session.TTL, logger)
	go store.StartJanitor(ctx, cfg.Session.JanitorInterval)

	// Event publisher: Kafka in deployed environments, structured log locally.
	var publisher port.EventPublisher
	if cfg.EventBackend == "kafka" {
		producer := pkgkafka.NewProducer(pkgkafka.Config{
			Brokers: cfg.Kafka.Brokers,
		})
		defer producer.Close() //nolint:errcheck // best-effort close on shutdown
		publisher = messaging.NewKafkaPublisher(producer)
		logger.Info("publishing events to kafka", "brokers", cfg.Kafka.Brokers)
	} else {
		publisher = messaging.NewLogPublisher(logger)
	}

	// Document sink: durable postgres storage or in-memory for local runs.
	var sink port.DocumentSink
	if cfg.DocumentBackend == "postgres" {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		defer dbCancel()

		pgCfg := pkgpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
		}
		pool, poolErr := pkgpostgres.NewPool(dbCtx, pgCfg)
		if poolErr != nil {
			logger.Error("failed to connect to database", "error", poolErr)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("connected to database")

		if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://internal/infrastructure/persistence/postgres/migrations"); migErr != nil {
			logger.Warn("migration warning", "error", migErr)
		}

		sink = pgstore.NewDocumentStore(pool)
	} else {
		sink = memory.NewDocumentSink()
	}

	// Domain adapters. The registry, catalog and bureau are simulated
	// backends standing in for core banking and bureau integrations.
	registry := adapter.NewStubCustomerRegistry()
	catalog := adapter.NewStubOfferCatalog()
	bureau := adapter.NewCreditBureauAdapter(adapter.DefaultCreditBureauConfig(), nil)

	// Out-of-band assessment worker pool.
	worker := assessment.NewWorker(store, bureau, catalog, publisher, assessment.Config{
		Workers:   cfg.Assessment.Workers,
		QueueSize: cfg.Assessment.QueueSize,
		Delay:     cfg.Assessment.Delay,
	}, logger)
	worker.Start(ctx)

	handlers := usecase.StageHandlers{
		Welcome:        stage.Welcome{},
		Identification: stage.Identification{Registry: registry, Logger: logger},
		Sales:          stage.Sales{Catalog: catalog, Logger: logger},
		Verification: stage.Verification{
			MinMonthlyIncome: decimal.NewFromInt(cfg.MinMonthlyIncome),
			Logger:           logger,
		},
		Underwriting: stage.Underwriting{Logger: logger},
		Documents:    stage.Documents{Sink: sink, Logger: logger},
		Completed:    stage.Completed{},
	}

	submitUC := usecase.NewSubmitMessageUseCase(store, publisher, worker, handlers, logger)
	historyUC := usecase.NewGetHistoryUseCase(store)
	resetUC := usecase.NewResetSessionUseCase(store, publisher, logger)

	// JWT validation: public key preferred, HMAC secret as fallback. With
	// neither configured the gRPC surface runs unauthenticated.
	var jwtSvc *auth.JWTService
	jwtCfg := auth.JWTConfig{Issuer: cfg.Auth.Issuer}
	switch {
	case os.Getenv("JWT_PUBLIC_KEY") != "":
		jwtCfg.PublicKeyPEM = os.Getenv("JWT_PUBLIC_KEY")
	case os.Getenv("JWT_PUBLIC_KEY_FILE") != "":
		keyData, loadErr := auth.LoadKeyFromFile(os.Getenv("JWT_PUBLIC_KEY_FILE"))
		if loadErr != nil {
			logger.Error("failed to load JWT public key file", "error", loadErr)
			os.Exit(1)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	default:
		jwtCfg.Secret = cfg.Auth.JWTSecret
	}
	if jwtCfg.PublicKeyPEM != "" || jwtCfg.Secret != "" {
		jwtSvc, err = auth.NewJWTService(jwtCfg)
		if err != nil {
			logger.Error("failed to initialize JWT service", "error", err)
			os.Exit(1)
		}
	}

	// gRPC server.
	handler := grpcPresentation.NewConversationHandler(submitUC, historyUC, resetUC)
	grpcServer := grpcPresentation.NewServer(handler, logger, jwtSvc)

	// HTTP server: health probes and metrics.
	mux := http.NewServeMux()
	healthHandler := rest.NewHealthHandler(logger, map[string]rest.ReadyCheck{
		"session_store": func() error {
			_ = store.Len()
			return nil
		},
	})
	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Drain in-flight assessments before exit.
	cancel()
	worker.Wait()

	logger.Info("origination-service stopped")
}
