package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/samims/notifier/internal/config"
	"github.com/samims/notifier/internal/handler"
	"github.com/samims/notifier/internal/kafka"
	"github.com/samims/notifier/internal/logger"
	"github.com/samims/notifier/internal/metrics"
	"github.com/samims/notifier/internal/router"
	"github.com/samims/notifier/internal/scheduler"
	"github.com/samims/notifier/internal/service"
	"github.com/samims/notifier/internal/store"
	"github.com/samims/notifier/pkg/observability"
)

func main() {
	// Load configuration from environment variables and exit on error.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l := logger.NewLogger(cfg.AppCfg.LogLevel)
	slog.SetDefault(l)

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerShutdown, err := observability.NewTracerProvider(ctx, observability.Options{
		Enabled:           cfg.TracingConfig.Enabled,
		ServiceName:       cfg.AppCfg.ServiceName + "-worker",
		ServiceVersion:    cfg.TracingConfig.ServiceVersion,
		CollectorEndpoint: cfg.TracingConfig.OTLPExporterEndpoint,
	}, l)
	if err != nil {
		l.Error("Failed to initialize OpenTelemetry TracerProvider", slog.Any("err", err))
		os.Exit(1)
	}
	defer tracerShutdown()

	// --- Dependency Injection Setup ---

	notifStore, closeStore, err := store.Open(ctx, cfg.DBConfig)
	if err != nil {
		l.Error("Failed to open notification store", slog.String("driver", cfg.DBConfig.Driver), slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStore()

	dc := cfg.DeliveryConfig
	failure := service.NewRandomFailure(dc.SimulatedFailureRate, rand.New(rand.NewSource(time.Now().UnixNano())))
	sender := service.NewSimulatedSender(dc.SimulatedSendDuration, failure, l)

	// One processor shared by both drivers; the store arbitrates between them.
	processor := service.NewDeliveryProcessor(notifStore, sender, dc.MaxRetryAttempts, l)
	retryScheduler := scheduler.NewRetryScheduler(
		notifStore,
		processor,
		dc.RetrySweepInterval,
		dc.MaxRetryAttempts,
		dc.RetrySweepWorkers,
		l,
	)

	consumerGroup, err := kafka.NewConsumerGroup(
		cfg.ConsumerConfig.KafkaBrokers,
		cfg.ConsumerConfig.KafkaConsumerGroup,
		cfg.ConsumerConfig.KafkaClientID+"-worker",
	)
	if err != nil {
		l.Error("Failed to create Kafka consumer group", "error", err)
		os.Exit(1)
	}
	consumer := kafka.NewKafkaConsumer(cfg.ConsumerConfig.KafkaTopic, consumerGroup, processor, l)

	hServer := &http.Server{
		Addr:    ":" + cfg.AppCfg.Port,
		Handler: router.NewWorkerRouter(handler.NewHealthHandler(service.NewHealthService(notifStore, l), l)),
	}

	// Use a WaitGroup to gracefully shut down all goroutines.
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := retryScheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error("Retry scheduler stopped with error", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error("Kafka consumer stopped with error", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		l.Info("Starting health server", "addr", hServer.Addr)
		if err := hServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("Health server failed", "error", err)
		}
	}()

	<-ctx.Done()
	l.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hServer.Shutdown(shutdownCtx); err != nil {
		l.Error("Health server shutdown failed", "error", err)
	}

	// in-flight attempts finish before the store is closed
	wg.Wait()
	l.Info("Worker shut down gracefully")
}
