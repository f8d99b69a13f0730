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
	"github.com/samims/notifier/internal/service"
	"github.com/samims/notifier/internal/store"
	"github.com/samims/notifier/pkg/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l := logger.NewLogger(cfg.AppCfg.LogLevel)
	slog.SetDefault(l)

	metrics.Init()

	ctx := context.Background()

	// ---- OpenTelemetry Tracing Setup ----
	tracerShutdown, err := observability.NewTracerProvider(ctx, observability.Options{
		Enabled:           cfg.TracingConfig.Enabled,
		ServiceName:       cfg.AppCfg.ServiceName,
		ServiceVersion:    cfg.TracingConfig.ServiceVersion,
		CollectorEndpoint: cfg.TracingConfig.OTLPExporterEndpoint,
	}, l)
	if err != nil {
		l.Error("Failed to initialize OpenTelemetry TracerProvider", slog.Any("err", err))
		os.Exit(1)
	}
	// flush spans before exit
	defer tracerShutdown()

	notifStore, closeStore, err := store.Open(ctx, cfg.DBConfig)
	if err != nil {
		l.Error("Failed to open notification store", slog.String("driver", cfg.DBConfig.Driver), slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStore()

	asyncProducer, err := kafka.NewAsyncProducer(cfg.ConsumerConfig.KafkaBrokers, cfg.ConsumerConfig.KafkaClientID+"-producer")
	if err != nil {
		l.Error("Failed to create sarama producer", slog.Any("error", err))
		os.Exit(1)
	}

	var wg sync.WaitGroup
	producer := kafka.NewProducer(asyncProducer, cfg.ConsumerConfig.KafkaTopic, l, &wg)
	// handlers stop when Close drains the producer channels
	producer.Start(context.Background())

	// Initialize layers
	notifSvc := service.NewNotificationService(notifStore, producer, l)
	healthSvc := service.NewHealthService(notifStore, l)
	optimizer := service.NewContentOptimizer(rand.New(rand.NewSource(time.Now().UnixNano())), l)

	r := router.NewRouter(
		handler.NewNotificationHandler(notifSvc, l),
		handler.NewOptimizerHandler(optimizer, l),
		handler.NewHealthHandler(healthSvc, l),
	)

	server := &http.Server{
		Addr:    ":" + cfg.AppCfg.Port,
		Handler: r,
	}

	go func() {
		l.Info("Server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("Failed to start server", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down server...")

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxTimeout); err != nil {
		l.Error("Shutdown failed", "err", err)
	}
	producer.Close(ctxTimeout)
	l.Info("Server exited cleanly")
}
