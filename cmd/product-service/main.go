package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/config"
	httpAPI "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/logger"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/repository/memory"
	"github.com/iyhunko/product-catalog/internal/repository/sql"
	"github.com/iyhunko/product-catalog/internal/service"
	sqspkg "github.com/iyhunko/product-catalog/internal/sqs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var publisher service.Publisher
	if conf.NotificationsEnabled() {
		sqsClient, err := sqspkg.NewClient(ctx,
			sqspkg.WithRegion(conf.AWS.Region),
			sqspkg.WithEndpoint(conf.AWS.Endpoint))
		handleErr("creating SQS client", err)
		publisher = sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)
	}

	var productService *service.ProductService
	switch conf.StorageDriver {
	case config.StorageDriverMemory:
		productService = service.NewProductService(memory.NewProductRepository(), publisher)
	default:
		db, err := sql.StartDB(ctx, conf.Database)
		handleErr("starting database", err)
		defer db.Close()

		productRepository := sql.NewProductRepository(db)
		if publisher == nil {
			productService = service.NewProductService(productRepository, nil)
			break
		}

		// mutations and their events are committed together and published by the worker
		productService = service.NewProductServiceWithOutbox(productRepository, sql.NewTransactionalRepository(db))
		eventRepository := sql.NewEventRepository(db)
		outboxWorker := service.NewOutboxWorker(eventRepository, eventRepository, publisher, conf.OutboxInterval)
		go outboxWorker.Start(ctx)
		// runs before db.Close, so an in-flight batch finishes first
		defer func() {
			outboxWorker.Stop()
			<-outboxWorker.Done()
		}()
	}
	slog.Info("Product storage ready",
		slog.String("driver", conf.StorageDriver),
		slog.Bool("notifications", conf.NotificationsEnabled()))

	ctr := controller.New(conf)
	productCtr := controller.NewProductController(productService)
	router := httpAPI.InitRouter(gin.New(), ctr, productCtr)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("err", err))
	}
	cancel()
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
