package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gearshare/rental-service/config"
	"github.com/gearshare/rental-service/internal/consumer"
	"github.com/gearshare/rental-service/internal/events"
	"github.com/gearshare/rental-service/internal/handler"
	"github.com/gearshare/rental-service/internal/identity"
	"github.com/gearshare/rental-service/internal/middleware"
	"github.com/gearshare/rental-service/internal/repository"
	"github.com/gearshare/rental-service/internal/service"
	"github.com/gearshare/rental-service/pkg/database"
	"github.com/gearshare/rental-service/pkg/logger"
	"github.com/gearshare/rental-service/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		zlog.Fatal("database init failed", zap.Error(err))
	}

	// RabbitMQ: consume vehicle sync events from the listing service,
	// publish booking lifecycle events for the notification service.
	mqConsumer, err := rabbitmq.NewConsumer(cfg.Rabbit.URL)
	if err != nil {
		zlog.Fatal("failed to connect RabbitMQ consumer", zap.Error(err))
	}
	defer mqConsumer.Close()

	mqPublisher, err := rabbitmq.NewPublisher(cfg.Rabbit.URL)
	if err != nil {
		zlog.Fatal("failed to connect RabbitMQ publisher", zap.Error(err))
	}
	defer mqPublisher.Close()

	// Repositories
	vehicleRepo := repository.NewVehicleRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	msgs, err := mqConsumer.Consume()
	if err != nil {
		zlog.Fatal("failed to start consuming", zap.Error(err))
	}
	consumer.NewVehicleConsumer(vehicleRepo, zlog).Start(msgs)

	// Services
	publisher := events.NewPublisher(mqPublisher, zlog)
	reservationSvc := service.NewReservationService(bookingRepo, vehicleRepo, publisher, cfg.Engine.StorageTimeout)
	lifecycleSvc := service.NewLifecycleService(bookingRepo, publisher, cfg.Engine.StorageTimeout)

	// Background sweep: confirmed bookings past their end date complete.
	go sweepCompleted(lifecycleSvc, cfg.Engine.SweepInterval, zlog)

	resolver := identity.NewResolver(cfg.JWT.Secret)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(middleware.RequestID())
	e.Use(middleware.NewHTTPMetrics(nil).Middleware())
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logger.WithContext(c.Request().Context()).Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "rental-service"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewBookingHandler(reservationSvc, lifecycleSvc).RegisterRoutes(e, middleware.Auth(resolver))

	zlog.Info("rental service starting", zap.String("port", cfg.App.Port))
	e.Logger.Fatal(e.Start(":" + cfg.App.Port))
}

func sweepCompleted(svc service.LifecycleService, interval time.Duration, zlog *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		n, err := svc.CompleteElapsed(context.Background())
		if err != nil {
			zlog.Error("completion sweep failed", zap.Error(err))
			continue
		}
		if n > 0 {
			zlog.Info("completed elapsed bookings", zap.Int64("count", n))
		}
	}
}
