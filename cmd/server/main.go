package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harborview-stays/service-reservations/internal/application"
	"github.com/harborview-stays/service-reservations/internal/config"
	"github.com/harborview-stays/service-reservations/internal/events"
	"github.com/harborview-stays/service-reservations/internal/handler"
	"github.com/harborview-stays/service-reservations/internal/platform/auth"
	"github.com/harborview-stays/service-reservations/internal/platform/database"
	"github.com/harborview-stays/service-reservations/internal/platform/health"
	"github.com/harborview-stays/service-reservations/internal/platform/kafka"
	"github.com/harborview-stays/service-reservations/internal/platform/logger"
	"github.com/harborview-stays/service-reservations/internal/platform/middleware"
	"github.com/harborview-stays/service-reservations/internal/repository"
)

const serviceName = "service-reservations"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.SuiteModel{}, &repository.ReservationModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 15*time.Minute)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	reservationRepo := repository.NewGormReservationRepository(db)
	suiteRepo := repository.NewGormSuiteRepository(db)

	// Initialize application services
	availability := application.NewAvailabilityChecker(reservationRepo, suiteRepo)
	reservationService := application.NewReservationService(
		reservationRepo,
		suiteRepo,
		availability,
		kafkaProducer,
		log,
	)
	suiteService := application.NewSuiteService(suiteRepo, log)
	customerService := application.NewCustomerService(reservationRepo, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "reservations-service"
	paymentConsumer := events.NewPaymentEventConsumer(
		cfg.Kafka.Brokers,
		groupID,
		reservationService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	reservationHandler := handler.NewReservationHandler(reservationService, availability)
	suiteHandler := handler.NewSuiteHandler(suiteService)
	customerHandler := handler.NewCustomerHandler(customerService)
	adminHandler := handler.NewAdminHandler(reservationService, suiteService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	reservationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	suiteHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	customerHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
