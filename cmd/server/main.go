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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hadfi53/rakb-sub004/internal/application"
	"github.com/hadfi53/rakb-sub004/internal/auth"
	"github.com/hadfi53/rakb-sub004/internal/config"
	"github.com/hadfi53/rakb-sub004/internal/database"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	rentalEvents "github.com/hadfi53/rakb-sub004/internal/events"
	"github.com/hadfi53/rakb-sub004/internal/handler"
	"github.com/hadfi53/rakb-sub004/internal/health"
	"github.com/hadfi53/rakb-sub004/internal/kafka"
	"github.com/hadfi53/rakb-sub004/internal/locks"
	"github.com/hadfi53/rakb-sub004/internal/logger"
	"github.com/hadfi53/rakb-sub004/internal/mailer"
	"github.com/hadfi53/rakb-sub004/internal/middleware"
	"github.com/hadfi53/rakb-sub004/internal/notify"
	"github.com/hadfi53/rakb-sub004/internal/payments"
	"github.com/hadfi53/rakb-sub004/internal/repository"
	"github.com/hadfi53/rakb-sub004/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "rakb-rental")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting rakb-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.InspectionRecordModel{},
			&repository.VehicleModel{},
			&repository.NotificationModel{},
			&repository.ProfileModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize Redis client for the booking creation lock
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer func() { _ = redisClient.Close() }()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	inspectionRepo := repository.NewGormInspectionRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	profileRepo := repository.NewGormProfileRepository(db)

	// Initialize shared infrastructure
	pricingStrategy := bookingDomain.NewStandardPricingStrategy()
	bookingLocker := locks.NewBookingLocker(redisClient)
	blobStorage := storage.NewCloudinaryStorage(cfg.StorageConfig)
	pushHub := notify.NewHub(log)
	emailer := mailer.NewHTTPMailer(cfg.EmailConfig.BaseURL, cfg.EmailConfig.APIKey, log)
	stripeClient := payments.NewStripeClient(cfg.StripeConfig.APIKey)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		vehicleRepo,
		pricingStrategy,
		bookingLocker,
		kafkaProducer,
		log,
	)
	inspectionService := application.NewInspectionService(
		inspectionRepo,
		bookingService,
		bookingRepo,
		blobStorage,
		log,
	)
	vehicleService := application.NewVehicleService(vehicleRepo, log)
	profileService := application.NewProfileService(profileRepo, blobStorage, log)
	notificationService := application.NewNotificationService(
		notificationRepo,
		profileRepo,
		pushHub,
		emailer,
		log,
	)
	paymentService := application.NewPaymentService(
		stripeClient,
		vehicleRepo,
		profileRepo,
		pricingStrategy,
		bookingService,
		kafkaProducer,
		log,
	)

	// Start event consumers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "rental-service"
	bookingConsumer := rentalEvents.NewBookingConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		notificationService,
		log,
	)
	defer func() { _ = bookingConsumer.Close() }()

	paymentConsumer := rentalEvents.NewPaymentConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		notificationService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting booking event consumer")
		if err := bookingConsumer.Run(ctx); err != nil && err != context.Canceled {
			log.Error("booking event consumer error", zap.Error(err))
		}
	}()
	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Run(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	inspectionHandler := handler.NewInspectionHandler(inspectionService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	profileHandler := handler.NewProfileHandler(profileService)
	wsHandler := handler.NewWSHandler(pushHub, jwtManager, log)
	adminHandler := handler.NewAdminBookingHandler(bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health and metrics routes
	healthHandler := health.NewHandler(db, "rakb-rental")
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	inspectionHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	vehicleHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	notificationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	paymentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	profileHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	wsHandler.RegisterRoutes(&router.RouterGroup)
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

	log.Info("shutting down rakb-rental...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("rakb-rental stopped")
}
