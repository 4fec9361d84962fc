package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/homefix-backend/internal/booking"
	"github.com/chachabrian/homefix-backend/internal/config"
	"github.com/chachabrian/homefix-backend/internal/database"
	"github.com/chachabrian/homefix-backend/internal/handlers"
	"github.com/chachabrian/homefix-backend/internal/logger"
	"github.com/chachabrian/homefix-backend/internal/middleware"
	"github.com/chachabrian/homefix-backend/internal/repository"
	"github.com/chachabrian/homefix-backend/internal/services"
	"github.com/chachabrian/homefix-backend/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logg := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	redisClient, err := services.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	bookings := repository.NewBookingRepository(db)
	preferences := repository.NewPreferenceRepository(db)
	tokens := services.NewTokenRegistry(redisClient)

	// WebSocket hub doubles as a notification channel
	hub := services.NewHub(logg)
	go hub.Run(ctx)

	channels := []services.Channel{hub, services.NewRedisPublisher(redisClient)}

	// Firebase is optional
	fcm, err := services.NewMessagingClient(ctx, cfg.FirebaseCredsPath)
	switch {
	case err != nil:
		logg.Warn("firebase initialization failed, push notifications disabled", "error", err)
	case fcm == nil:
		logg.Info("firebase not configured, push notifications disabled")
	default:
		channels = append(channels, services.NewPushNotifier(fcm, tokens, preferences, logg))
	}

	var amqpPublisher *services.AMQPPublisher
	if cfg.RabbitURL != "" {
		amqpPublisher, err = services.NewAMQPPublisher(cfg.RabbitURL, cfg.BookingExchange, logg)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		channels = append(channels, amqpPublisher)
	}

	if mailer := utils.NewMailer(cfg.EmailFrom, cfg.EmailPassword, cfg.SMTPHost, cfg.SMTPPort, cfg.BaseURL); mailer.Configured() {
		channels = append(channels, services.NewEmailNotifier(mailer, preferences))
	}
	if sms := utils.NewSMSSender(cfg.AfricasTalkingUser, cfg.AfricasTalkingKey); sms.Configured() {
		channels = append(channels, services.NewSMSNotifier(sms, preferences))
	}

	// Initialize Storage (S3 or local fallback)
	if !cfg.S3Enabled() {
		logg.Warn("AWS credentials not configured, using local storage", "dir", cfg.UploadDir)
	}
	storage, err := services.NewStorage(services.StorageConfig{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		Bucket:    cfg.AWSBucket,
		UploadDir: cfg.UploadDir,
		BaseURL:   cfg.BaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	invoices := services.NewInvoiceRenderer(cfg.BaseURL)
	channels = append(channels, services.NewInvoiceArchiver(invoices, storage, logg))

	dispatcher := services.NewDispatcher(logg, cfg.NotifyWorkers, cfg.NotifyQueueSize, channels...)
	dispatcher.Start()

	svc := booking.NewService(
		bookings,
		services.NewOrderStore(redisClient, cfg.OrderTTL),
		services.NewCatalog(db),
		dispatcher,
		booking.Options{
			PaymentSecret: cfg.PaymentKeySecret,
			Currency:      cfg.PaymentCurrency,
			Expiry:        cfg.BookingExpiry,
			Logger:        logg,
		},
	)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	// Serve archived invoices when S3 is not configured
	if !storage.IsUsingS3() {
		r.Static("/uploads", cfg.UploadDir)
	}

	handlers.RegisterRoutes(r, handlers.Deps{
		Bookings:      svc,
		Tokens:        tokens,
		Preferences:   preferences,
		Hub:           hub,
		Invoices:      invoices,
		VerifyLimiter: middleware.NewRateLimiter(cfg.VerifyRatePerMin),
		JWTSecret:     cfg.JWTSecret,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logg.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server shutdown failed", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logg.Error("notification drain incomplete", "error", err)
	}
	if amqpPublisher != nil {
		if err := amqpPublisher.Close(); err != nil {
			logg.Error("rabbitmq close failed", "error", err)
		}
	}
}
