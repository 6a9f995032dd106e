package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/config"
	"github.com/tsangpocruise/booking-backend/internal/database"
	"github.com/tsangpocruise/booking-backend/internal/middleware"
	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/internal/services"
	"github.com/tsangpocruise/booking-backend/pkg/jwt"
	"github.com/tsangpocruise/booking-backend/pkg/mailer"
	"github.com/tsangpocruise/booking-backend/pkg/media"
	"github.com/tsangpocruise/booking-backend/pkg/payment"
	"github.com/tsangpocruise/booking-backend/pkg/receipt"
	"github.com/tsangpocruise/booking-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Tsangpo cruise booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Redis is optional; without it the price sheet is read from Postgres every time
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, continuing without cache")
		} else {
			logger.Info("Redis cache connected")
		}
		cancel()
	}

	if err := validator.RegisterBindings(models.FormTypes, models.BookingTypes); err != nil {
		logger.Fatalf("Failed to register validators: %v", err)
	}

	cloud, err := media.NewCloudinary(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize media host: %v", err)
	}

	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		FromName: cfg.Email.FromName,
	}, logger)
	gateway := payment.NewClient(cfg.Payment.KeyID, cfg.Payment.KeySecret, cfg.Payment.BaseURL, logger)
	receipts := receipt.NewGenerator(cfg.JWT.ReceiptSecret)
	rateLimitService := services.NewRateLimitService(services.RateLimitConfig{
		Requests: cfg.RateLimit.Requests,
		Window:   time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	})

	userRepository := database.NewUserRepository(db)
	auditService := services.NewAuditService(database.NewAuditRepository(db), logger, cfg.Security.EnableAuditLog)

	calendarService := services.NewCalendarService(database.NewCalendarRepository(db), cfg.Location(), auditService, logger)
	pricingService := services.NewPricingService(
		database.NewPriceConfigRepository(db),
		services.NewRedisCache(rdb),
		cfg.Redis.CacheTTL,
		auditService,
		logger,
	)

	app := &application{
		logger: logger,
		db:     db,
		rdb:    rdb,
		tokens: jwtService,
		users:  userRepository,
		limits: rateLimitService,

		auth:     services.NewAuthService(userRepository, jwtService, sender, auditService, cfg.Security.BcryptCost, logger),
		pricing:  pricingService,
		calendar: calendarService,
		bookings: services.NewBookingService(
			database.NewBookingRepository(db),
			pricingService,
			calendarService,
			gateway,
			userRepository,
			receipts,
			cfg.Payment.Currency,
			logger,
		),
		mailBookings: services.NewMailBookingService(
			database.NewMailBookingRepository(db),
			database.NewEmailLogRepository(db),
			calendarService,
			pricingService,
			sender,
			cfg.Email.OwnerEmail,
			auditService,
			logger,
		),
		gallery:   services.NewGalleryService(database.NewGalleryRepository(db), cloud, cfg.Media.GalleryDefaultImages, auditService, logger),
		stories:   services.NewStoryService(database.NewStoryRepository(db), cloud, logger),
		dashboard: services.NewDashboardService(database.NewDashboardRepository(db, cfg.Location()), pricingService, calendarService, logger),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORS.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	app.routes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// must outlive the 30s payment gateway client timeout
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stopSweep := make(chan struct{})
	go sweepRateLimits(rateLimitService, logger, stopSweep)

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// sweepRateLimits evicts idle per-IP buckets so the limiter map stays bounded
func sweepRateLimits(limits *services.RateLimitService, logger *logrus.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := limits.CleanupExpiredRateLimits(); n > 0 {
				logger.WithField("evicted", n).Debug("Rate limit buckets evicted")
			}
		case <-stop:
			return
		}
	}
}

// allowsAnyOrigin reports a wildcard origin, which browsers refuse together with credentials
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
