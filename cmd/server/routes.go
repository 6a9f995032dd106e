package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/database"
	"github.com/tsangpocruise/booking-backend/internal/handlers"
	"github.com/tsangpocruise/booking-backend/internal/middleware"
	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/internal/services"
	"github.com/tsangpocruise/booking-backend/pkg/jwt"
)

// application holds the wired services the router needs
type application struct {
	logger *logrus.Logger
	db     database.DB
	rdb    *redis.Client
	tokens *jwt.Service
	users  *database.UserRepository
	limits *services.RateLimitService

	auth         *services.AuthService
	pricing      *services.PricingService
	calendar     *services.CalendarService
	bookings     *services.BookingService
	mailBookings *services.MailBookingService
	gallery      *services.GalleryService
	stories      *services.StoryService
	dashboard    *services.DashboardService
}

func (app *application) routes(router *gin.Engine) {
	logger := app.logger

	authHandler := handlers.NewAuthHandler(app.auth, logger)
	pricingHandler := handlers.NewPricingHandler(app.pricing, logger)
	calendarHandler := handlers.NewCalendarHandler(app.calendar, logger)
	bookingHandler := handlers.NewBookingHandler(app.bookings, logger)
	mailBookingHandler := handlers.NewMailBookingHandler(app.mailBookings, logger)
	galleryHandler := handlers.NewGalleryHandler(app.gallery, logger)
	storyHandler := handlers.NewStoryHandler(app.stories, logger)
	dashboardHandler := handlers.NewDashboardHandler(app.dashboard, logger)

	auth := middleware.AuthMiddleware(app.tokens, app.users, logger)
	admin := middleware.RequireRole(models.RoleAdmin)
	limited := middleware.RateLimit(app.limits)

	router.GET("/health", handlers.HealthCheck(app.db, app.rdb, version))

	v1 := router.Group("/api/v1")

	user := v1.Group("/user")
	{
		user.POST("/register", limited, authHandler.Register)
		user.POST("/login", limited, authHandler.Login)
		user.POST("/forgot-password", limited, authHandler.ForgotPassword)
		user.POST("/reset-password", limited, authHandler.ResetPassword)
		user.GET("/me", auth, authHandler.Me)
	}

	pricing := v1.Group("/pricing")
	{
		pricing.GET("/current", pricingHandler.Current)
		pricing.PUT("/update", auth, admin, pricingHandler.Update)
		pricing.GET("/history", auth, admin, pricingHandler.History)
	}

	calendar := v1.Group("/calendar")
	{
		calendar.GET("/available-dates", calendarHandler.AvailableDates)
		calendar.GET("/check-availability/:date", calendarHandler.CheckAvailability)

		manage := calendar.Group("", auth, admin)
		manage.PUT("/update-settings", calendarHandler.UpdateSettings)
		manage.POST("/available-dates", calendarHandler.AddAvailable)
		manage.PUT("/available-dates", calendarHandler.ReplaceAvailable)
		manage.DELETE("/available-dates/:id", calendarHandler.RemoveAvailable)
		manage.POST("/blocked-dates", calendarHandler.AddBlocked)
		manage.PUT("/blocked-dates", calendarHandler.ReplaceBlocked)
		manage.DELETE("/blocked-dates/:id", calendarHandler.RemoveBlocked)
	}

	bookings := v1.Group("/bookings", auth)
	{
		bookings.POST("/create", bookingHandler.Create)
		bookings.POST("/verify-payment", bookingHandler.VerifyPayment)
		bookings.GET("/my-bookings", bookingHandler.MyBookings)
		bookings.GET("/all", admin, bookingHandler.All)
		bookings.GET("/:id/receipt", bookingHandler.Receipt)
	}

	mailBookings := v1.Group("/mail-bookings")
	{
		mailBookings.POST("/submit", limited, mailBookingHandler.Submit)
		mailBookings.POST("/calculate-price", mailBookingHandler.CalculatePrice)
		mailBookings.GET("/check-date/:date", mailBookingHandler.CheckDate)

		manage := mailBookings.Group("/admin", auth, admin)
		manage.GET("/bookings", mailBookingHandler.List)
		manage.GET("/bookings/:id", mailBookingHandler.Get)
		manage.PUT("/bookings/:id/status", mailBookingHandler.UpdateStatus)
		manage.GET("/stats", mailBookingHandler.Stats)
	}

	gallery := v1.Group("/gallery")
	{
		gallery.GET("", galleryHandler.List)
		gallery.POST("", auth, admin, galleryHandler.Upload)
		gallery.POST("/seed-defaults", auth, admin, galleryHandler.SeedDefaults)
		gallery.DELETE("/:id", auth, admin, galleryHandler.Delete)
	}

	// Fixed paths are registered before /:id so they are not taken as ids
	stories := v1.Group("/stories")
	{
		stories.GET("", storyHandler.List)
		stories.GET("/popular", storyHandler.Popular)
		stories.GET("/recent", storyHandler.Recent)
		stories.GET("/search", storyHandler.Search)
		stories.GET("/tag/:tag", storyHandler.ByTag)
		stories.GET("/user/my-stories", auth, storyHandler.MyStories)
		stories.GET("/user/stats", auth, storyHandler.MyStats)

		stories.GET("/:id", storyHandler.Get)
		stories.POST("", auth, storyHandler.Create)
		stories.PUT("/:id", auth, storyHandler.Update)
		stories.DELETE("/:id", auth, storyHandler.Delete)
		stories.POST("/:id/like", auth, storyHandler.ToggleLike)
	}

	dashboard := v1.Group("/dashboard", auth, admin)
	{
		dashboard.GET("/stats", dashboardHandler.Stats)
		dashboard.GET("/analytics", dashboardHandler.Analytics)
	}
}
