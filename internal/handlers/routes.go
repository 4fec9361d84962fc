package handlers

import (
	"context"
	"net/http"

	"github.com/chachabrian/homefix-backend/internal/booking"
	"github.com/chachabrian/homefix-backend/internal/middleware"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/chachabrian/homefix-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Bookings    *booking.Service
	Tokens      TokenRegistry
	Preferences PreferenceStore
	Hub         *services.Hub
	Invoices    *services.InvoiceRenderer
	// VerifyLimiter throttles payment verification per client; nil disables it.
	VerifyLimiter *middleware.RateLimiter
	JWTSecret     string
	// Ping reports whether the backing stores are reachable.
	Ping func(ctx context.Context) error
}

// Health reports liveness and store connectivity
func Health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ok"})
	}
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", Health(d.Ping))

	auth := middleware.AuthMiddleware(d.JWTSecret)
	customersOnly := middleware.RequireRole(models.RoleCustomer)

	api := r.Group("/api")
	{
		// WebSocket connection
		api.GET("/ws", auth, WebSocketHandler(d.Hub))

		protected := api.Group("/")
		protected.Use(auth)
		{
			protected.POST("/orders", customersOnly, CreateOrder(d.Bookings))

			verify := []gin.HandlerFunc{customersOnly}
			if d.VerifyLimiter != nil {
				verify = append([]gin.HandlerFunc{d.VerifyLimiter.Limit()}, verify...)
			}
			protected.POST("/payments/verify", append(verify, VerifyPayment(d.Bookings))...)

			bookings := protected.Group("/bookings")
			{
				bookings.GET("", ListBookings(d.Bookings))
				bookings.GET("/worker/analytics", middleware.RequireRole(models.RoleWorker, models.RoleAdmin), WorkerAnalytics(d.Bookings))
				bookings.GET("/:id", GetBooking(d.Bookings))
				bookings.PATCH("/:id", UpdateBookingStatus(d.Bookings))
				bookings.PATCH("/:id/rating", customersOnly, RateBooking(d.Bookings))
				bookings.GET("/:id/invoice", GetInvoice(d.Bookings, d.Invoices))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.POST("/register-token", RegisterFCMToken(d.Tokens))
				notifications.DELETE("/remove-token", RemoveFCMToken(d.Tokens))

				// Notification preferences
				notifications.GET("/preferences", GetNotificationPreferences(d.Preferences))
				notifications.PUT("/preferences", UpdateNotificationPreferences(d.Preferences))
			}
		}
	}
}
