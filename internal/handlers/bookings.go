package handlers

import (
	"strconv"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/booking"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// ListBookings returns the caller's bookings (owner=customer) or the worker
// queue (owner=worker, optionally filtered by status)
func ListBookings(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var (
			bookings []models.Booking
			err      error
		)
		switch c.DefaultQuery("owner", "customer") {
		case "customer":
			bookings, err = svc.ListForCustomer(c.Request.Context(), actor.ID)
		case "worker":
			if actor.Role != models.RoleWorker {
				respondError(c, apperror.Forbidden("Only workers can view the worker queue"))
				return
			}
			bookings, err = svc.ListForWorker(c.Request.Context(), actor.ID, models.BookingStatus(c.Query("status")))
		default:
			err = apperror.Validation("owner must be customer or worker")
		}
		if err != nil {
			respondError(c, err)
			return
		}

		if bookings == nil {
			bookings = []models.Booking{}
		}
		c.JSON(200, bookings)
	}
}

func GetBooking(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		b, err := svc.Get(c.Request.Context(), actor, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, b)
	}
}

// UpdateBookingStatus moves a booking through its lifecycle
func UpdateBookingStatus(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		b, err := svc.UpdateStatus(c.Request.Context(), actor, c.Param("id"), models.BookingStatus(input.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, b)
	}
}

func RateBooking(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var input struct {
			Rating int    `json:"rating"`
			Review string `json:"review"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		b, err := svc.SubmitRating(c.Request.Context(), actor, c.Param("id"), input.Rating, input.Review)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, b)
	}
}

// WorkerAnalytics returns the performance summary of the calling worker, or
// of ?worker=<id> for admins
func WorkerAnalytics(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var workerID uint
		if raw := c.Query("worker"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				respondError(c, apperror.Validation("worker must be a positive integer"))
				return
			}
			workerID = uint(id)
		}

		analytics, err := svc.WorkerAnalytics(c.Request.Context(), actor, workerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, analytics)
	}
}
