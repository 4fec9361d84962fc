package handlers

import (
	"github.com/chachabrian/homefix-backend/internal/booking"
	"github.com/gin-gonic/gin"
)

// CreateOrder registers a booking draft and returns the order id to pay against
func CreateOrder(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var input struct {
			Amount    float64 `json:"amount"`
			ServiceID uint    `json:"serviceId"`
			Date      string  `json:"date"`
			Time      string  `json:"time"`
			Location  string  `json:"location"`
			Mobile    string  `json:"mobile"`
			Email     string  `json:"email"`
			FullName  string  `json:"fullName"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		draft, err := svc.CreateOrder(c.Request.Context(), actor.ID, booking.OrderRequest{
			Amount:    input.Amount,
			ServiceID: input.ServiceID,
			Date:      input.Date,
			Time:      input.Time,
			Location:  input.Location,
			Mobile:    input.Mobile,
			Email:     input.Email,
			FullName:  input.FullName,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, gin.H{
			"orderId":  draft.OrderID,
			"amount":   draft.Amount,
			"currency": draft.Currency,
		})
	}
}

// VerifyPayment turns a verified provider payment into a booking. Replaying
// the same payment returns the existing booking with 200.
func VerifyPayment(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			OrderID   string `json:"orderId"`
			PaymentID string `json:"paymentId"`
			Signature string `json:"signature"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		b, created, err := svc.VerifyAndCreateBooking(c.Request.Context(), actor.ID, input.OrderID, input.PaymentID, input.Signature)
		if err != nil {
			respondError(c, err)
			return
		}

		if !created {
			c.JSON(200, b)
			return
		}
		c.JSON(201, b)
	}
}
