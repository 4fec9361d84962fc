package handlers

import (
	"fmt"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/booking"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/chachabrian/homefix-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// GetInvoice renders the PDF invoice of a completed booking
func GetInvoice(svc *booking.Service, renderer *services.InvoiceRenderer) gin.HandlerFunc {
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
		if b.Status != models.BookingStatusCompleted {
			respondError(c, apperror.InvalidState("invoice is available once the booking is completed"))
			return
		}

		pdf, err := renderer.Render(b)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "invoice-"+b.ID+".pdf"))
		c.Data(200, "application/pdf", pdf)
	}
}
