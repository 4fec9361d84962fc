package handlers

import (
	"net/http"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/chachabrian/homefix-backend/internal/middleware"
	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error", "kind"}. Internal causes stay in the
// request log.
func respondError(c *gin.Context, err error) {
	status, kind, msg := apperror.Public(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg, "kind": kind})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, apperror.Validation(err.Error()))
}

func actorFrom(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		respondError(c, apperror.Unauthorized("Unauthorized"))
	}
	return actor, ok
}
