package handlers

import (
	"context"

	"github.com/chachabrian/homefix-backend/internal/apperror"
	"github.com/gin-gonic/gin"
)

type TokenRegistry interface {
	Register(ctx context.Context, userID uint, token string) error
	Remove(ctx context.Context, userID uint, token string) error
}

// RegisterFCMToken registers a device token for push notifications
func RegisterFCMToken(tokens TokenRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var input struct {
			FCMToken string `json:"fcmToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		if err := tokens.Register(c.Request.Context(), actor.ID, input.FCMToken); err != nil {
			respondError(c, apperror.DependencyFailure("Failed to register FCM token", err))
			return
		}

		c.JSON(200, gin.H{"message": "FCM token registered successfully"})
	}
}

// RemoveFCMToken removes a device token, e.g. on logout
func RemoveFCMToken(tokens TokenRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var input struct {
			FCMToken string `json:"fcmToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		if err := tokens.Remove(c.Request.Context(), actor.ID, input.FCMToken); err != nil {
			respondError(c, apperror.DependencyFailure("Failed to remove FCM token", err))
			return
		}

		c.JSON(200, gin.H{"message": "FCM token removed successfully"})
	}
}
