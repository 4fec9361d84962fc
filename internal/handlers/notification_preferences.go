package handlers

import (
	"context"

	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/gin-gonic/gin"
)

type PreferenceStore interface {
	Get(ctx context.Context, userID uint) (*models.NotificationPreference, error)
	Save(ctx context.Context, prefs *models.NotificationPreference) error
}

// GetNotificationPreferences retrieves user's notification preferences
func GetNotificationPreferences(store PreferenceStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		preferences, err := store.Get(c.Request.Context(), actor.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, preferences)
	}
}

// UpdateNotificationPreferences updates user's notification preferences
func UpdateNotificationPreferences(store PreferenceStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		var input struct {
			PushEnabled   *bool `json:"pushEnabled"`
			BookingAlerts *bool `json:"bookingAlerts"`
			EmailEnabled  *bool `json:"emailEnabled"`
			SMSEnabled    *bool `json:"smsEnabled"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		preferences, err := store.Get(c.Request.Context(), actor.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		// Update only provided fields
		if input.PushEnabled != nil {
			preferences.PushEnabled = *input.PushEnabled
		}
		if input.BookingAlerts != nil {
			preferences.BookingAlerts = *input.BookingAlerts
		}
		if input.EmailEnabled != nil {
			preferences.EmailEnabled = *input.EmailEnabled
		}
		if input.SMSEnabled != nil {
			preferences.SMSEnabled = *input.SMSEnabled
		}

		if err := store.Save(c.Request.Context(), preferences); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, gin.H{
			"message":     "Preferences updated successfully",
			"preferences": preferences,
		})
	}
}
