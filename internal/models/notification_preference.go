package models

import (
	"time"
)

// NotificationPreference represents a user's notification channel settings
type NotificationPreference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	PushEnabled   bool `gorm:"column:push_enabled;default:true" json:"pushEnabled"`
	BookingAlerts bool `gorm:"column:booking_alerts;default:true" json:"bookingAlerts"`
	EmailEnabled  bool `gorm:"column:email_enabled;default:true" json:"emailEnabled"`
	SMSEnabled    bool `gorm:"column:sms_enabled;default:true" json:"smsEnabled"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences returns default notification preferences for a new user
func DefaultPreferences(userID uint) *NotificationPreference {
	return &NotificationPreference{
		UserID:        userID,
		PushEnabled:   true,
		BookingAlerts: true,
		EmailEnabled:  true,
		SMSEnabled:    true,
	}
}
