package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/chachabrian/homefix-backend/internal/models"
	"google.golang.org/api/option"
)

// NewMessagingClient initializes Firebase Cloud Messaging. It returns a nil
// client when no service account is configured.
func NewMessagingClient(ctx context.Context, serviceAccountPath string) (*messaging.Client, error) {
	if serviceAccountPath == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return client, nil
}

// MessageSender is the part of *messaging.Client used for push delivery.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type TokenSource interface {
	Tokens(ctx context.Context, userID uint) ([]string, error)
}

type PreferenceSource interface {
	Get(ctx context.Context, userID uint) (*models.NotificationPreference, error)
}

// NotificationPayload represents the notification data
type NotificationPayload struct {
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	ChannelID string                 `json:"channelId,omitempty"`
	Tag       string                 `json:"tag,omitempty"`
}

// PushNotifier sends FCM push notifications to every registered device of
// the customer and the assigned worker.
type PushNotifier struct {
	sender MessageSender
	tokens TokenSource
	prefs  PreferenceSource
	log    *slog.Logger
}

func NewPushNotifier(sender MessageSender, tokens TokenSource, prefs PreferenceSource, log *slog.Logger) *PushNotifier {
	return &PushNotifier{sender: sender, tokens: tokens, prefs: prefs, log: log}
}

func (n *PushNotifier) Name() string { return "fcm" }

func (n *PushNotifier) Deliver(ctx context.Context, e models.BookingEvent) error {
	var firstErr error
	if msg, ok := customerMessage(e); ok {
		if err := n.sendToUser(ctx, e.Booking.CustomerID, e, msg); err != nil {
			firstErr = err
		}
	}
	if msg, ok := workerMessage(e); ok {
		if w := e.WorkerID(); w != nil {
			if err := n.sendToUser(ctx, *w, e, msg); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (n *PushNotifier) sendToUser(ctx context.Context, userID uint, e models.BookingEvent, msg message) error {
	prefs, err := n.prefs.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load preferences for user %d: %w", userID, err)
	}
	if !prefs.PushEnabled || !prefs.BookingAlerts {
		return nil
	}

	tokens, err := n.tokens.Tokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("load tokens for user %d: %w", userID, err)
	}

	payload := NotificationPayload{
		Title: msg.Title,
		Body:  msg.Body,
		Data: map[string]interface{}{
			"type":           string(e.Type),
			"bookingId":      e.Booking.ID,
			"status":         string(e.Booking.Status),
			"notificationId": fmt.Sprintf("%s_%s", e.Type, e.Booking.ID),
		},
		Tag: e.Booking.ID,
	}

	var firstErr error
	for _, token := range tokens {
		if _, err := n.sender.Send(ctx, buildMessage(token, payload)); err != nil {
			n.log.Warn("push send failed", "userId", userID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func buildMessage(token string, payload NotificationPayload) *messaging.Message {
	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data:    stringifyData(payload.Data),
		Token:   token,
		Android: getAndroidConfig(payload),
		APNS:    getAPNSConfig(),
	}
}

// stringifyData converts data values to the string map FCM requires.
func stringifyData(data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case string:
			out[key] = v
		case fmt.Stringer:
			out[key] = v.String()
		case int, int64, uint, float64, bool:
			out[key] = fmt.Sprintf("%v", v)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out[key] = string(b)
		}
	}
	return out
}

func getAndroidConfig(payload NotificationPayload) *messaging.AndroidConfig {
	channelID := payload.ChannelID
	if channelID == "" {
		channelID = "homefix_bookings"
	}
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:                 "default",
			ChannelID:             channelID,
			Priority:              messaging.PriorityHigh,
			DefaultSound:          true,
			Icon:                  "ic_stat_logo",
			Color:                 "#4CAF50",
			Tag:                   payload.Tag,
			DefaultVibrateTimings: true,
		},
	}
}

func getAPNSConfig() *messaging.APNSConfig {
	badge := 1
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound:            "default",
				Badge:            &badge,
				MutableContent:   true,
				ContentAvailable: true,
			},
		},
	}
}
