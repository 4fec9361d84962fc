package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chachabrian/homefix-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	orderKeyPrefix     = "order:draft:"
	tokenKeyPrefix     = "fcm:tokens:"
	tokenTTL           = 60 * 24 * time.Hour
	BookingUpdatesChan = "booking:updates"
)

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// OrderStore keeps order drafts in Redis until payment, expiring after ttl.
type OrderStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOrderStore(client *redis.Client, ttl time.Duration) *OrderStore {
	return &OrderStore{client: client, ttl: ttl}
}

func (s *OrderStore) Create(ctx context.Context, draft *models.OrderDraft) (string, error) {
	orderID := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	stored := *draft
	stored.OrderID = orderID

	data, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	ok, err := s.client.SetNX(ctx, orderKeyPrefix+orderID, data, s.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("order id collision: %s", orderID)
	}
	return orderID, nil
}

// Fetch returns nil when the draft does not exist or has expired.
func (s *OrderStore) Fetch(ctx context.Context, orderID string) (*models.OrderDraft, error) {
	data, err := s.client.Get(ctx, orderKeyPrefix+orderID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var draft models.OrderDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", orderID, err)
	}
	return &draft, nil
}

// TokenRegistry tracks the FCM device tokens registered by each user.
type TokenRegistry struct {
	client *redis.Client
}

func NewTokenRegistry(client *redis.Client) *TokenRegistry {
	return &TokenRegistry{client: client}
}

func tokenKey(userID uint) string {
	return tokenKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (r *TokenRegistry) Register(ctx context.Context, userID uint, token string) error {
	key := tokenKey(userID)
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, key, token)
	pipe.Expire(ctx, key, tokenTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *TokenRegistry) Remove(ctx context.Context, userID uint, token string) error {
	return r.client.SRem(ctx, tokenKey(userID), token).Err()
}

func (r *TokenRegistry) Tokens(ctx context.Context, userID uint) ([]string, error) {
	return r.client.SMembers(ctx, tokenKey(userID)).Result()
}

// RedisPublisher fans booking events out on the booking:updates channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Deliver(ctx context.Context, e models.BookingEvent) error {
	data, err := json.Marshal(map[string]interface{}{
		"bookingId": e.Booking.ID,
		"type":      e.Type,
		"status":    e.Booking.Status,
		"data":      e.Booking,
		"timestamp": e.At.Unix(),
	})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, BookingUpdatesChan, data).Err()
}
