package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// DB
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"homefix"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://redis:6379"`

	// Auth & payments
	JWTSecret        string `envconfig:"JWT_SECRET" required:"true"`
	PaymentKeySecret string `envconfig:"PAYMENT_KEY_SECRET" required:"true"`
	PaymentCurrency  string `envconfig:"PAYMENT_CURRENCY" default:"INR"`
	VerifyRatePerMin int    `envconfig:"VERIFY_RATE_PER_MIN" default:"30"`

	// Booking engine
	OrderTTL      time.Duration `envconfig:"ORDER_TTL" default:"24h"`
	BookingExpiry time.Duration `envconfig:"BOOKING_EXPIRY" default:"24h"`

	// Notifications
	NotifyWorkers      int    `envconfig:"NOTIFY_WORKERS" default:"4"`
	NotifyQueueSize    int    `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`
	FirebaseCredsPath  string `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	RabbitURL          string `envconfig:"RABBIT_URL"`
	BookingExchange    string `envconfig:"BOOKING_EXCHANGE" default:"booking.events"`
	EmailFrom          string `envconfig:"EMAIL_FROM"`
	EmailPassword      string `envconfig:"EMAIL_PASSWORD"`
	SMTPHost           string `envconfig:"SMTP_HOST"`
	SMTPPort           string `envconfig:"SMTP_PORT" default:"587"`
	AfricasTalkingUser string `envconfig:"AT_USERNAME"`
	AfricasTalkingKey  string `envconfig:"AT_API_KEY"`

	// Storage
	AWSRegion    string `envconfig:"AWS_REGION"`
	AWSAccessKey string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSBucket    string `envconfig:"AWS_S3_BUCKET"`
	UploadDir    string `envconfig:"UPLOAD_DIR" default:"/app/uploads"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if c.JWTSecret == "" || c.PaymentKeySecret == "" {
		return c, fmt.Errorf("JWT_SECRET and PAYMENT_KEY_SECRET must not be empty")
	}
	if c.OrderTTL <= 0 || c.BookingExpiry <= 0 {
		return c, fmt.Errorf("ORDER_TTL and BOOKING_EXPIRY must be positive")
	}
	if len(c.PaymentCurrency) != 3 {
		return c, fmt.Errorf("PAYMENT_CURRENCY must be a 3-letter code, got %q", c.PaymentCurrency)
	}
	return c, nil
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// S3Enabled reports whether AWS credentials are configured.
func (c Config) S3Enabled() bool {
	return c.AWSRegion != "" && c.AWSAccessKey != "" && c.AWSSecretKey != "" && c.AWSBucket != ""
}
