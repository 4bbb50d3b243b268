package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is read once from the environment at startup.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	LogFile     string
	HTTPAddr    string

	OTLPEndpoint     string
	TraceSampleRatio float64

	// PublicBaseURL is where customers reach the storefront; checkout redirects land there.
	PublicBaseURL string
	// MediaBaseURL prefixes stored photo paths. Defaults to PublicBaseURL + "/media".
	MediaBaseURL string
	MediaDir     string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventTTL      time.Duration

	KafkaBrokers []string
	EventsTopic  string
	MailTopic    string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	PaymentTimeout      time.Duration

	FromEmail     string
	AdminEmail    string
	Brand         string
	NotifyTimeout time.Duration

	ShutdownTimeout time.Duration
}

// Load reads the environment. Only malformed values are errors; every key has a default.
func Load() (Config, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		d, err := getDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return d
	}

	cfg := Config{
		ServiceName: getEnv("SERVICE_NAME", "conciergerie-cordo"),
		Env:         getEnv("ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		MediaDir:      getEnv("MEDIA_DIR", "./data/media"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		EventTTL:      dur("PAYMENT_EVENT_TTL", 72*time.Hour),

		KafkaBrokers: splitCSV(getEnv("KAFKA_BROKERS", "")),
		EventsTopic:  getEnv("KAFKA_EVENTS_TOPIC", "conciergerie.order-events"),
		MailTopic:    getEnv("KAFKA_MAIL_TOPIC", "conciergerie.mail"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		Currency:            strings.ToLower(getEnv("CURRENCY", "eur")),
		PaymentTimeout:      dur("PAYMENT_TIMEOUT", 10*time.Second),

		FromEmail:     getEnv("FROM_EMAIL", "noreply@conciergerie-cordo.fr"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		Brand:         getEnv("BRAND", "Conciergerie Cordo"),
		NotifyTimeout: dur("NOTIFY_TIMEOUT", 5*time.Second),

		ShutdownTimeout: dur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	cfg.MediaBaseURL = strings.TrimRight(getEnv("MEDIA_BASE_URL", cfg.PublicBaseURL+"/media"), "/")

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("REDIS_DB: %v", err))
	}
	cfg.RedisDB = db

	ratio, err := strconv.ParseFloat(getEnv("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil || ratio < 0 || ratio > 1 {
		errs = append(errs, fmt.Sprintf("OTEL_SAMPLE_RATIO: want a number in [0,1], got %q", getEnv("OTEL_SAMPLE_RATIO", "")))
	}
	cfg.TraceSampleRatio = ratio

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// SuccessURL is the checkout return page; the provider substitutes the session id.
func (c Config) SuccessURL() string {
	return c.PublicBaseURL + "/checkout?session_id={CHECKOUT_SESSION_ID}"
}

func (c Config) CancelURL() string {
	return c.PublicBaseURL + "/checkout/cancel"
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return def, fmt.Errorf("%s: must be positive, got %s", key, raw)
	}
	return d, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
