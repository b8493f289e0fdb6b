package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServiceName string
	Env         string
	HTTPAddr    string

	// StorefrontURL is where payment callbacks redirect the shopper.
	StorefrontURL      string
	PaymentCallbackURL string
	OwnerEmail         string

	PaystackSecretKey string
	PaystackBaseURL   string
	PaystackTimeout   time.Duration

	ShippingFlatFee       decimal.Decimal
	ShippingFreeThreshold decimal.Decimal
	ReconcileLockTTL      time.Duration
	ShutdownTimeout       time.Duration
	EventHandlerTimeout   time.Duration

	// DatabaseURL selects the Postgres store; empty keeps orders in memory.
	DatabaseURL string
	// RedisAddr selects the Redis reference lock; empty uses an in-process lock.
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	SeedCatalog  bool
}

// Load reads .env (when present, without overriding the real environment)
// and then the process environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		ServiceName:        getenvDefault("SERVICE_NAME", "minishop-checkout"),
		Env:                getenvDefault("ENV", "dev"),
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		StorefrontURL:      strings.TrimRight(getenvDefault("STOREFRONT_URL", "http://localhost:3000"), "/"),
		PaymentCallbackURL: os.Getenv("PAYMENT_CALLBACK_URL"),
		OwnerEmail:         os.Getenv("OWNER_EMAIL"),
		PaystackSecretKey:  os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:    getenvDefault("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         getenvDefault("KAFKA_TOPIC", "orders.events"),
	}
	if cfg.PaymentCallbackURL == "" {
		cfg.PaymentCallbackURL = "http://localhost" + cfg.HTTPAddr + "/api/payment/callback"
	}

	var err error
	if cfg.PaystackTimeout, err = durationEnv("PAYSTACK_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileLockTTL, err = durationEnv("RECONCILE_LOCK_TTL", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.EventHandlerTimeout, err = durationEnv("EVENT_HANDLER_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShippingFlatFee, err = decimalEnv("SHIPPING_FLAT_FEE"); err != nil {
		return Config{}, err
	}
	if cfg.ShippingFreeThreshold, err = decimalEnv("SHIPPING_FREE_THRESHOLD"); err != nil {
		return Config{}, err
	}
	if cfg.SeedCatalog, err = boolEnv("SEED_CATALOG", true); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func decimalEnv(key string) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q", key, v)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid bool %q", key, v)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
