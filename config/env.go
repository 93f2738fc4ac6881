package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	StripeSecretKey  string
	SiteDomain       string
	CheckoutAmount   int64
	CheckoutCurrency string

	RedisAddress     string
	RedisPassword    string
	RedisQueuePrefix string
	IssueRateLimit   int

	CORSOrigin     string
	TrustedProxies []string
	LogLevel       string
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		GetLogger().Info("No .env file found, reading from environment")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "3000"),
		MongoDB:          getEnv("MONGODB_DB", "cityFixerDB"),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		SiteDomain:       os.Getenv("SITE_DOMAIN"),
		CheckoutCurrency: getEnv("CHECKOUT_CURRENCY", "usd"),
		RedisAddress:     os.Getenv("REDIS_ADDRESS"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisQueuePrefix: getEnv("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit"),
		CORSOrigin:       getEnv("CORS_ORIGIN", "*"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	amount, err := strconv.ParseInt(getEnv("CHECKOUT_AMOUNT", "10000"), 10, 64)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("invalid CHECKOUT_AMOUNT %q", os.Getenv("CHECKOUT_AMOUNT"))
	}
	cfg.CheckoutAmount = amount

	limit, err := strconv.Atoi(getEnv("ISSUE_RATE_LIMIT", "20"))
	if err != nil || limit < 1 {
		return nil, fmt.Errorf("invalid ISSUE_RATE_LIMIT %q", os.Getenv("ISSUE_RATE_LIMIT"))
	}
	cfg.IssueRateLimit = limit

	for _, proxy := range strings.Split(os.Getenv("TRUSTED_PROXIES"), ",") {
		if proxy = strings.TrimSpace(proxy); proxy != "" {
			cfg.TrustedProxies = append(cfg.TrustedProxies, proxy)
		}
	}

	cfg.MongoURI = os.Getenv("MONGODB_URI")
	if cfg.MongoURI == "" {
		user, pass, host := os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_HOST")
		if user != "" && pass != "" && host != "" {
			cfg.MongoURI = fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
				url.QueryEscape(user), url.QueryEscape(pass), host)
		}
	}

	return cfg, nil
}

// RequireMongo reports whether enough is configured to reach MongoDB
func (c *Config) RequireMongo() error {
	if c.MongoURI == "" {
		return errors.New("please define MONGODB_URI or DB_USER, DB_PASS and DB_HOST")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
