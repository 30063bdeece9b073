package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Pricing  PricingConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// PricingConfig holds the order-total policy. These are configuration,
// not per-call parameters: every total in the system is derived from the
// same four values.
type PricingConfig struct {
	Currency              string
	TaxRate               float64
	FreeShippingThreshold float64
	ShippingFlatFee       float64
}

type PaymentConfig struct {
	MercadoPago MercadoPagoConfig
	Stripe      StripeConfig
	// ReconcileInterval is the cron spec for the sweeper that re-polls
	// providers for orders stuck in PENDING/PROCESSING.
	ReconcileCron string
}

type MercadoPagoConfig struct {
	AccessToken string
	BaseURL     string
	SuccessURL  string
	PendingURL  string
	FailureURL  string
	WebhookURL  string
}

type StripeConfig struct {
	SecretKey string
	BaseURL   string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "zapatillas"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m")),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h")),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Pricing: PricingConfig{
			Currency:              getEnv("PRICING_CURRENCY", "ARS"),
			TaxRate:               parseFloat(getEnv("PRICING_TAX_RATE", "0.21"), 0.21),
			FreeShippingThreshold: parseFloat(getEnv("PRICING_FREE_SHIPPING_THRESHOLD", "10000"), 10000),
			ShippingFlatFee:       parseFloat(getEnv("PRICING_SHIPPING_FLAT_FEE", "1500"), 1500),
		},
		Payment: PaymentConfig{
			MercadoPago: MercadoPagoConfig{
				AccessToken: getEnv("MP_ACCESS_TOKEN", ""),
				BaseURL:     getEnv("MP_BASE_URL", "https://api.mercadopago.com"),
				SuccessURL:  getEnv("MP_SUCCESS_URL", "http://localhost:5173/checkout/success"),
				PendingURL:  getEnv("MP_PENDING_URL", "http://localhost:5173/checkout/pending"),
				FailureURL:  getEnv("MP_FAILURE_URL", "http://localhost:5173/checkout/failure"),
				WebhookURL:  getEnv("MP_WEBHOOK_URL", "http://localhost:8080/api/v1/payments/webhook/mercadopago"),
			},
			Stripe: StripeConfig{
				SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
				BaseURL:   getEnv("STRIPE_BASE_URL", "https://api.stripe.com/v1"),
			},
			ReconcileCron: getEnv("PAYMENT_RECONCILE_CRON", "*/10 * * * *"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default 15m", s)
		return 15 * time.Minute
	}
	return duration
}

func parseFloat(s string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, defaultValue)
		return defaultValue
	}
	return v
}

func parseInt(s string, defaultValue int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for i := 0; i < len(s); {
		end := i
		for end < len(s) && s[end] != ',' {
			end++
		}
		result = append(result, s[i:end])
		i = end + 1
	}
	return result
}
