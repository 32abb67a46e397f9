package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Cloudinary CloudinaryConfig
	Novita     NovitaConfig
	LLM        LLMConfig
	Payment    PaymentConfig
	Tokens     TokenConfig
	Admin      AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// NovitaConfig for the text-to-image provider (async task API).
type NovitaConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// LLMConfig for the OpenAI-compatible chat completions provider.
type LLMConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

type PaymentConfig struct {
	Provider      string // "stripe" or "stub"
	StripeAPIKey  string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	PaymentExpiry time.Duration
}

// TokenConfig holds the token economics. Conversion rates are policy and
// live here, not in the ledger.
type TokenConfig struct {
	TokensPerImage       int64
	TokensPerChatMessage int64
	WelcomeBonusTokens   int64
}

type AdminConfig struct {
	Email    string
	Password string
}

// Load reads configuration from environment variables (optionally from .env),
// applying defaults suitable for development.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8099"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  getdur("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getdur("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "velora:velora@tcp(localhost:3306)/velora?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getint("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getint("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getdur("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret:  getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getenv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  getdur("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getdur("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        getenv("JWT_ISSUER", "velora"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getenv("GOOGLE_REDIRECT_URL", ""),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getenv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getenv("CLOUDINARY_API_KEY", ""),
			APISecret: getenv("CLOUDINARY_API_SECRET", ""),
		},
		Novita: NovitaConfig{
			BaseURL:      getenv("NOVITA_BASE_URL", "https://api.novita.ai"),
			APIKey:       getenv("NOVITA_API_KEY", ""),
			Model:        getenv("NOVITA_MODEL", "sd_xl_base_1.0.safetensors"),
			PollInterval: getdur("NOVITA_POLL_INTERVAL", 2*time.Second),
			PollTimeout:  getdur("NOVITA_POLL_TIMEOUT", 2*time.Minute),
		},
		LLM: LLMConfig{
			BaseURL:   getenv("LLM_BASE_URL", "https://api.novita.ai/v3/openai"),
			APIKey:    getenv("LLM_API_KEY", ""),
			Model:     getenv("LLM_MODEL", "meta-llama/llama-3.1-8b-instruct"),
			MaxTokens: getint("LLM_MAX_TOKENS", 512),
		},
		Payment: PaymentConfig{
			Provider:      getenv("PAYMENT_PROVIDER", "stripe"),
			StripeAPIKey:  getenv("STRIPE_API_KEY", ""),
			WebhookSecret: getenv("PAYMENT_WEBHOOK_SECRET", ""),
			SuccessURL:    getenv("PAYMENT_SUCCESS_URL", "https://velora.app/tokens/success"),
			CancelURL:     getenv("PAYMENT_CANCEL_URL", "https://velora.app/tokens"),
			PaymentExpiry: getdur("PAYMENT_EXPIRY", 30*time.Minute),
		},
		Tokens: TokenConfig{
			TokensPerImage:       getint64("TOKENS_PER_IMAGE", 5),
			TokensPerChatMessage: getint64("TOKENS_PER_CHAT_MESSAGE", 1),
			WelcomeBonusTokens:   getint64("WELCOME_BONUS_TOKENS", 10),
		},
		Admin: AdminConfig{
			Email:    getenv("ADMIN_EMAIL", "admin@velora.app"),
			Password: getenv("ADMIN_PASSWORD", "change-me-admin"),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[config] invalid int for %s, using default %d", key, def)
	}
	return def
}

func getint64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		log.Printf("[config] invalid int for %s, using default %d", key, def)
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[config] invalid duration for %s, using default %s", key, def)
	}
	return def
}
