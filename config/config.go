package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	AppEnv      string `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	Port        int    `mapstructure:"PORT" validate:"required,gte=1,lte=65535"`
	ProjectName string `mapstructure:"PROJECT_NAME" validate:"required"`

	CORSOrigins []string `mapstructure:"BACKEND_CORS_ORIGINS"`

	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	SecretKey         string        `mapstructure:"SECRET_KEY" validate:"required"`
	AccessTokenExpire time.Duration `mapstructure:"ACCESS_TOKEN_EXPIRE" validate:"required"`
	JWTIssuer         string        `mapstructure:"JWT_ISSUER"`

	StripeSecretKey      string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripePublishableKey string        `mapstructure:"STRIPE_PUBLISHABLE_KEY"`
	StripeWebhookSecret  string        `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	FrontendURL          string        `mapstructure:"FRONTEND_URL" validate:"required,url"`
	PaymentPendingTTL    time.Duration `mapstructure:"PAYMENT_PENDING_TTL"`

	OpenAIAPIKey      string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `mapstructure:"OPENAI_BASE_URL" validate:"required,url"`
	OpenAIModel       string        `mapstructure:"OPENAI_MODEL" validate:"required"`
	ChatTimeout       time.Duration `mapstructure:"CHAT_TIMEOUT"`
	ChatRatePerSecond float64       `mapstructure:"CHAT_RATE_PER_SECOND" validate:"gte=0"`
	ChatBurst         int           `mapstructure:"CHAT_BURST" validate:"gte=1"`

	StorageDriver   string `mapstructure:"STORAGE_DRIVER" validate:"required,oneof=local spaces"`
	UploadDir       string `mapstructure:"UPLOAD_DIR" validate:"required"`
	UploadMaxMB     int    `mapstructure:"UPLOAD_MAX_MB" validate:"gte=1"`
	SpacesAccessKey string `mapstructure:"SPACES_ACCESS_KEY"`
	SpacesSecretKey string `mapstructure:"SPACES_SECRET_KEY"`
	SpacesBucket    string `mapstructure:"SPACES_BUCKET" validate:"required_if=StorageDriver spaces"`
	SpacesRegion    string `mapstructure:"SPACES_REGION"`
	SpacesEndpoint  string `mapstructure:"SPACES_ENDPOINT" validate:"required_if=StorageDriver spaces"`
	SpacesCDNURL    string `mapstructure:"SPACES_CDN_URL"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	CronEnabled       bool          `mapstructure:"CRON_ENABLED"`
	RateLimitRequests int           `mapstructure:"RATE_LIMIT_REQUESTS" validate:"gte=0"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var defaults = map[string]any{
	"APP_ENV":                "development",
	"PORT":                   8000,
	"PROJECT_NAME":           "TeachMe Platform",
	"BACKEND_CORS_ORIGINS":   "http://localhost:3000,http://localhost:8000",
	"DATABASE_URL":           "",
	"REDIS_URL":              "redis://localhost:6379/0",
	"SECRET_KEY":             "",
	"ACCESS_TOKEN_EXPIRE":    "192h",
	"JWT_ISSUER":             "teachme-platform-api",
	"STRIPE_SECRET_KEY":      "sk_test_mock_key",
	"STRIPE_PUBLISHABLE_KEY": "pk_test_mock_key",
	"STRIPE_WEBHOOK_SECRET":  "",
	"FRONTEND_URL":           "http://localhost:3000",
	"PAYMENT_PENDING_TTL":    "24h",
	"OPENAI_API_KEY":         "",
	"OPENAI_BASE_URL":        "https://api.openai.com/v1",
	"OPENAI_MODEL":           "gpt-3.5-turbo",
	"CHAT_TIMEOUT":           "60s",
	"CHAT_RATE_PER_SECOND":   1.0,
	"CHAT_BURST":             5,
	"STORAGE_DRIVER":         "local",
	"UPLOAD_DIR":             "uploads",
	"UPLOAD_MAX_MB":          512,
	"SPACES_ACCESS_KEY":      "",
	"SPACES_SECRET_KEY":      "",
	"SPACES_BUCKET":          "",
	"SPACES_REGION":          "",
	"SPACES_ENDPOINT":        "",
	"SPACES_CDN_URL":         "",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "json",
	"CRON_ENABLED":           true,
	"RATE_LIMIT_REQUESTS":    100,
	"RATE_LIMIT_WINDOW":      "1m",
}

// LoadENV loads .env files outside production. Missing files are not an error.
func LoadENV() {
	goEnv := os.Getenv("APP_ENV")
	if goEnv == "" || goEnv == "development" || goEnv == "test" {
		_ = godotenv.Load(".env.local")
		_ = godotenv.Load()
	}
}

// Load reads the environment through viper, applies defaults and validates the result.
func Load() (*Config, error) {
	LoadENV()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	c.CORSOrigins = splitList(c.CORSOrigins)

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AllowedOrigins returns the CORS origins in the comma form fiber expects.
func (c *Config) AllowedOrigins() string {
	return strings.Join(c.CORSOrigins, ",")
}

// UploadLimitBytes is the largest request body accepted for uploads.
func (c *Config) UploadLimitBytes() int {
	return c.UploadMaxMB * 1024 * 1024
}

// splitList normalises list values that may arrive as a single comma separated string.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
