package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EmailProviderBrevo = "brevo"
	EmailProviderSES   = "ses"
	EmailProviderLog   = "log"

	OTPStoreMemory = "memory"
	OTPStoreRedis  = "redis"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OTP      OTPConfig
	Email    EmailConfig
	Redis    RedisConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectRetries    uint64
	AutoMigrate       bool
}

type ServerConfig struct {
	Port             string
	Env              string
	LogLevel         string
	AllowedOrigins   []string
	TrustedProxies   []string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	AuthRateLimitRPM int
}

// OTPConfig controls one-time code issuance.
type OTPConfig struct {
	Store            string
	TTL              time.Duration
	ExpiredRetention time.Duration
}

// EmailConfig selects and configures the OTP notification sink.
type EmailConfig struct {
	Provider    string
	SenderName  string
	SenderEmail string
	Timeout     time.Duration

	BrevoAPIKey  string
	BrevoBaseURL string

	AWSRegion string
}

type RedisConfig struct {
	URL       string
	KeyPrefix string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "bounce"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			ConnectRetries:    uint64(getEnvAsInt("DB_CONNECT_RETRIES", 5)),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:             getEnv("PORT", "8080"),
			Env:              env,
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			AllowedOrigins:   parseAllowedOrigins(env),
			TrustedProxies:   splitList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:      getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:     getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:      getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			AuthRateLimitRPM: getEnvAsInt("AUTH_RATE_LIMIT_RPM", 10),
		},
		OTP: OTPConfig{
			Store:            strings.ToLower(getEnv("OTP_STORE", OTPStoreMemory)),
			TTL:              getEnvAsDuration("OTP_TTL", 10*time.Minute),
			ExpiredRetention: getEnvAsDuration("OTP_EXPIRED_RETENTION", 1*time.Hour),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderBrevo)),
			SenderName:   getEnv("EMAIL_SENDER_NAME", "Bounce"),
			SenderEmail:  getEnv("EMAIL_SENDER_ADDRESS", "no-reply@bounce.dev"),
			Timeout:      getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
			BrevoAPIKey:  getEnv("BREVO_API_KEY", ""),
			BrevoBaseURL: getEnv("BREVO_BASE_URL", "https://api.brevo.com"),
			AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "bounce:otp:"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.OTP.TTL <= 0 {
		return fmt.Errorf("OTP_TTL must be positive (got %s)", c.OTP.TTL)
	}

	switch c.OTP.Store {
	case OTPStoreMemory:
	case OTPStoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when OTP_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported OTP_STORE %q", c.OTP.Store)
	}

	if c.Email.Timeout <= 0 {
		return fmt.Errorf("EMAIL_TIMEOUT must be positive (got %s)", c.Email.Timeout)
	}

	switch c.Email.Provider {
	case EmailProviderBrevo:
		if c.Email.BrevoAPIKey == "" {
			return fmt.Errorf("BREVO_API_KEY is required when EMAIL_PROVIDER=brevo")
		}
	case EmailProviderSES:
		if c.Email.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required when EMAIL_PROVIDER=ses")
		}
	case EmailProviderLog:
		// Codes end up in logs, never acceptable outside development
		if c.Server.Env == "production" {
			return fmt.Errorf("EMAIL_PROVIDER=log is not allowed in production")
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider)
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if origins := splitList(getEnv("ALLOWED_ORIGINS", "")); len(origins) > 0 {
		return origins
	}

	if env == "production" {
		return []string{}
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}

// splitList parses a comma-separated env value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
