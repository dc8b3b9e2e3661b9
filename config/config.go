package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"

	AuthModeFirebase = "firebase"
	AuthModeJWT      = "jwt"
	AuthModeHeader   = "header"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Store     StoreConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Monitor   MonitorConfig
	App       AppConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	// DSN takes precedence over the individual connection fields.
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StoreConfig struct {
	Driver string
}

type AuthConfig struct {
	Mode                    string
	FirebaseCredentialsPath string
	JWTSecret               string
	TemplatesRequireAdmin   bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	// RequestsPerSecond <= 0 disables write rate limiting.
	RequestsPerSecond float64
	Burst             int
}

type MonitorConfig struct {
	// ProbeSchedule is a cron spec with a seconds field; empty disables the probe.
	ProbeSchedule string
}

type AppConfig struct {
	ServiceName string
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "webforge"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		},
		Auth: AuthConfig{
			Mode:                    strings.ToLower(getEnv("AUTH_MODE", AuthModeFirebase)),
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			JWTSecret:               getEnv("JWT_SECRET", ""),
			TemplatesRequireAdmin:   getEnvAsBool("TEMPLATES_REQUIRE_ADMIN", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Monitor: MonitorConfig{
			ProbeSchedule: getEnv("STORE_PROBE_SCHEDULE", "*/30 * * * * *"),
		},
		App: AppConfig{
			ServiceName: getEnv("SERVICE_NAME", "webforge-backend"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("DB_DSN or DB_HOST is required")
		}
	case StoreDriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Auth.Mode {
	case AuthModeFirebase:
		if c.Auth.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
		}
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required")
		}
	case AuthModeHeader:
		if c.App.Environment == "production" {
			return fmt.Errorf("AUTH_MODE=header is not allowed in production")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.Auth.Mode)
	}

	return nil
}

// PostgresDSN returns the configured DSN or builds one from the connection fields.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
