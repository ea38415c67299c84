package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

type GenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type DelegateConfig struct {
	// Delay is the minimum time between message commit and context assembly,
	// so the triggering message is durably visible before the window is read.
	Delay         time.Duration
	ContextWindow int
	Workers       int
	QueueSize     int
}

type WSConfig struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	SendBuffer   int
}

type BrokerConfig struct {
	// Backend is "memory" (single instance) or "redis" (shared pub/sub bus).
	Backend string
}

type Config struct {
	JWTSecret string
	Debug     bool

	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	GenAI    GenAIConfig
	Delegate DelegateConfig
	WS       WSConfig
	Broker   BrokerConfig
}

// Load reads configuration from the environment, after loading a .env file
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		JWTSecret: os.Getenv("JWT_SECRET"),
		Debug:     envBool("DEBUG", false),
		Server: ServerConfig{
			Port:           env("PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     env("DB_HOST", "localhost"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     env("DB_PORT", "5432"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     env("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    os.Getenv("S3_REGION"),
			Bucket:    os.Getenv("S3_BUCKET"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			UseSSL:    envBool("S3_USE_SSL", false),
		},
		GenAI: GenAIConfig{
			APIKey:      os.Getenv("GENAI_API_KEY"),
			Model:       env("GENAI_MODEL", "gemini-1.5-flash"),
			BaseURL:     env("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
			MaxTokens:   envInt("GENAI_MAX_TOKENS", 1000),
			Temperature: envFloat("GENAI_TEMPERATURE", 0.7),
			Timeout:     envDuration("GENAI_TIMEOUT", 30*time.Second),
		},
		Delegate: DelegateConfig{
			Delay:         envDuration("DELEGATE_DELAY", time.Second),
			ContextWindow: envInt("DELEGATE_CONTEXT_WINDOW", 100),
			Workers:       envInt("DELEGATE_WORKERS", 4),
			QueueSize:     envInt("DELEGATE_QUEUE_SIZE", 256),
		},
		WS: WSConfig{
			PingInterval: envDuration("WS_PING_INTERVAL", 30*time.Second),
			PongTimeout:  envDuration("WS_PONG_TIMEOUT", 90*time.Second),
			SendBuffer:   envInt("WS_SEND_BUFFER", 64),
		},
		Broker: BrokerConfig{
			Backend: env("BROKER_BACKEND", "memory"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.Broker.Backend != "memory" && cfg.Broker.Backend != "redis" {
		return nil, fmt.Errorf("invalid BROKER_BACKEND %q", cfg.Broker.Backend)
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
