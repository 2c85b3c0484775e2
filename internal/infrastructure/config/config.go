package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers []string
}

type SessionConfig struct {
	// TTL evicts idle conversations; zero keeps them forever.
	TTL time.Duration
	// JanitorInterval is how often expired sessions are swept.
	JanitorInterval time.Duration
}

type AssessmentConfig struct {
	Workers   int
	QueueSize int
	// Delay simulates bureau turnaround before the check runs.
	Delay time.Duration
}

type AuthConfig struct {
	// JWTSecret enables HMAC token validation when set; empty disables
	// authentication (development only).
	JWTSecret string
	Issuer    string
}

type Config struct {
	GRPCPort    int
	HTTPPort    int
	DB          DatabaseConfig
	Kafka       KafkaConfig
	Session     SessionConfig
	Assessment  AssessmentConfig
	Auth        AuthConfig
	ServiceName string

	// EventBackend selects the event publisher: "kafka" or "log".
	EventBackend string
	// DocumentBackend selects the document sink: "postgres" or "memory".
	DocumentBackend string
	// MinMonthlyIncome is the verification income floor in rupees.
	MinMonthlyIncome int64
	// OTLPEndpoint receives traces when set.
	OTLPEndpoint string
	LogLevel     string
}

func Load() Config {
	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9095),
		HTTPPort: getEnvInt("HTTP_PORT", 8095),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "origination"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "origination"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		},
		Session: SessionConfig{
			TTL:             getEnvDuration("SESSION_TTL", 30*time.Minute),
			JanitorInterval: getEnvDuration("SESSION_JANITOR_INTERVAL", time.Minute),
		},
		Assessment: AssessmentConfig{
			Workers:   getEnvInt("ASSESSMENT_WORKERS", 2),
			QueueSize: getEnvInt("ASSESSMENT_QUEUE_SIZE", 64),
			Delay:     getEnvDuration("ASSESSMENT_DELAY", 2*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "origination"),
		},
		ServiceName:      "origination-service",
		EventBackend:     getEnv("EVENT_BACKEND", "log"),
		DocumentBackend:  getEnv("DOCUMENT_BACKEND", "memory"),
		MinMonthlyIncome: int64(getEnvInt("MIN_MONTHLY_INCOME", 15000)),
		OTLPEndpoint:     getEnv("OTLP_ENDPOINT", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func (c Config) Validate() error {
	if c.DocumentBackend == "postgres" && c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DOCUMENT_BACKEND=postgres")
	}
	if c.EventBackend != "kafka" && c.EventBackend != "log" {
		return fmt.Errorf("EVENT_BACKEND must be kafka or log, got %q", c.EventBackend)
	}
	return nil
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
