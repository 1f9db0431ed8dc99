package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DataSourceMock     = "mock"
	DataSourcePostgres = "postgres"
)

type Config struct {
	AppPort           string
	AppEnv            string
	LogLevel          string
	JWTSecret         string
	CORSOrigin        string
	InternalSecretKey string

	DataSource string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	MockSeed         uint64
	SimulatedLatency time.Duration
	SessionTTL       time.Duration
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	KafkaBrokers     []string
	KafkaTopic       string
}

// Load reads the environment (and .env when present) and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		AppEnv:            os.Getenv("APP_ENV"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		CORSOrigin:        getEnv("CORS_ORIGIN", "http://localhost:3000"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
		DataSource:        strings.ToLower(getEnv("DATA_SOURCE", DataSourceMock)),
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            getEnv("DB_PORT", "5432"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "bridge.orders"),
	}

	var err error
	if cfg.MockSeed, err = strconv.ParseUint(getEnv("MOCK_SEED", "42"), 10, 64); err != nil {
		return nil, fmt.Errorf("MOCK_SEED: %w", err)
	}
	latencyMS, err := strconv.Atoi(getEnv("SIMULATED_LATENCY_MS", "0"))
	if err != nil || latencyMS < 0 {
		return nil, fmt.Errorf("SIMULATED_LATENCY_MS must be a non-negative integer")
	}
	cfg.SimulatedLatency = time.Duration(latencyMS) * time.Millisecond

	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DataSource {
	case DataSourceMock:
	case DataSourcePostgres:
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return errors.New("DB_HOST, DB_USER and DB_NAME are required when DATA_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}
	return nil
}

func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
