// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PostgreSQL
	PostgresDSN    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	AutoMigrate    bool

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Redis
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RebuildLockTTL time.Duration

	// RabbitMQ
	AMQPURL           string
	RebuildEventQueue string

	// Metrics
	MetricsNamespace string

	// Batching
	ExportBatchSize int
	InsertBatchSize int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 120)) * time.Second,

		PostgresDSN:    getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=reconciliation port=5432 sslmode=disable"),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		AutoMigrate:    getEnvAsBool("AUTO_MIGRATE", false),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "reconciliation"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		RebuildLockTTL: time.Duration(getEnvAsInt("REBUILD_LOCK_TTL", 600)) * time.Second,

		AMQPURL:           getEnv("AMQP_URL", ""),
		RebuildEventQueue: getEnv("REBUILD_EVENT_QUEUE", "reconciliation.rebuilt"),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "reconciliation"),

		ExportBatchSize: getEnvAsInt("EXPORT_BATCH_SIZE", 1000),
		InsertBatchSize: getEnvAsInt("INSERT_BATCH_SIZE", 500),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
