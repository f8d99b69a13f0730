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
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	AppCfg         AppConfig
	DBConfig       DBConfig
	ConsumerConfig ConsumerConfig
	DeliveryConfig DeliveryConfig
	TracingConfig  TracingConfig
}

// AppConfig holds process level settings
type AppConfig struct {
	Port        string
	ServiceName string
	LogLevel    string
}

// DBConfig holds the notification store settings
type DBConfig struct {
	Driver        string
	URL           string
	MaxOpenConn   int
	ConnMaxIdle   time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// ConsumerConfig holds Kafka settings shared by the producer and the consumer group
type ConsumerConfig struct {
	KafkaBrokers       []string
	KafkaTopic         string
	KafkaConsumerGroup string
	KafkaClientID      string
}

// DeliveryConfig holds the retry policy and the simulated transport knobs
type DeliveryConfig struct {
	MaxRetryAttempts      int
	RetrySweepInterval    time.Duration
	RetrySweepWorkers     int
	SimulatedSendDuration time.Duration
	SimulatedFailureRate  float64
}

// TracingConfig holds the OpenTelemetry exporter settings
type TracingConfig struct {
	Enabled              bool
	OTLPExporterEndpoint string
	ServiceVersion       string
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg := &Config{
		AppCfg: AppConfig{
			Port:        getEnv("APP_PORT", "8080"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "notification-service"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		DBConfig: DBConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
			URL:           getEnv("NOTIF_DB_URL", ""),
			MaxOpenConn:   getEnvInt("NOTIF_DB_MAX_OPEN", 10),
			ConnMaxIdle:   getEnvDuration("NOTIF_DB_CONN_IDLE", 5*time.Minute),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		ConsumerConfig: ConsumerConfig{
			KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			KafkaTopic:         getEnv("KAFKA_NOTIF_TOPIC", "notification.requested"),
			KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "worker-service-group"),
			KafkaClientID:      getEnv("KAFKA_CLIENT_ID", "notification-service"),
		},
		DeliveryConfig: DeliveryConfig{
			MaxRetryAttempts:      getEnvInt("MAX_RETRY_ATTEMPTS", 3),
			RetrySweepInterval:    getEnvDuration("RETRY_SWEEP_INTERVAL", 60*time.Second),
			RetrySweepWorkers:     getEnvInt("RETRY_SWEEP_WORKERS", 1),
			SimulatedSendDuration: getEnvDuration("SIMULATED_SEND_DURATION", 2*time.Second),
			SimulatedFailureRate:  getEnvFloat("SIMULATED_FAILURE_RATE", 0.2),
		},
		TracingConfig: TracingConfig{
			Enabled:              getEnvBool("OTEL_ENABLED", false),
			OTLPExporterEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceVersion:       getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.DBConfig.Driver {
	case DriverPostgres, DriverSQLite:
		if c.DBConfig.URL == "" {
			return &ConfigError{Field: "NOTIF_DB_URL", Message: "database url cannot be empty"}
		}
	case DriverRedis:
		if c.DBConfig.RedisAddr == "" {
			return &ConfigError{Field: "REDIS_ADDR", Message: "redis address cannot be empty"}
		}
	case DriverMemory:
	default:
		return &ConfigError{Field: "STORE_DRIVER", Message: fmt.Sprintf("unsupported driver %q", c.DBConfig.Driver)}
	}
	if len(c.ConsumerConfig.KafkaBrokers) == 0 {
		return &ConfigError{Field: "KAFKA_BROKERS", Message: "at least one broker is required"}
	}
	if c.ConsumerConfig.KafkaTopic == "" {
		return &ConfigError{Field: "KAFKA_NOTIF_TOPIC", Message: "topic cannot be empty"}
	}
	if c.DeliveryConfig.MaxRetryAttempts < 1 {
		return &ConfigError{Field: "MAX_RETRY_ATTEMPTS", Message: "must be at least 1"}
	}
	if c.DeliveryConfig.RetrySweepInterval <= 0 {
		return &ConfigError{Field: "RETRY_SWEEP_INTERVAL", Message: "must be positive"}
	}
	if c.DeliveryConfig.RetrySweepWorkers < 1 {
		return &ConfigError{Field: "RETRY_SWEEP_WORKERS", Message: "must be at least 1"}
	}
	if c.DeliveryConfig.SimulatedSendDuration < 0 {
		return &ConfigError{Field: "SIMULATED_SEND_DURATION", Message: "cannot be negative"}
	}
	if r := c.DeliveryConfig.SimulatedFailureRate; r < 0 || r > 1 {
		return &ConfigError{Field: "SIMULATED_FAILURE_RATE", Message: "must be between 0 and 1"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
