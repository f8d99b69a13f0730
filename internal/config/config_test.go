package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("NOTIF_DB_URL", "postgres://localhost/notifications")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBConfig.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.ConsumerConfig.KafkaBrokers)
	assert.Equal(t, "notification.requested", cfg.ConsumerConfig.KafkaTopic)
	assert.Equal(t, 3, cfg.DeliveryConfig.MaxRetryAttempts)
	assert.Equal(t, 60*time.Second, cfg.DeliveryConfig.RetrySweepInterval)
	assert.Equal(t, 1, cfg.DeliveryConfig.RetrySweepWorkers)
	assert.Equal(t, 2*time.Second, cfg.DeliveryConfig.SimulatedSendDuration)
	assert.InDelta(t, 0.2, cfg.DeliveryConfig.SimulatedFailureRate, 1e-9)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "REDIS")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MAX_RETRY_ATTEMPTS", "5")
	t.Setenv("RETRY_SWEEP_INTERVAL", "15s")
	t.Setenv("SIMULATED_FAILURE_RATE", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.DBConfig.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.ConsumerConfig.KafkaBrokers)
	assert.Equal(t, 5, cfg.DeliveryConfig.MaxRetryAttempts)
	assert.Equal(t, 15*time.Second, cfg.DeliveryConfig.RetrySweepInterval)
	// unparsable values fall back to the default
	assert.InDelta(t, 0.2, cfg.DeliveryConfig.SimulatedFailureRate, 1e-9)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBConfig:       DBConfig{Driver: DriverSQLite, URL: "file:test.db"},
			ConsumerConfig: ConsumerConfig{KafkaBrokers: []string{"b:9092"}, KafkaTopic: "t"},
			DeliveryConfig: DeliveryConfig{
				MaxRetryAttempts:   3,
				RetrySweepInterval: time.Minute,
				RetrySweepWorkers:  1,
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DBConfig.Driver = "mongo" }, wantField: "STORE_DRIVER"},
		{name: "missing url", mutate: func(c *Config) { c.DBConfig.URL = "" }, wantField: "NOTIF_DB_URL"},
		{name: "no brokers", mutate: func(c *Config) { c.ConsumerConfig.KafkaBrokers = nil }, wantField: "KAFKA_BROKERS"},
		{name: "zero retries", mutate: func(c *Config) { c.DeliveryConfig.MaxRetryAttempts = 0 }, wantField: "MAX_RETRY_ATTEMPTS"},
		{name: "zero interval", mutate: func(c *Config) { c.DeliveryConfig.RetrySweepInterval = 0 }, wantField: "RETRY_SWEEP_INTERVAL"},
		{name: "failure rate above one", mutate: func(c *Config) { c.DeliveryConfig.SimulatedFailureRate = 1.5 }, wantField: "SIMULATED_FAILURE_RATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}
