package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithPath_Defaults(t *testing.T) {
	path := writeEnvFile(t, "APP_NAME=eventra\n")

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "eventra", cfg.App.Name)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "event-lifecycle", cfg.Kafka.Topic)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.False(t, cfg.Lifecycle.EnforceOwnership)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadWithPath_FileValues(t *testing.T) {
	path := writeEnvFile(t, `SERVER_PORT=8081
DATABASE_DBNAME=events_test
KAFKA_BROKERS=k1:9092, k2:9092
LIFECYCLE_ENFORCE_OWNERSHIP=true
OUTBOX_POLL_INTERVAL=2s
`)

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "events_test", cfg.Database.DBName)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Lifecycle.EnforceOwnership)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
}

func TestLoadWithPath_EnvOverridesFile(t *testing.T) {
	path := writeEnvFile(t, "SERVER_PORT=8081\n")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Name: "eventra", Environment: "development"},
			Server:   ServerConfig{Port: 5000},
			Database: DatabaseConfig{Host: "localhost", DBName: "eventra"},
			JWT:      JWTConfig{Secret: "s3cret"},
			Outbox:   OutboxConfig{BatchSize: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing app name", func(c *Config) { c.App.Name = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing database", func(c *Config) { c.Database.DBName = "" }, true},
		{"empty jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"default secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = defaultJWTSecret
		}, true},
		{"zero outbox batch", func(c *Config) { c.Outbox.BatchSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 5000}
	r := RedisConfig{Host: "cache", Port: 6380}

	assert.Equal(t, "0.0.0.0:5000", s.Addr())
	assert.Equal(t, "cache:6380", r.Addr())
}
