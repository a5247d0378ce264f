package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfigFile(t, `
auth:
  jwt_secret: "test-secret-key-for-unit-testing"
schedule:
  timezone: "UTC"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
	assert.Equal(t, 31, cfg.Schedule.MaxRangeDays)
	assert.Equal(t, 4, cfg.Schedule.RangeWorkers)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.Broker.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
auth:
  jwt_secret: "test-secret-key-for-unit-testing"
`)
	t.Setenv("AGENDA_SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Auth:     AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
		Schedule: ScheduleConfig{Timezone: "UTC", MaxRangeDays: 31, RangeWorkers: 2},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"时区无效", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, true},
		{"区间天数为0", func(c *Config) { c.Schedule.MaxRangeDays = 0 }, true},
		{"并发数为0", func(c *Config) { c.Schedule.RangeWorkers = 0 }, true},
		{"启用broker但缺少url", func(c *Config) { c.Broker.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
