package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
env:
  serviceName: gatekeeper
  log:
    level: debug
http:
  port: 3000
  maxRequestBodySize: ""
token:
  secret: ""
  ttl: 0s
auth:
  bcryptCost: 0
persistence:
  driver: memory
`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
}

func TestLoadWithEnv_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, testConfigYAML)
	t.Chdir(dir)

	t.Setenv("TOKEN_SECRET", "from-env")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("HTTP_PORT", "8081")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Token.Secret)
	assert.Equal(t, time.Hour, cfg.Token.TTL)
	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.Equal(t, "gatekeeper", cfg.Env.ServiceName)
	assert.Equal(t, DriverMemory, cfg.Persistence.Driver)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadWithEnv[Config]("config")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "not found in any search path")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GATEKEEPER_DOTENV_TEST=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("GATEKEEPER_DOTENV_TEST") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("GATEKEEPER_DOTENV_TEST"))

	// A missing file is not an error.
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestConfig_NormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Token.Secret = "secret"
	cfg.Persistence.Driver = DriverMemory
	cfg.Redis = &RedisConfig{Addr: "localhost:6379"}

	require.NoError(t, cfg.normalize())

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, defaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Equal(t, defaultCacheTTL, cfg.Redis.TTL)
}

func TestConfig_NormalizeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "missing secret",
			mutate:  func(cfg *Config) { cfg.Token.Secret = "" },
			wantErr: "token secret must be provided",
		},
		{
			name:    "negative ttl",
			mutate:  func(cfg *Config) { cfg.Token.TTL = -time.Second },
			wantErr: "token ttl must not be negative",
		},
		{
			name:    "bcrypt cost too high",
			mutate:  func(cfg *Config) { cfg.Auth = &AuthConfig{BcryptCost: 99} },
			wantErr: "bcrypt cost 99 out of range",
		},
		{
			name:    "unknown driver",
			mutate:  func(cfg *Config) { cfg.Persistence.Driver = "mongo" },
			wantErr: "unknown persistence driver",
		},
		{
			name:    "postgres without connection",
			mutate:  func(cfg *Config) { cfg.Persistence.Driver = DriverPostgres },
			wantErr: "postgres configuration is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Token.Secret = "secret"
			cfg.Persistence.Driver = DriverMemory
			tt.mutate(cfg)

			err := cfg.normalize()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_NormalizeDropsEmptyRedis(t *testing.T) {
	cfg := &Config{}
	cfg.Token.Secret = "secret"
	cfg.Persistence.Driver = DriverMemory
	cfg.Redis = &RedisConfig{}

	require.NoError(t, cfg.normalize())
	assert.Nil(t, cfg.Redis)
}
