package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
	defaultBcryptCost         = 12
	defaultCacheTTL           = 5 * time.Minute
	defaultDotEnvFile         = ".env"
)

// Persistence drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Token TokenConfig `json:"token" yaml:"token"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	Persistence PersistenceConfig `json:"persistence" yaml:"persistence"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Redis enables the user lookup cache when set.
	Redis *RedisConfig `json:"redis" yaml:"redis"`
}

// TokenConfig holds the bearer token signing settings.
type TokenConfig struct {
	Secret string `json:"secret" yaml:"secret"`
	Issuer string `json:"issuer" yaml:"issuer"`
	// TTL of zero issues tokens without an expiry.
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost int `json:"bcryptCost" yaml:"bcryptCost"`
}

// PersistenceConfig selects the user store.
type PersistenceConfig struct {
	Driver  string `json:"driver" yaml:"driver"`
	Migrate bool   `json:"migrate" yaml:"migrate"`
}

// RedisConfig defines the optional user cache.
type RedisConfig struct {
	Addr     string        `json:"addr" yaml:"addr"`
	Password string        `json:"password" yaml:"password"`
	DB       int           `json:"db" yaml:"db"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadDotEnv exports the variables of an optional .env file into the process
// environment. Variables that are already set win over the file.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return errors.Wrapf(godotenv.Load(path), "load %s", path)
}

func New() (*Config, error) {
	if err := LoadDotEnv(defaultDotEnvFile); err != nil {
		return nil, err
	}

	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = replicasFromEnv()
	}

	return cfg, nil
}

// normalize fills defaults and rejects configurations the service cannot run with.
func (cfg *Config) normalize() error {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Token.Secret == "" {
		return errors.New("token secret must be provided")
	}
	if cfg.Token.TTL < 0 {
		return errors.Errorf("token ttl must not be negative: %s", cfg.Token.TTL)
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return errors.Errorf("bcrypt cost %d out of range [%d, %d]", cfg.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch cfg.Persistence.Driver {
	case "":
		cfg.Persistence.Driver = DriverPostgres
	case DriverPostgres, DriverMemory:
	default:
		return errors.Errorf("unknown persistence driver: %s", cfg.Persistence.Driver)
	}
	if cfg.Persistence.Driver == DriverPostgres && cfg.Postgres == nil {
		return errors.New("postgres configuration is required for the postgres driver")
	}

	if cfg.Redis != nil {
		if cfg.Redis.Addr == "" {
			cfg.Redis = nil
		} else if cfg.Redis.TTL <= 0 {
			cfg.Redis.TTL = defaultCacheTTL
		}
	}

	return nil
}
