package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Manager ManagerConfig
	Storage StorageConfig
	Remote  RemoteConfig
	Server  ServerConfig
}

type ManagerConfig struct {
	GameStateCacheTTL int // Milliseconds
	ResultsCacheTTL   int // Milliseconds
	StorageTimeout    int // Milliseconds
	Debug             bool
}

type StorageConfig struct {
	Driver    string // memory | redis | sqlite | postgres
	Namespace string
	Redis     RedisConfig
	SQLite    SQLiteConfig
	Postgres  PostgresConfig
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	KeyTTL   int // Seconds, 0 keeps keys forever
}

type SQLiteConfig struct {
	Path string
}

type PostgresConfig struct {
	DSN string
}

type RemoteConfig struct {
	BaseURL string
	Timeout int // Seconds
}

type ServerConfig struct {
	Port         int
	ReadTimeout  int // Seconds
	WriteTimeout int // Seconds
}

// Load reads an optional .env file, then an optional config file at path
// (skipped when empty), then DRAFT_* environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c ManagerConfig) GameStateTTL() time.Duration {
	return time.Duration(c.GameStateCacheTTL) * time.Millisecond
}

func (c ManagerConfig) ResultsTTL() time.Duration {
	return time.Duration(c.ResultsCacheTTL) * time.Millisecond
}

func (c ManagerConfig) StorageTimeoutDuration() time.Duration {
	return time.Duration(c.StorageTimeout) * time.Millisecond
}

func (c StorageConfig) DriverName() string {
	return strings.ToLower(strings.TrimSpace(c.Driver))
}
