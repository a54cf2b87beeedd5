// Package config loads the server configuration.
//
// Values are resolved in order: built-in defaults, then the YAML file named by
// APP_CONFIG_FILE (config.yaml when unset), then environment variables. A .env file in the
// working directory is loaded into the environment first and never overrides variables
// that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the full runtime configuration of the server.
type Config struct {
	HTTP       HTTPConfig      `yaml:"http"`
	DB         DBConfig        `yaml:"db"`
	Redis      RedisConfig     `yaml:"redis"`
	JWT        JWTConfig       `yaml:"jwt"`
	Log        LogConfig       `yaml:"log"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
	BcryptCost int             `yaml:"bcrypt_cost"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

// DBConfig selects and addresses the user store.
type DBConfig struct {
	Driver        string        `yaml:"driver"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	Name          string        `yaml:"name"`
	Host          string        `yaml:"host"`
	Port          string        `yaml:"port"`
	SSLMode       string        `yaml:"sslmode"`
	InstanceName  string        `yaml:"instance_connection_name"`
	SQLitePath    string        `yaml:"sqlite_path"`
	RunMigrations bool          `yaml:"run_migrations"`
	ConnectWait   time.Duration `yaml:"connect_timeout"`
}

// RedisConfig is optional. An empty Host disables Redis.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

// Addr returns host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RateLimitConfig bounds requests per client IP on the join and login endpoints.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	Burst    int           `yaml:"burst"`
}

// Default returns the configuration used for local development.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		DB: DBConfig{
			Driver:      DriverSQLite,
			Host:        "localhost",
			Port:        "5432",
			SSLMode:     "disable",
			SQLitePath:  "social.db",
			ConnectWait: 60 * time.Second,
		},
		Redis:     RedisConfig{Port: "6379"},
		JWT:       JWTConfig{Expiry: time.Hour},
		Log:       LogConfig{Level: "info", Format: "json"},
		RateLimit: RateLimitConfig{Requests: 10, Window: time.Minute, Burst: 5},
	}
}

// Load resolves the configuration from defaults, the YAML file, .env and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if err := loadFile(&cfg, envString("APP_CONFIG_FILE", "config.yaml")); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http port %d out of range", c.HTTP.Port))
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported db driver %q", c.DB.Driver))
	}
	if c.JWT.Expiry <= 0 {
		errs = append(errs, errors.New("jwt expiry must be positive"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit requests and window must be positive"))
	}
	return errors.Join(errs...)
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(envInt("PORT", &cfg.HTTP.Port))

	cfg.DB.Driver = strings.ToLower(envString("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.User = envString("DB_USER", cfg.DB.User)
	cfg.DB.Password = envString("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envString("DB_NAME", cfg.DB.Name)
	cfg.DB.Host = envString("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = envString("DB_PORT", cfg.DB.Port)
	cfg.DB.SSLMode = envString("DB_SSLMODE", cfg.DB.SSLMode)
	cfg.DB.InstanceName = envString("INSTANCE_CONNECTION_NAME", cfg.DB.InstanceName)
	cfg.DB.SQLitePath = envString("SQLITE_PATH", cfg.DB.SQLitePath)
	collect(envBool("RUN_MIGRATIONS", &cfg.DB.RunMigrations))
	collect(envDuration("DB_CONNECT_TIMEOUT", &cfg.DB.ConnectWait))

	cfg.Redis.Host = envString("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = envString("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = envString("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.JWT.Secret = envString("JWT_SECRET", cfg.JWT.Secret)
	collect(envDuration("JWT_EXPIRY", &cfg.JWT.Expiry))

	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envString("LOG_FORMAT", cfg.Log.Format)

	collect(envInt("RATE_LIMIT_REQUESTS", &cfg.RateLimit.Requests))
	collect(envDuration("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window))
	collect(envInt("RATE_LIMIT_BURST", &cfg.RateLimit.Burst))

	collect(envInt("BCRYPT_COST", &cfg.BcryptCost))

	return errors.Join(errs...)
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, dst *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = i
	return nil
}

func envBool(key string, dst *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = d
	return nil
}
