package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all runtime settings
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Proximity ProximityConfig `mapstructure:"proximity"`
	Report    ReportConfig    `mapstructure:"report"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// StoreConfig selects the persistence substrate
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// DBConfig holds database connection parameters
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the libpq style connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

type JWTConfig struct {
	SecretKey       string `mapstructure:"secret_key"`
	ExpirationHours int64  `mapstructure:"expiration_hours"`
}

// AdminConfig lists the usernames that always log in as ADMIN
type AdminConfig struct {
	Usernames []string `mapstructure:"usernames"`
}

type ProximityConfig struct {
	MaxMeters float64 `mapstructure:"max_meters"`
	Enforce   bool    `mapstructure:"enforce"`
}

type ReportConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the report time zone; "Local" is the host zone
func (c ReportConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads .env (if any), defaults and environment variables.
// Environment keys are the upper-cased config keys with "." replaced by "_",
// e.g. DB_HOST, JWT_SECRET_KEY, PROXIMITY_MAX_METERS.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is fine, the environment may already be populated
	_ = godotenv.Load(envFiles...)

	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")

	v.SetDefault("store.driver", StoreMemory)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "worktime")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.prefix", "worktime:")

	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.expiration_hours", 24)

	v.SetDefault("admin.usernames", []string{"bamboo"})

	v.SetDefault("proximity.max_meters", 100.0)
	v.SetDefault("proximity.enforce", true)

	v.SetDefault("report.timezone", "Local")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}
	if c.JWT.ExpirationHours <= 0 {
		c.JWT.ExpirationHours = 24
	}
	switch c.Store.Driver {
	case StoreMemory, StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (memory, postgres, redis)", c.Store.Driver)
	}
	if c.Proximity.MaxMeters <= 0 {
		return fmt.Errorf("PROXIMITY_MAX_METERS must be positive, got %v", c.Proximity.MaxMeters)
	}
	if len(c.Admin.Usernames) == 0 {
		return fmt.Errorf("ADMIN_USERNAMES must name at least one administrator")
	}
	if _, err := c.Report.Location(); err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", c.Report.Timezone, err)
	}
	return nil
}
