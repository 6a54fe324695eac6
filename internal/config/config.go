package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort     string        `yaml:"server_port"`
	DBHost         string        `yaml:"db_host"`
	DBPort         string        `yaml:"db_port"`
	DBUser         string        `yaml:"db_user"`
	DBPassword     string        `yaml:"db_password"`
	DBName         string        `yaml:"db_name"`
	DatabaseURL    string        `yaml:"database_url"`
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTExpiresIn   time.Duration `yaml:"jwt_expires_in"`
	CORSOrigin     string        `yaml:"cors_origin"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
}

// Load builds the config from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerPort:   "8080",
		DBHost:       "localhost",
		DBPort:       "5432",
		DBUser:       "linkup",
		DBPassword:   "linkup_dev_password",
		DBName:       "linkup",
		JWTSecret:    "dev-secret-change-me",
		JWTExpiresIn: 7 * 24 * time.Hour,
		CORSOrigin:   "http://localhost:3000",
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.CORSOrigin = getEnv("CORS_ORIGIN", c.CORSOrigin)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	if v, ok := os.LookupEnv("JWT_EXPIRES_IN"); ok {
		d, err := ParseExpiry(v)
		if err != nil {
			return fmt.Errorf("config: JWT_EXPIRES_IN: %w", err)
		}
		c.JWTExpiresIn = d
	}
	if v, ok := os.LookupEnv("MIGRATE_ON_START"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: MIGRATE_ON_START: %w", err)
		}
		c.MigrateOnStart = b
	}
	return nil
}

// ParseExpiry parses a token lifetime. It accepts Go durations ("36h",
// "90m") and whole days with a "d" suffix ("7d").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 || n > maxExpiryDays {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

const maxExpiryDays = 3650

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: jwt secret must not be empty")
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("config: jwt expiry must be positive")
	}
	if c.ServerPort == "" {
		return errors.New("config: server port must not be empty")
	}
	return nil
}

// DSN returns DatabaseURL when set, otherwise assembles one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
