package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DATABASE_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	APNs      APNsConfig      `yaml:"apns" envPrefix:"APNS_"`
	Reminders RemindersConfig `yaml:"reminders" envPrefix:"REMINDERS_"`
	Metrics   MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	Host            string        `yaml:"host" env:"HOST"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DRIVER" validate:"oneof=postgres memory"`
	Host     string `yaml:"host" env:"HOST" validate:"required_if=Driver postgres"`
	Port     int    `yaml:"port" env:"PORT" validate:"required_if=Driver postgres"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME" validate:"required_if=Driver postgres"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
	MaxConns int32  `yaml:"max_conns" env:"MAX_CONNS"`
	MinConns int32  `yaml:"min_conns" env:"MIN_CONNS"`
}

// RedisConfig holds Redis configuration. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// APNsConfig holds Apple push configuration. An empty KeyFile disables push
// delivery and notifications are only logged.
type APNsConfig struct {
	KeyFile    string `yaml:"key_file" env:"KEY_FILE"`
	KeyID      string `yaml:"key_id" env:"KEY_ID" validate:"required_with=KeyFile"`
	TeamID     string `yaml:"team_id" env:"TEAM_ID" validate:"required_with=KeyFile"`
	Topic      string `yaml:"topic" env:"TOPIC" validate:"required_with=KeyFile"`
	Production bool   `yaml:"production" env:"PRODUCTION"`
}

// RemindersConfig holds reminder dispatcher configuration
type RemindersConfig struct {
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	Schedule string        `yaml:"schedule" env:"SCHEDULE" validate:"required_if=Enabled true"`
	Window   time.Duration `yaml:"window" env:"WINDOW"`
}

// MetricsConfig holds the metrics listener configuration. An empty Addr
// disables the listener.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used for unset values
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "lovetrack",
			SSLMode: "disable",
		},
		Reminders: RemindersConfig{
			Schedule: "@every 15m",
			Window:   15 * time.Minute,
		},
		Metrics: MetricsConfig{Addr: ":9090"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file, applies environment overrides
// and validates the result. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
