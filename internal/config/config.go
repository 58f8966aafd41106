package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "cartfleet/libs/config"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"FLEET_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"FLEET_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"FLEET_REDIS_ADDR"`
		Password string `yaml:"password" env:"FLEET_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"FLEET_REDIS_DB"`
	} `yaml:"redis"`
	JWT struct {
		Secret       string `yaml:"secret" env:"FLEET_JWT_SECRET"`
		ExpiresHours int    `yaml:"expiresHours" env:"FLEET_JWT_EXPIRES_HOURS"`
	} `yaml:"jwt"`
	Relay struct {
		WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds" env:"FLEET_RELAY_WRITE_TIMEOUT_SECONDS"`
		PositionTTLMinutes  int `yaml:"positionTtlMinutes" env:"FLEET_POSITION_TTL_MINUTES"`
	} `yaml:"relay"`
	Uploads struct {
		Dir string `yaml:"dir" env:"FLEET_UPLOADS_DIR"`
	} `yaml:"uploads"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.JWT.ExpiresHours = 168
	cfg.Relay.WriteTimeoutSeconds = 10
	cfg.Relay.PositionTTLMinutes = 60
	cfg.Uploads.Dir = "uploads"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		return nil, errors.New("config: database DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if cfg.JWT.ExpiresHours <= 0 {
		cfg.JWT.ExpiresHours = 168
	}

	return cfg, nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(c.JWT.ExpiresHours) * time.Hour
}

// RelayWriteTimeout bounds single websocket writes.
func (c *Config) RelayWriteTimeout() time.Duration {
	if c.Relay.WriteTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Relay.WriteTimeoutSeconds) * time.Second
}

// PositionTTL is the redis snapshot lifetime.
func (c *Config) PositionTTL() time.Duration {
	if c.Relay.PositionTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Relay.PositionTTLMinutes) * time.Minute
}
