package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/playsight/backend/internal/ratelimit"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Redis     RedisConfig     `json:"redis"`
	Postgres  PostgresConfig  `json:"postgres"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Quotas overrides the shipped per-operation policy table. Absent
	// operations are not gated.
	Quotas ratelimit.PolicyTable `json:"quotas"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

func (r RedisConfig) GetRedisAddr() string {
	return r.Host + ":" + r.Port
}

type PostgresConfig struct {
	DSN string `json:"-"`
}

type AuthConfig struct {
	JWTSecret   string `json:"-"`
	ExpiryHours int    `json:"expiry_hours"`
}

type RateLimitConfig struct {
	PerMinute int64 `json:"per_minute"`
	PerHour   int64 `json:"per_hour"`

	BanThreshold        int64 `json:"ban_threshold"`
	BanTTLMinutes       int   `json:"ban_ttl_minutes"`
	ViolationTTLMinutes int   `json:"violation_ttl_minutes"`
	EscalationEnabled   bool  `json:"escalation_enabled"`

	// BypassIdentity (an IP or user id) skips every check. Empty disables
	// the bypass.
	BypassIdentity string `json:"bypass_identity"`

	// BypassUserID skips the operation quota service only.
	BypassUserID string `json:"bypass_user_id"`

	// ExemptPaths are never rate limited (health, docs, metrics).
	ExemptPaths []string `json:"exempt_paths"`
}

func Load(path string) (*Config, error) {
	config := defaults()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Secrets come from the environment, never from the config file.
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Postgres.DSN = os.Getenv("POSTGRES_DSN")
	config.Auth.JWTSecret = os.Getenv("JWT_SECRET")

	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Auth: AuthConfig{
			ExpiryHours: 24,
		},
		RateLimit: RateLimitConfig{
			PerMinute:           60,
			PerHour:             1000,
			BanThreshold:        10,
			BanTTLMinutes:       30,
			ViolationTTLMinutes: 10,
			EscalationEnabled:   true,
			ExemptPaths:         []string{"/health", "/docs", "/openapi.json", "/metrics"},
		},
		Quotas: ratelimit.DefaultPolicies(),
	}
}
