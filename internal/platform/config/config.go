// Package config loads process configuration from defaults, an optional YAML
// file, and VAXCERT_-prefixed environment variables, in that precedence order.
//
// Environment keys use a double underscore as the section separator, e.g.
// VAXCERT_SERVER__ADDR maps to server.addr.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "VAXCERT_"

// Config is the root configuration for the certificate gateway.
type Config struct {
	Log      Log      `koanf:"log"`
	Server   Server   `koanf:"server"`
	Postgres Postgres `koanf:"postgres"`
	Redis    Redis    `koanf:"redis"`
	Kafka    Kafka    `koanf:"kafka"`
	Signer   Signer   `koanf:"signer"`
	Sink     Sink     `koanf:"sink"`
}

// Log controls the structured logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" or "text".
	Format string `koanf:"format"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Postgres configures the record stores. An empty URL selects the in-memory
// stores, which is the single-node demo mode.
type Postgres struct {
	URL          string        `koanf:"url"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	MaxIdleConns int           `koanf:"max_idle_conns"`
	ConnLifetime time.Duration `koanf:"conn_lifetime"`
}

// Redis configures the catalog cache. An empty URL disables caching.
type Redis struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// Kafka configures the audit event broker. No brokers means audit events go to
// the in-process store only.
type Kafka struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

// Signer configures verification token issuance.
type Signer struct {
	Key      string        `koanf:"key"`
	Validity time.Duration `koanf:"validity"`
}

// Sink configures where durable certificate artifacts land.
type Sink struct {
	Dir string `koanf:"dir"`
}

func defaults() Config {
	return Config{
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Postgres: Postgres{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			ConnLifetime: 30 * time.Minute,
		},
		Redis: Redis{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			CacheTTL:     10 * time.Minute,
		},
		Kafka: Kafka{
			Topic: "vaxcert.audit",
		},
		Signer: Signer{
			// Development default; override in any real deployment.
			Key:      "dev-signing-key-change-me",
			Validity: 90 * 24 * time.Hour,
		},
		Sink: Sink{
			Dir: "./certificates",
		},
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// envKey maps VAXCERT_SERVER__ADDR to server.addr. Single underscores stay
// part of the key so fields like shutdown_timeout survive.
func envKey(raw string) string {
	key := strings.ToLower(strings.TrimPrefix(raw, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
