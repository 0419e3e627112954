package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the full runtime configuration. Values come from defaults, then
// the optional YAML file named by EVENTGATE_CONFIG, then environment
// variables.
type Config struct {
	Environment string          `yaml:"environment"`
	Server      Server          `yaml:"server"`
	Store       StoreConfig     `yaml:"store"`
	Redis       RedisConfig     `yaml:"redis"`
	Auth        AuthConfig      `yaml:"auth"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Kafka       KafkaConfig     `yaml:"kafka"`
	Log         LogConfig       `yaml:"log"`
	SeedDev     bool            `yaml:"seed_dev"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that sets them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

type StoreConfig struct {
	Backend          string `yaml:"backend"`
	PostgresDSN      string `yaml:"postgres_dsn"`
	PostgresMaxConns int32  `yaml:"postgres_max_conns"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type AuthConfig struct {
	JWTSigningKey string        `yaml:"jwt_signing_key"`
	JWTIssuer     string        `yaml:"jwt_issuer"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

// RateLimitConfig configures the per-IP sliding window. Backend "redis"
// shares counters across instances; anything else keeps them in process.
type RateLimitConfig struct {
	Disabled bool          `yaml:"disabled"`
	Max      int           `yaml:"max"`
	Window   time.Duration `yaml:"window"`
	Backend  string        `yaml:"backend"`
}

// KafkaConfig enables the audit stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultJWTSigningKey is only suitable for development.
const DefaultJWTSigningKey = "dev-secret-key-change-in-production"

func Defaults() Config {
	return Config{
		Environment: "development",
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{Backend: BackendMemory, PostgresMaxConns: 10},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Auth: AuthConfig{
			JWTSigningKey: DefaultJWTSigningKey,
			JWTIssuer:     "eventgate",
			TokenTTL:      24 * time.Hour,
		},
		RateLimit: RateLimitConfig{Max: 100, Window: 15 * time.Minute, Backend: BackendMemory},
		Kafka:     KafkaConfig{Topic: "eventgate.audit"},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// FromEnv builds the configuration so main stays lean.
func FromEnv() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("EVENTGATE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if cfg.IsProduction() {
		cfg.Auth.SecureCookies = true
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v == "true" || v == "1"
		}
	}
	var errs []string
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, key+": "+err.Error())
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, key+": "+err.Error())
				return
			}
			*dst = d
		}
	}

	str("EVENTGATE_ENV", &c.Environment)
	if port, ok := lookup("PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	str("EVENTGATE_ADDR", &c.Server.Addr)
	duration("HTTP_READ_TIMEOUT", &c.Server.ReadTimeout)
	duration("HTTP_WRITE_TIMEOUT", &c.Server.WriteTimeout)
	duration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	boolean("TRUST_PROXY_HEADERS", &c.Server.TrustProxyHeaders)

	str("STORE_BACKEND", &c.Store.Backend)
	str("DATABASE_URL", &c.Store.PostgresDSN)
	maxConns := int(c.Store.PostgresMaxConns)
	integer("DATABASE_MAX_CONNS", &maxConns)
	c.Store.PostgresMaxConns = int32(maxConns)

	str("REDIS_URL", &c.Redis.URL)
	integer("REDIS_POOL_SIZE", &c.Redis.PoolSize)

	str("JWT_SIGNING_KEY", &c.Auth.JWTSigningKey)
	str("JWT_ISSUER", &c.Auth.JWTIssuer)
	duration("TOKEN_TTL", &c.Auth.TokenTTL)
	boolean("SECURE_COOKIES", &c.Auth.SecureCookies)

	boolean("RATE_LIMIT_DISABLED", &c.RateLimit.Disabled)
	integer("RATE_LIMIT_MAX", &c.RateLimit.Max)
	duration("RATE_LIMIT_WINDOW", &c.RateLimit.Window)
	str("RATE_LIMIT_BACKEND", &c.RateLimit.Backend)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	str("KAFKA_AUDIT_TOPIC", &c.Kafka.Topic)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	boolean("SEED_DEV", &c.SeedDev)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("store backend %q requires REDIS_URL", c.Store.Backend)
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store backend %q requires DATABASE_URL", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.RateLimit.Backend == BackendRedis && c.Redis.URL == "" {
		return fmt.Errorf("rate limit backend redis requires REDIS_URL")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit max and window must be positive")
	}
	if c.IsProduction() && c.Auth.JWTSigningKey == DefaultJWTSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
