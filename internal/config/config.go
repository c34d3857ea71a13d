package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "VECTOR_INSIGHTS_"

// Config holds all configuration for the Vector Insights service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Backend    BackendConfig
	Segments   SegmentsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the breakdown warehouse that holds observed
// segment performance.
type ClickHouseConfig struct {
	Enabled     bool
	Addrs       []string
	Database    string
	User        string
	Password    string
	DialTimeout time.Duration
	Table       string
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int

	// Mutation endpoints (apply, builds, toggles) get their own tighter bucket.
	MutationRPS   float64
	MutationBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// BackendConfig configures the execution backend that mutates ad platforms.
// An empty URL selects the in-memory recorder.
type BackendConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// SegmentsConfig configures segment resolution.
type SegmentsConfig struct {
	// CacheBackend is "memory", "redis" or "none".
	CacheBackend string
	CacheTTL     time.Duration
	CachePrefix  string

	// RealDataSource is "clickhouse" or "none".
	RealDataSource string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			Env:             getEnv("ENV", "development"),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
			ReadTimeout:     getDurationEnv("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("DB_ENABLED", true),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getIntEnv("DB_PORT", 5432),
			User:     getEnv("DB_USER", "insights"),
			Password: getEnv("DB_PASSWORD", "insights_secret"),
			DBName:   getEnv("DB_NAME", "insights"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("DB_MAX_CONNS", 10),
			MinConns: getIntEnv("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:     getBoolEnv("CLICKHOUSE_ENABLED", false),
			Addrs:       getSliceEnv("CLICKHOUSE_ADDRS", []string{"localhost:9000"}),
			Database:    getEnv("CLICKHOUSE_DATABASE", "insights"),
			User:        getEnv("CLICKHOUSE_USER", "default"),
			Password:    getEnv("CLICKHOUSE_PASSWORD", ""),
			DialTimeout: getDurationEnv("CLICKHOUSE_DIAL_TIMEOUT", 5*time.Second),
			Table:       getEnv("CLICKHOUSE_SEGMENT_TABLE", "segment_breakdowns"),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("AUTH_ENABLED", true),
			MasterKey: getEnv("API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getBoolEnv("RATE_LIMIT_ENABLED", true),
			RPS:           getFloatEnv("RATE_LIMIT_RPS", 200),
			Burst:         getIntEnv("RATE_LIMIT_BURST", 50),
			MutationRPS:   getFloatEnv("RATE_LIMIT_MUTATION_RPS", 20),
			MutationBurst: getIntEnv("RATE_LIMIT_MUTATION_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled:   getBoolEnv("METRICS_ENABLED", true),
			Path:      getEnv("METRICS_PATH", "/metrics"),
			Namespace: getEnv("METRICS_NAMESPACE", "vector_insights"),
		},
		Backend: BackendConfig{
			URL:     getEnv("BACKEND_URL", ""),
			APIKey:  getEnv("BACKEND_API_KEY", ""),
			Timeout: getDurationEnv("BACKEND_TIMEOUT", 20*time.Second),
		},
		Segments: SegmentsConfig{
			CacheBackend:   getEnv("SEGMENT_CACHE", "memory"),
			CacheTTL:       getDurationEnv("SEGMENT_CACHE_TTL", 15*time.Minute),
			CachePrefix:    getEnv("SEGMENT_CACHE_PREFIX", "vector-insights:"),
			RealDataSource: getEnv("SEGMENT_SOURCE", "none"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("%sAPI_KEY_MASTER is required when auth is enabled", envPrefix)
	}
	switch c.Segments.CacheBackend {
	case "memory", "none":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("%sSEGMENT_CACHE=redis requires %sREDIS_ENABLED", envPrefix, envPrefix)
		}
	default:
		return fmt.Errorf("unknown segment cache backend %q", c.Segments.CacheBackend)
	}
	switch c.Segments.RealDataSource {
	case "none":
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("%sSEGMENT_SOURCE=clickhouse requires %sCLICKHOUSE_ENABLED", envPrefix, envPrefix)
		}
	default:
		return fmt.Errorf("unknown segment source %q", c.Segments.RealDataSource)
	}
	if c.Backend.URL != "" && c.Backend.Timeout <= 0 {
		return fmt.Errorf("%sBACKEND_TIMEOUT must be positive", envPrefix)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading prefixed environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
