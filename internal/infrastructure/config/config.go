package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Catalog   CatalogConfig
	Scanner   ScannerConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// StorageConfig holds settings for the durable key-value store that
// carries the cart snapshot and the auth token across restarts
type StorageConfig struct {
	Backend  string // memory, file, redis
	Path     string // file backend: path of the JSON store
	CartKey  string // storage key holding the serialized cart
	TokenKey string // storage key holding the bearer token
}

// RedisConfig holds Redis connection settings for the redis storage backend
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// CatalogConfig holds settings for the product lookup collaborator
type CatalogConfig struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// ScannerConfig holds scanner and decode loop settings. The retry
// ceiling and backoff are tunables, not hardcoded constants.
type ScannerConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
	FrameRate    int
	IdealWidth   int
	IdealHeight  int
	FrameDir     string // file media provider: directory of frame images
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with POS_ prefix (e.g., POS_REDIS_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Storage: StorageConfig{
			Backend:  v.GetString("storage.backend"),
			Path:     v.GetString("storage.path"),
			CartKey:  v.GetString("storage.cart_key"),
			TokenKey: v.GetString("storage.token_key"),
		},
		Redis: RedisConfig{
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Catalog: CatalogConfig{
			BaseURL:            v.GetString("catalog.base_url"),
			Timeout:            v.GetDuration("catalog.timeout"),
			BreakerMaxFailures: v.GetUint32("catalog.breaker_max_failures"),
			BreakerTimeout:     v.GetDuration("catalog.breaker_timeout"),
		},
		Scanner: ScannerConfig{
			MaxRetries:   v.GetInt("scanner.max_retries"),
			RetryBackoff: v.GetDuration("scanner.retry_backoff"),
			FrameRate:    v.GetInt("scanner.frame_rate"),
			IdealWidth:   v.GetInt("scanner.ideal_width"),
			IdealHeight:  v.GetInt("scanner.ideal_height"),
			FrameDir:     v.GetString("scanner.frame_dir"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pos-order-entry"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8090"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "pos-store.json"
	}
	if cfg.Storage.CartKey == "" {
		cfg.Storage.CartKey = "cart"
	}
	if cfg.Storage.TokenKey == "" {
		cfg.Storage.TokenKey = "token"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "pos:"
	}
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = "http://localhost:8080/api/v1"
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 10 * time.Second
	}
	if cfg.Catalog.BreakerMaxFailures == 0 {
		cfg.Catalog.BreakerMaxFailures = 5
	}
	if cfg.Catalog.BreakerTimeout == 0 {
		cfg.Catalog.BreakerTimeout = 30 * time.Second
	}
	if cfg.Scanner.MaxRetries == 0 {
		cfg.Scanner.MaxRetries = 3
	}
	if cfg.Scanner.RetryBackoff == 0 {
		cfg.Scanner.RetryBackoff = time.Second
	}
	if cfg.Scanner.FrameRate == 0 {
		cfg.Scanner.FrameRate = 30
	}
	if cfg.Scanner.IdealWidth == 0 {
		cfg.Scanner.IdealWidth = 3840
	}
	if cfg.Scanner.IdealHeight == 0 {
		cfg.Scanner.IdealHeight = 2160
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "pos-order-entry"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("storage.backend must be one of memory, file, redis; got %q", c.Storage.Backend)
	}

	if c.Scanner.MaxRetries < 1 {
		return fmt.Errorf("scanner.max_retries must be at least 1")
	}
	if c.Scanner.RetryBackoff < 0 {
		return fmt.Errorf("scanner.retry_backoff cannot be negative")
	}
	if c.Scanner.FrameRate < 1 {
		return fmt.Errorf("scanner.frame_rate must be at least 1")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if c.Storage.Backend == "memory" {
			return fmt.Errorf("storage.backend cannot be 'memory' in production (cart would not survive restarts)")
		}
		if c.Redis.Password == "" && c.Storage.Backend == "redis" {
			return fmt.Errorf("redis.password is required in production when using the redis backend")
		}
	}

	return nil
}

// Addr returns the Redis server address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
