package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds server and worker configuration loaded from environment
// variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required,url|uri"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required,hostname_port"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	AsynqConcurrency int `mapstructure:"ASYNQ_CONCURRENCY" validate:"gte=1,lte=1000"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// PipelineURL is the external generation pipeline endpoint. Empty means
	// jobs are queued but never dispatched.
	PipelineURL string `mapstructure:"PIPELINE_URL" validate:"omitempty,url"`
	// PublicURL is the base the pipeline uses for its callbacks.
	PublicURL string `mapstructure:"PUBLIC_URL" validate:"required,url"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST" validate:"gte=1"`
}

// ClientConfig configures the studio CLI and dashboard.
type ClientConfig struct {
	APIURL      string        `mapstructure:"STUDIO_API_URL" validate:"required,url"`
	Token       string        `mapstructure:"STUDIO_TOKEN"`
	DownloadDir string        `mapstructure:"STUDIO_DOWNLOAD_DIR" validate:"required"`
	LogFile     string        `mapstructure:"STUDIO_LOG_FILE" validate:"required"`
	LogLevel    string        `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	HTTPTimeout time.Duration `mapstructure:"STUDIO_HTTP_TIMEOUT" validate:"required"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

func newViper(keys []string) *viper.Viper {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	return v
}

func parseDuration(v *viper.Viper, key string, dst *time.Duration) error {
	if s := v.GetString(key); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	v := newViper([]string{
		"APP_ENV",
		"HTTP_ADDR",
		"SHUTDOWN_TIMEOUT",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"DATABASE_URL",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"ASYNQ_CONCURRENCY",
		"GOMAXPROCS",
		"JWT_SECRET",
		"PIPELINE_URL",
		"PUBLIC_URL",
		"RATE_LIMIT_RPS",
		"RATE_LIMIT_BURST",
	})

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ASYNQ_CONCURRENCY", 10)
	v.SetDefault("GOMAXPROCS", 0)
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// Optional config file
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := parseDuration(v, "SHUTDOWN_TIMEOUT", &c.ShutdownTimeout); err != nil {
		return nil, err
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// LoadClient loads the CLI configuration. Every key has a usable default so
// the CLI runs against a local server with no setup.
func LoadClient() (*ClientConfig, error) {
	v := newViper([]string{
		"STUDIO_API_URL",
		"STUDIO_TOKEN",
		"STUDIO_DOWNLOAD_DIR",
		"STUDIO_LOG_FILE",
		"STUDIO_HTTP_TIMEOUT",
		"LOG_LEVEL",
	})

	v.SetDefault("STUDIO_API_URL", "http://localhost:8080")
	v.SetDefault("STUDIO_DOWNLOAD_DIR", ".")
	v.SetDefault("STUDIO_LOG_FILE", filepath.Join(os.TempDir(), "codegen-studio", "studio.log"))
	v.SetDefault("STUDIO_HTTP_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")

	_ = v.ReadInConfig()

	var c ClientConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := parseDuration(v, "STUDIO_HTTP_TIMEOUT", &c.HTTPTimeout); err != nil {
		return nil, err
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

// DefaultJWTSecret signs tokens when JWT_SECRET is unset.
const DefaultJWTSecret = "change-me-in-production-please"

// Secret is the HMAC key for user tokens and pipeline callback tokens.
func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte(DefaultJWTSecret)
	}
	return []byte(c.JWTSecret)
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}
