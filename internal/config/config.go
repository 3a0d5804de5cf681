package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Search       SearchConfig       `mapstructure:"search"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Uploads      UploadsConfig      `mapstructure:"uploads"`
	Mail         MailConfig         `mapstructure:"mail"`
	Verification VerificationConfig `mapstructure:"verification"`
	Views        ViewsConfig        `mapstructure:"views"`
	Share        ShareConfig        `mapstructure:"share"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the document store
type DatabaseConfig struct {
	Mode          string        `mapstructure:"mode"` // badger or mongo
	Path          string        `mapstructure:"path"`
	MongoURI      string        `mapstructure:"mongo_uri"`
	MongoDatabase string        `mapstructure:"mongo_database"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	JWTExpiry          time.Duration `mapstructure:"jwt_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_token_expiry"`
	BcryptCost         int           `mapstructure:"bcrypt_cost"`
}

// SearchConfig contains search index configuration
type SearchConfig struct {
	IndexPath string `mapstructure:"index_path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// CORSConfig contains CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CacheConfig selects the cache backend
type CacheConfig struct {
	Backend         string        `mapstructure:"backend"` // memory or redis
	DefaultTTL      time.Duration `mapstructure:"default_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// UploadsConfig selects where uploaded files go
type UploadsConfig struct {
	Backend     string `mapstructure:"backend"` // local or s3
	Dir         string `mapstructure:"dir"`
	BaseURL     string `mapstructure:"base_url"`
	MaxSize     int64  `mapstructure:"max_size"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
}

// MailConfig contains SMTP settings; an empty host logs mail instead of sending it
type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// VerificationConfig controls email verification codes
type VerificationConfig struct {
	CodeTTL time.Duration `mapstructure:"code_ttl"`
}

// ViewsConfig controls per-visitor view de-duplication
type ViewsConfig struct {
	VisitorWindow time.Duration `mapstructure:"visitor_window"`
}

// ShareConfig contains the public base URL used in share links
type ShareConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Load loads configuration from file and environment variables
// Priority: ENV vars (.env included) > config.yaml > defaults
func Load(configPaths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{"./configs", "."}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.mode", "badger")
	v.SetDefault("database.path", "./data/inkwell")
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("database.mongo_database", "inkwell")
	v.SetDefault("database.timeout", "10s")

	v.SetDefault("auth.jwt_secret", "") // registered so the env override is seen
	v.SetDefault("auth.jwt_expiry", "720h") // 30 days
	v.SetDefault("auth.refresh_token_expiry", "1440h")
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("search.index_path", "./data/search.bleve")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)

	v.SetDefault("rate_limit.requests_per_minute", 600)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.default_ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("uploads.backend", "local")
	v.SetDefault("uploads.dir", "./uploads")
	v.SetDefault("uploads.base_url", "/uploads")
	v.SetDefault("uploads.max_size", 5*1024*1024)
	v.SetDefault("uploads.s3_bucket", "")
	v.SetDefault("uploads.s3_region", "us-east-1")
	v.SetDefault("uploads.s3_endpoint", "")
	v.SetDefault("uploads.s3_access_key", "")
	v.SetDefault("uploads.s3_secret_key", "")

	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@inkwell.local")

	v.SetDefault("verification.code_ttl", "5m")
	v.SetDefault("views.visitor_window", "24h")
	v.SetDefault("share.base_url", "http://localhost:3000")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.Mode != "debug" && cfg.Server.Mode != "release" && cfg.Server.Mode != "test" {
		return fmt.Errorf("server.mode must be 'debug', 'release' or 'test', got: %s", cfg.Server.Mode)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters long")
	}

	if cfg.Auth.BcryptCost < 10 || cfg.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 10 and 31, got: %d", cfg.Auth.BcryptCost)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got: %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be 'json' or 'text', got: %s", cfg.Logging.Format)
	}

	switch cfg.Database.Mode {
	case "badger":
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required in badger mode")
		}
	case "mongo":
		if cfg.Database.MongoURI == "" || cfg.Database.MongoDatabase == "" {
			return fmt.Errorf("database.mongo_uri and database.mongo_database are required in mongo mode")
		}
	default:
		return fmt.Errorf("database.mode must be 'badger' or 'mongo', got: %s", cfg.Database.Mode)
	}

	if cfg.Search.IndexPath == "" {
		return fmt.Errorf("search.index_path is required")
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got: %s", cfg.Cache.Backend)
	}

	switch cfg.Uploads.Backend {
	case "local":
		if cfg.Uploads.Dir == "" {
			return fmt.Errorf("uploads.dir is required for the local backend")
		}
	case "s3":
		if cfg.Uploads.S3Bucket == "" {
			return fmt.Errorf("uploads.s3_bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("uploads.backend must be 'local' or 's3', got: %s", cfg.Uploads.Backend)
	}

	if cfg.Uploads.MaxSize <= 0 {
		return fmt.Errorf("uploads.max_size must be positive")
	}

	if cfg.Verification.CodeTTL <= 0 {
		return fmt.Errorf("verification.code_ttl must be positive")
	}

	if cfg.Views.VisitorWindow <= 0 {
		return fmt.Errorf("views.visitor_window must be positive")
	}

	return nil
}
