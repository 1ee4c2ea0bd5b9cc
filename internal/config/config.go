package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
)

var (
	ErrMissingSigningKey   = errors.New("JWT_SECRET is required")
	ErrSigningKeyTooShort  = fmt.Errorf("JWT_SECRET must be at least %d bytes", constants.MinSigningKeyBytes)
	ErrInvalidAccessTTL    = fmt.Errorf("ACCESS_TOKEN_MINUTES must be between 1 and %d", constants.MaxAccessTokenMinutes)
	ErrInvalidRefreshTTL   = fmt.Errorf("REFRESH_TOKEN_DAYS must be between 1 and %d", constants.MaxRefreshTokenDays)
	ErrUnknownDriver       = errors.New("DB_DRIVER must be one of mysql, postgres, sqlite")
	ErrUnknownCacheBackend = errors.New("CACHE_BACKEND must be one of memory, redis, none")
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	CacheBackend       string
	CacheSize          int
	PermissionCacheTTL time.Duration
	RedisHost          string
	RedisPort          string

	AuthRateLimitPerSecond float64
	AuthRateLimitBurst     int

	JWT JWTConfig
}

// JWTConfig holds the credential signing settings.
type JWTConfig struct {
	Secret             string
	Issuer             string
	Audience           string
	AccessTokenMinutes int
	RefreshTokenDays   int
}

func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.AccessTokenMinutes) * time.Minute
}

func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTokenDays) * 24 * time.Hour
}

// Validate checks the signing settings. Startup must abort on error.
func (j JWTConfig) Validate() error {
	if j.Secret == "" {
		return ErrMissingSigningKey
	}
	if len(j.Secret) < constants.MinSigningKeyBytes {
		return ErrSigningKeyTooShort
	}
	if j.AccessTokenMinutes < 1 || j.AccessTokenMinutes > constants.MaxAccessTokenMinutes {
		return ErrInvalidAccessTTL
	}
	if j.RefreshTokenDays < 1 || j.RefreshTokenDays > constants.MaxRefreshTokenDays {
		return ErrInvalidRefreshTTL
	}
	if strings.TrimSpace(j.Issuer) == "" || strings.TrimSpace(j.Audience) == "" {
		return errors.New("JWT_ISSUER and JWT_AUDIENCE must not be empty")
	}
	return nil
}

// Load reads configuration from the environment and an optional config.yaml.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:     v.GetString("PORT"),
		GinMode:  v.GetString("GIN_MODE"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),

		CacheBackend:       strings.ToLower(v.GetString("CACHE_BACKEND")),
		CacheSize:          v.GetInt("CACHE_SIZE"),
		PermissionCacheTTL: v.GetDuration("PERMISSION_CACHE_TTL"),
		RedisHost:          v.GetString("REDIS_HOST"),
		RedisPort:          v.GetString("REDIS_PORT"),

		AuthRateLimitPerSecond: v.GetFloat64("AUTH_RATE_LIMIT_PER_SECOND"),
		AuthRateLimitBurst:     v.GetInt("AUTH_RATE_LIMIT_BURST"),

		JWT: JWTConfig{
			Secret:             v.GetString("JWT_SECRET"),
			Issuer:             v.GetString("JWT_ISSUER"),
			Audience:           v.GetString("JWT_AUDIENCE"),
			AccessTokenMinutes: v.GetInt("ACCESS_TOKEN_MINUTES"),
			RefreshTokenDays:   v.GetInt("REFRESH_TOKEN_DAYS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return err
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return ErrUnknownDriver
	}
	switch c.CacheBackend {
	case "memory", "redis", "none":
	default:
		return ErrUnknownCacheBackend
	}
	if c.PermissionCacheTTL <= 0 {
		return errors.New("PERMISSION_CACHE_TTL must be positive")
	}
	return nil
}

// RedisAddr returns host:port for the Redis cache backend.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "coreuser")
	v.SetDefault("DB_PASSWORD", "corepassword")
	v.SetDefault("DB_NAME", "enterprise_core")

	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("CACHE_SIZE", constants.DefaultCacheSize)
	v.SetDefault("PERMISSION_CACHE_TTL", constants.DefaultPermissionCacheTTL)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")

	v.SetDefault("AUTH_RATE_LIMIT_PER_SECOND", 5)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 10)

	v.SetDefault("JWT_ISSUER", constants.DefaultIssuer)
	v.SetDefault("JWT_AUDIENCE", constants.DefaultAudience)
	v.SetDefault("ACCESS_TOKEN_MINUTES", constants.DefaultAccessTokenMinutes)
	v.SetDefault("REFRESH_TOKEN_DAYS", constants.DefaultRefreshTokenDays)
}
