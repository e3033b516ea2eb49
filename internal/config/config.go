package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	AccessTTL string `yaml:"access_ttl"`
}

type OTPConfig struct {
	TTL         string `yaml:"ttl"`
	Length      int    `yaml:"length"`
	MaxAttempts int    `yaml:"max_attempts"`
	Cooldown    string `yaml:"cooldown"`
}

type RefreshConfig struct {
	TTL      string `yaml:"ttl"`
	Cooldown string `yaml:"cooldown"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type OAuthConfig struct {
	GoogleJWKSURL string `yaml:"google_jwks_url"`
	AppleJWKSURL  string `yaml:"apple_jwks_url"`
	JWKSCacheTTL  string `yaml:"jwks_cache_ttl"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	OAuth    OAuthConfig    `yaml:"oauth"`
}

type Config struct {
	Port    string
	GinMode string

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	AccessTTL time.Duration

	OTP_TTL         time.Duration
	OTP_Length      int
	OTP_MaxAttempts int
	OTP_Cooldown    time.Duration

	RefreshTTL      time.Duration
	RefreshCooldown time.Duration

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	GoogleJWKSURL string
	AppleJWKSURL  string
	JWKSCacheTTL  time.Duration

	// AllowUnverifiedOAuth is a local-development escape hatch for networks
	// where provider key endpoints are unreachable. Never enabled by default
	// and ignored in release mode.
	AllowUnverifiedOAuth bool
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accessTTL, err := time.ParseDuration(configFile.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(configFile.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	otpCooldown, err := time.ParseDuration(configFile.OTP.Cooldown)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP cooldown: %w", err)
	}

	refreshTTL, err := time.ParseDuration(configFile.Refresh.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh TTL: %w", err)
	}

	refreshCooldown, err := time.ParseDuration(configFile.Refresh.Cooldown)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh cooldown: %w", err)
	}

	jwksCacheTTL, err := time.ParseDuration(configFile.OAuth.JWKSCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWKS cache TTL: %w", err)
	}

	redisDB := configFile.Redis.DB
	if v := os.Getenv("REDIS_DB"); v != "" {
		redisDB, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}

	return &Config{
		Port:                 env("PORT", fmt.Sprintf("%d", configFile.App.Port)),
		GinMode:              env("GIN_MODE", configFile.App.GinMode),
		DSN:                  env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:            env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:        env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:              redisDB,
		JWTSecret:            env("JWT_SECRET", configFile.JWT.Secret),
		AccessTTL:            accessTTL,
		OTP_TTL:              otpTTL,
		OTP_Length:           configFile.OTP.Length,
		OTP_MaxAttempts:      configFile.OTP.MaxAttempts,
		OTP_Cooldown:         otpCooldown,
		RefreshTTL:           refreshTTL,
		RefreshCooldown:      refreshCooldown,
		TwilioSID:            env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:          env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:           env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
		GoogleJWKSURL:        configFile.OAuth.GoogleJWKSURL,
		AppleJWKSURL:         configFile.OAuth.AppleJWKSURL,
		JWKSCacheTTL:         jwksCacheTTL,
		AllowUnverifiedOAuth: env("OAUTH_ALLOW_UNVERIFIED", "false") == "true",
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
