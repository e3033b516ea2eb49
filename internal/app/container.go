package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/mislam/topinspect/domain"
	"github.com/mislam/topinspect/internal/config"
	"github.com/mislam/topinspect/internal/infrastructure/auth"
	"github.com/mislam/topinspect/internal/infrastructure/database"
	"github.com/mislam/topinspect/internal/infrastructure/notifications"
	"github.com/mislam/topinspect/internal/infrastructure/repositories"
	"github.com/mislam/topinspect/internal/services"
)

// backgroundTaskTimeout bounds fire-and-forget work (SMS, welcome email,
// compensating deletes).
const backgroundTaskTimeout = 30 * time.Second

// Container holds all dependencies
type Container struct {
	Config *config.Config

	DB          *gorm.DB
	RedisClient *database.RedisClient

	AuthRepo  domain.AuthRepository
	UserRepo  domain.UserRepository
	OtpRepo   domain.OtpRepository
	TokenRepo domain.TokenRepository

	Dispatcher      domain.Dispatcher
	NotificationSvc domain.NotificationService
	TokenSvc        domain.TokenService
	OTPSvc          domain.OTPService
	RefreshSvc      domain.RefreshService
	AuthSvc         domain.AuthService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	db, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	c := &Container{Config: cfg, DB: db, RedisClient: rdb}
	c.initRepositories()
	c.initServices()
	return c, nil
}

func (c *Container) initRepositories() {
	c.AuthRepo = repositories.NewAuthRepository(c.DB)
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.OtpRepo = repositories.NewOtpRepository(c.DB)
	c.TokenRepo = repositories.NewTokenRepository(c.DB)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.Dispatcher = services.NewAsyncDispatcher(backgroundTaskTimeout)
	c.NotificationSvc = notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL, c.TokenRepo)

	resolver := auth.NewJWKSResolver(map[domain.AuthProvider]string{
		domain.ProviderGoogle: cfg.GoogleJWKSURL,
		domain.ProviderApple:  cfg.AppleJWKSURL,
	}, c.RedisClient.Client, cfg.JWKSCacheTTL)

	// The unverified escape hatch never survives into release mode.
	allowUnverified := cfg.AllowUnverifiedOAuth && cfg.GinMode != "release"
	oauthVerifier := auth.NewOAuthVerifier(resolver, allowUnverified)

	c.OTPSvc = services.NewOTPService(c.OtpRepo, c.AuthRepo, c.UserRepo, c.NotificationSvc, c.Dispatcher, services.OTPConfig{
		Length:      cfg.OTP_Length,
		TTL:         cfg.OTP_TTL,
		MaxAttempts: cfg.OTP_MaxAttempts,
		Cooldown:    cfg.OTP_Cooldown,
	})

	c.RefreshSvc = services.NewRefreshService(c.TokenRepo, c.AuthRepo, c.TokenSvc, services.RefreshConfig{
		TTL:      cfg.RefreshTTL,
		Cooldown: cfg.RefreshCooldown,
	})

	c.AuthSvc = services.NewAuthService(c.AuthRepo, c.UserRepo, c.OTPSvc, oauthVerifier, c.TokenSvc, c.NotificationSvc, c.Dispatcher)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
