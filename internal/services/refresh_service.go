package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mislam/topinspect/domain"
)

// RefreshServiceImpl implements domain.RefreshService. Rotation relies on a
// conditional single-row update keyed on the presented token value rather
// than any in-process lock: concurrent rotations of one token produce
// exactly one winner.
type RefreshServiceImpl struct {
	tokenRepo domain.TokenRepository
	authRepo  domain.AuthRepository
	tokenSvc  domain.TokenService
	config    RefreshConfig
}

type RefreshConfig struct {
	TTL      time.Duration
	Cooldown time.Duration
}

// NewRefreshService creates a new refresh rotator
func NewRefreshService(
	tokenRepo domain.TokenRepository,
	authRepo domain.AuthRepository,
	tokenSvc domain.TokenService,
	config RefreshConfig,
) domain.RefreshService {
	return &RefreshServiceImpl{
		tokenRepo: tokenRepo,
		authRepo:  authRepo,
		tokenSvc:  tokenSvc,
		config:    config,
	}
}

// Rotate implements domain.RefreshService. Missing, revoked and expired
// tokens all collapse to ErrInvalidRefreshToken so a caller cannot probe
// which check failed.
func (s *RefreshServiceImpl) Rotate(ctx context.Context, token string) (*domain.TokenPair, error) {
	row, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	now := time.Now()
	if row.RevokedAt != nil || row.ExpiresAt.Before(now) {
		return nil, domain.ErrInvalidRefreshToken
	}

	if _, err := s.authRepo.FindByID(ctx, row.AuthID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	// Bounds damage from a stolen-but-valid token being hammered, and from
	// client retry storms.
	if now.Sub(row.LastUsedAt) < s.config.Cooldown {
		return nil, domain.ErrRefreshRateLimited
	}

	newToken, err := s.tokenSvc.IssueRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	rotated, err := s.tokenRepo.Rotate(ctx, token, newToken, now.Add(s.config.TTL), now)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !rotated {
		// Lost the race against a concurrent rotation or revocation.
		return nil, domain.ErrInvalidRefreshToken
	}

	accessToken, err := s.tokenSvc.IssueAccessToken(row.AuthID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: newToken}, nil
}

// Logout implements domain.RefreshService. Revocation is terminal; revoking
// an unknown or already revoked token is unauthorized.
func (s *RefreshServiceImpl) Logout(ctx context.Context, token string) error {
	revoked, err := s.tokenRepo.Revoke(ctx, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if !revoked {
		return domain.ErrUnauthorized
	}
	return nil
}
