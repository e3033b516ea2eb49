package mocks

import (
	"context"
	"time"

	"github.com/mislam/topinspect/domain"
)

// MockTokenRepository implements domain.TokenRepository interface for testing
type MockTokenRepository struct {
	CreateFunc      func(ctx context.Context, token *domain.RefreshToken) error
	FindByTokenFunc func(ctx context.Context, token string) (*domain.RefreshToken, error)
	RotateFunc      func(ctx context.Context, oldToken, newToken string, expiresAt, lastUsedAt time.Time) (bool, error)
	RevokeFunc      func(ctx context.Context, token string, at time.Time) (bool, error)
}

// NewMockTokenRepository creates a new MockTokenRepository with default behaviors
func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{}
}

// Create persists a new refresh token row
func (m *MockTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, token)
	}
	// Default behavior: success
	return nil
}

// FindByToken finds a refresh token row by its opaque value
func (m *MockTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	if m.FindByTokenFunc != nil {
		return m.FindByTokenFunc(ctx, token)
	}
	// Default behavior: not found
	return nil, domain.ErrRefreshTokenNotFound
}

// Rotate conditionally replaces the token value on an unrevoked row
func (m *MockTokenRepository) Rotate(ctx context.Context, oldToken, newToken string, expiresAt, lastUsedAt time.Time) (bool, error) {
	if m.RotateFunc != nil {
		return m.RotateFunc(ctx, oldToken, newToken, expiresAt, lastUsedAt)
	}
	// Default behavior: rotation won
	return true, nil
}

// Revoke conditionally marks an unrevoked row revoked
func (m *MockTokenRepository) Revoke(ctx context.Context, token string, at time.Time) (bool, error) {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, token, at)
	}
	// Default behavior: revocation won
	return true, nil
}

// Compile-time interface compliance verification
var _ domain.TokenRepository = (*MockTokenRepository)(nil)
