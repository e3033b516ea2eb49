package mocks

import (
	"context"
	"time"

	"github.com/mislam/topinspect/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	IssueAccessTokenFunc    func(authID string) (string, error)
	IssueRefreshTokenFunc   func() (string, error)
	IssueTokenPairFunc      func(ctx context.Context, authID string, deviceInfo *string) (*domain.TokenPair, error)
	ValidateAccessTokenFunc func(token string) (*domain.AccessClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// IssueAccessToken mints an access token for the given identity
func (m *MockTokenService) IssueAccessToken(authID string) (string, error) {
	if m.IssueAccessTokenFunc != nil {
		return m.IssueAccessTokenFunc(authID)
	}
	// Default behavior: fixed token
	return "access-token", nil
}

// IssueRefreshToken generates an opaque refresh token value
func (m *MockTokenService) IssueRefreshToken() (string, error) {
	if m.IssueRefreshTokenFunc != nil {
		return m.IssueRefreshTokenFunc()
	}
	// Default behavior: fixed token
	return "refresh-token", nil
}

// IssueTokenPair mints an access token and persists a refresh token row
func (m *MockTokenService) IssueTokenPair(ctx context.Context, authID string, deviceInfo *string) (*domain.TokenPair, error) {
	if m.IssueTokenPairFunc != nil {
		return m.IssueTokenPairFunc(ctx, authID, deviceInfo)
	}
	// Default behavior: fixed pair
	return &domain.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
}

// ValidateAccessToken parses and verifies an access token
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.AccessClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	// Default behavior: valid claims for a fixed subject
	now := time.Now()
	return &domain.AccessClaims{
		Subject:   "auth-1",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(30 * time.Minute).Unix(),
	}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
