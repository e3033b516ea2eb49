package mocks

import (
	"context"

	"github.com/mislam/topinspect/domain"
)

// MockRefreshService implements domain.RefreshService interface for testing
type MockRefreshService struct {
	RotateFunc func(ctx context.Context, token string) (*domain.TokenPair, error)
	LogoutFunc func(ctx context.Context, token string) error
}

// NewMockRefreshService creates a new MockRefreshService with default behaviors
func NewMockRefreshService() *MockRefreshService {
	return &MockRefreshService{}
}

// Rotate exchanges a refresh token for a fresh pair
func (m *MockRefreshService) Rotate(ctx context.Context, token string) (*domain.TokenPair, error) {
	if m.RotateFunc != nil {
		return m.RotateFunc(ctx, token)
	}
	// Default behavior: fixed pair
	return &domain.TokenPair{AccessToken: "access-token-2", RefreshToken: "refresh-token-2"}, nil
}

// Logout revokes a refresh token
func (m *MockRefreshService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.RefreshService = (*MockRefreshService)(nil)
