package mocks

import (
	"context"

	"github.com/mislam/topinspect/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	PhoneSignupFunc func(ctx context.Context, in domain.PhoneSignupInput) (*domain.TokenPair, error)
	PhoneLoginFunc  func(ctx context.Context, in domain.PhoneLoginInput) (*domain.TokenPair, error)
	OAuthSignInFunc func(ctx context.Context, provider domain.AuthProvider, idToken string, deviceInfo *string) (*domain.OAuthSignInResult, error)
	OAuthSignupFunc func(ctx context.Context, in domain.OAuthSignupInput) (*domain.TokenPair, error)
	ProfileFunc     func(ctx context.Context, authID string) (*domain.UserProfile, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// PhoneSignup registers a phone identity with a profile
func (m *MockAuthService) PhoneSignup(ctx context.Context, in domain.PhoneSignupInput) (*domain.TokenPair, error) {
	if m.PhoneSignupFunc != nil {
		return m.PhoneSignupFunc(ctx, in)
	}
	// Default behavior: fixed pair
	return &domain.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
}

// PhoneLogin authenticates an existing phone identity
func (m *MockAuthService) PhoneLogin(ctx context.Context, in domain.PhoneLoginInput) (*domain.TokenPair, error) {
	if m.PhoneLoginFunc != nil {
		return m.PhoneLoginFunc(ctx, in)
	}
	// Default behavior: fixed pair
	return &domain.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
}

// OAuthSignIn verifies a provider token and signs in or hands off to signup
func (m *MockAuthService) OAuthSignIn(ctx context.Context, provider domain.AuthProvider, idToken string, deviceInfo *string) (*domain.OAuthSignInResult, error) {
	if m.OAuthSignInFunc != nil {
		return m.OAuthSignInFunc(ctx, provider, idToken, deviceInfo)
	}
	// Default behavior: existing identity, fixed pair
	return &domain.OAuthSignInResult{
		Tokens: &domain.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
	}, nil
}

// OAuthSignup completes a needs-signup handoff
func (m *MockAuthService) OAuthSignup(ctx context.Context, in domain.OAuthSignupInput) (*domain.TokenPair, error) {
	if m.OAuthSignupFunc != nil {
		return m.OAuthSignupFunc(ctx, in)
	}
	// Default behavior: fixed pair
	return &domain.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
}

// Profile loads the profile for an authenticated identity
func (m *MockAuthService) Profile(ctx context.Context, authID string) (*domain.UserProfile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, authID)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
