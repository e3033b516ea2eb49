package mocks

import (
	"context"

	"github.com/mislam/topinspect/domain"
)

// MockOAuthVerifier implements domain.OAuthVerifier interface for testing
type MockOAuthVerifier struct {
	VerifyFunc func(ctx context.Context, provider domain.AuthProvider, idToken string) (*domain.OAuthClaims, error)
}

// NewMockOAuthVerifier creates a new MockOAuthVerifier with default behaviors
func NewMockOAuthVerifier() *MockOAuthVerifier {
	return &MockOAuthVerifier{}
}

// Verify validates a provider identity token
func (m *MockOAuthVerifier) Verify(ctx context.Context, provider domain.AuthProvider, idToken string) (*domain.OAuthClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, provider, idToken)
	}
	// Default behavior: verified subject with a stable email
	return &domain.OAuthClaims{Provider: provider, Subject: "provider-sub-1", Email: "user@example.com"}, nil
}

// Compile-time interface compliance verification
var _ domain.OAuthVerifier = (*MockOAuthVerifier)(nil)
