package mocks

import (
	"context"
	"crypto"

	"github.com/mislam/topinspect/domain"
)

// MockKeyResolver implements domain.KeyResolver interface for testing
type MockKeyResolver struct {
	ResolveKeyFunc func(ctx context.Context, provider domain.AuthProvider, kid string) (crypto.PublicKey, error)
}

// NewMockKeyResolver creates a new MockKeyResolver with default behaviors
func NewMockKeyResolver() *MockKeyResolver {
	return &MockKeyResolver{}
}

// ResolveKey resolves a provider signing key by key ID
func (m *MockKeyResolver) ResolveKey(ctx context.Context, provider domain.AuthProvider, kid string) (crypto.PublicKey, error) {
	if m.ResolveKeyFunc != nil {
		return m.ResolveKeyFunc(ctx, provider, kid)
	}
	// Default behavior: no key material configured
	return nil, &domain.OAuthVerificationError{Provider: provider, Reason: "unknown signing key"}
}

// Compile-time interface compliance verification
var _ domain.KeyResolver = (*MockKeyResolver)(nil)
