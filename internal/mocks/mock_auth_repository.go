package mocks

import (
	"context"

	"github.com/mislam/topinspect/domain"
)

// MockAuthRepository implements domain.AuthRepository interface for testing
type MockAuthRepository struct {
	CreateFunc                   func(ctx context.Context, identity *domain.AuthIdentity) error
	FindByProviderIdentifierFunc func(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error)
	FindByEmailFunc              func(ctx context.Context, email string) (*domain.AuthIdentity, error)
	FindByIDFunc                 func(ctx context.Context, id string) (*domain.AuthIdentity, error)
	UpdateEmailFunc              func(ctx context.Context, id, email string) error
	DeleteFunc                   func(ctx context.Context, id string) error
}

// NewMockAuthRepository creates a new MockAuthRepository with default behaviors
func NewMockAuthRepository() *MockAuthRepository {
	return &MockAuthRepository{}
}

// Create creates a new auth identity
func (m *MockAuthRepository) Create(ctx context.Context, identity *domain.AuthIdentity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, identity)
	}
	// Default behavior: success
	return nil
}

// FindByProviderIdentifier finds an identity by provider and identifier
func (m *MockAuthRepository) FindByProviderIdentifier(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error) {
	if m.FindByProviderIdentifierFunc != nil {
		return m.FindByProviderIdentifierFunc(ctx, provider, identifier)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByEmail finds an identity by email
func (m *MockAuthRepository) FindByEmail(ctx context.Context, email string) (*domain.AuthIdentity, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds an identity by ID
func (m *MockAuthRepository) FindByID(ctx context.Context, id string) (*domain.AuthIdentity, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// UpdateEmail updates the email on an existing identity
func (m *MockAuthRepository) UpdateEmail(ctx context.Context, id, email string) error {
	if m.UpdateEmailFunc != nil {
		return m.UpdateEmailFunc(ctx, id, email)
	}
	// Default behavior: success
	return nil
}

// Delete removes an identity and any attached profile
func (m *MockAuthRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthRepository = (*MockAuthRepository)(nil)
