package mocks

import (
	"context"

	"github.com/mislam/topinspect/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc   func(ctx context.Context, profile *domain.UserProfile) error
	FindByIDFunc func(ctx context.Context, id string) (*domain.UserProfile, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user profile
func (m *MockUserRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, profile)
	}
	// Default behavior: success
	return nil
}

// FindByID finds a profile by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
