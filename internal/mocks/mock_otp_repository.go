package mocks

import (
	"context"

	"github.com/mislam/topinspect/domain"
)

// MockOtpRepository implements domain.OtpRepository interface for testing
type MockOtpRepository struct {
	UpsertFunc            func(ctx context.Context, challenge *domain.OtpChallenge) error
	FindByPhoneFunc       func(ctx context.Context, phone string) (*domain.OtpChallenge, error)
	IncrementAttemptsFunc func(ctx context.Context, phone string) (int, error)
	DeleteFunc            func(ctx context.Context, phone string) error
}

// NewMockOtpRepository creates a new MockOtpRepository with default behaviors
func NewMockOtpRepository() *MockOtpRepository {
	return &MockOtpRepository{}
}

// Upsert stores a challenge, replacing any prior one for the phone
func (m *MockOtpRepository) Upsert(ctx context.Context, challenge *domain.OtpChallenge) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, challenge)
	}
	// Default behavior: success
	return nil
}

// FindByPhone finds a live challenge by phone
func (m *MockOtpRepository) FindByPhone(ctx context.Context, phone string) (*domain.OtpChallenge, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	// Default behavior: no live challenge
	return nil, nil
}

// IncrementAttempts bumps the attempt counter and returns the new count
func (m *MockOtpRepository) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, phone)
	}
	// Default behavior: first failed attempt
	return 1, nil
}

// Delete removes the challenge for a phone
func (m *MockOtpRepository) Delete(ctx context.Context, phone string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, phone)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.OtpRepository = (*MockOtpRepository)(nil)
