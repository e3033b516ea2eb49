package mocks

import (
	"context"

	"github.com/mislam/topinspect/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	RequestFunc func(ctx context.Context, phone string, purpose domain.OtpPurpose) (bool, error)
	VerifyFunc  func(ctx context.Context, phone, code string) (domain.OtpVerification, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Request asks for a one-time code to be sent
func (m *MockOTPService) Request(ctx context.Context, phone string, purpose domain.OtpPurpose) (bool, error) {
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, phone, purpose)
	}
	// Default behavior: code sent, user exists
	return true, nil
}

// Verify checks a submitted code
func (m *MockOTPService) Verify(ctx context.Context, phone, code string) (domain.OtpVerification, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, phone, code)
	}
	// Default behavior: valid
	return domain.OtpValid, nil
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
