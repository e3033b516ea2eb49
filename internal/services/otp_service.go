package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mislam/topinspect/domain"
)

// OTPServiceImpl implements domain.OTPService with challenges persisted in
// the identity store, one live challenge per phone.
type OTPServiceImpl struct {
	otpRepo         domain.OtpRepository
	authRepo        domain.AuthRepository
	userRepo        domain.UserRepository
	notificationSvc domain.NotificationService
	dispatcher      domain.Dispatcher
	config          OTPConfig
}

type OTPConfig struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
	Cooldown    time.Duration
}

// NewOTPService creates a new OTP service
func NewOTPService(
	otpRepo domain.OtpRepository,
	authRepo domain.AuthRepository,
	userRepo domain.UserRepository,
	notificationSvc domain.NotificationService,
	dispatcher domain.Dispatcher,
	config OTPConfig,
) domain.OTPService {
	return &OTPServiceImpl{
		otpRepo:         otpRepo,
		authRepo:        authRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		dispatcher:      dispatcher,
		config:          config,
	}
}

// Request implements domain.OTPService. For login against an unknown phone
// it reports userExists=false without generating or sending a code, so the
// response is indistinguishable in shape and timing from the known-phone
// case. For signup against a known phone it fails with ErrUserExists.
func (s *OTPServiceImpl) Request(ctx context.Context, phone string, purpose domain.OtpPurpose) (bool, error) {
	existing, err := s.otpRepo.FindByPhone(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("failed to load otp challenge: %w", err)
	}
	if existing != nil && time.Since(existing.CreatedAt) < s.config.Cooldown {
		return false, domain.ErrOTPRateLimited
	}

	userExists, err := s.profileExists(ctx, phone)
	if err != nil {
		return false, err
	}

	switch purpose {
	case domain.OtpPurposeLogin:
		if !userExists {
			return false, nil
		}
	case domain.OtpPurposeSignup:
		if userExists {
			return true, domain.ErrUserExists
		}
	}

	code, err := s.generateCode()
	if err != nil {
		return userExists, fmt.Errorf("failed to generate otp code: %w", err)
	}

	now := time.Now()
	challenge := &domain.OtpChallenge{
		Phone:     phone,
		Code:      code,
		Attempts:  0,
		ExpiresAt: now.Add(s.config.TTL),
		CreatedAt: now,
	}
	if err := s.otpRepo.Upsert(ctx, challenge); err != nil {
		return userExists, fmt.Errorf("failed to store otp challenge: %w", err)
	}

	// Delivery never blocks or fails the request.
	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes()))
	s.dispatcher.Dispatch("otp_sms", func(ctx context.Context) error {
		return s.notificationSvc.SendSMS(phone, message)
	})

	return userExists, nil
}

// Verify implements domain.OTPService. Every terminal outcome deletes the
// challenge row: a code is usable exactly once and no row outlives its
// decision.
func (s *OTPServiceImpl) Verify(ctx context.Context, phone, code string) (domain.OtpVerification, error) {
	challenge, err := s.otpRepo.FindByPhone(ctx, phone)
	if err != nil {
		return domain.OtpUnknown, fmt.Errorf("failed to load otp challenge: %w", err)
	}
	if challenge == nil {
		return domain.OtpNotFound, nil
	}

	if challenge.ExpiresAt.Before(time.Now()) {
		if err := s.otpRepo.Delete(ctx, phone); err != nil {
			return domain.OtpUnknown, fmt.Errorf("failed to delete expired otp: %w", err)
		}
		return domain.OtpExpired, nil
	}

	if challenge.Attempts >= s.config.MaxAttempts {
		if err := s.otpRepo.Delete(ctx, phone); err != nil {
			return domain.OtpUnknown, fmt.Errorf("failed to delete exhausted otp: %w", err)
		}
		return domain.OtpMaxAttempts, nil
	}

	if challenge.Code != code {
		attempts, err := s.otpRepo.IncrementAttempts(ctx, phone)
		if err != nil {
			return domain.OtpUnknown, fmt.Errorf("failed to increment otp attempts: %w", err)
		}
		if attempts >= s.config.MaxAttempts {
			if err := s.otpRepo.Delete(ctx, phone); err != nil {
				return domain.OtpUnknown, fmt.Errorf("failed to delete exhausted otp: %w", err)
			}
			return domain.OtpMaxAttempts, nil
		}
		return domain.OtpInvalid, nil
	}

	if err := s.otpRepo.Delete(ctx, phone); err != nil {
		return domain.OtpUnknown, fmt.Errorf("failed to delete used otp: %w", err)
	}
	return domain.OtpValid, nil
}

// profileExists reports whether both the phone identity and its profile are
// present.
func (s *OTPServiceImpl) profileExists(ctx context.Context, phone string) (bool, error) {
	identity, err := s.authRepo.FindByProviderIdentifier(ctx, domain.ProviderPhone, phone)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up identity: %w", err)
	}

	if _, err := s.userRepo.FindByID(ctx, identity.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up profile: %w", err)
	}
	return true, nil
}

// generateCode produces Length decimal digits. Each digit comes from a
// single random byte with values >= 250 rejected, so every digit is uniform
// under mod 10.
func (s *OTPServiceImpl) generateCode() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for sb.Len() < s.config.Length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if buf[0] >= 250 {
			continue
		}
		sb.WriteByte('0' + buf[0]%10)
	}
	return sb.String(), nil
}
