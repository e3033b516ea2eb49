package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mislam/topinspect/domain"
)

// AuthServiceImpl implements domain.AuthService, composing identity proof,
// existence and conflict checks, and token issuance per entry point.
type AuthServiceImpl struct {
	authRepo        domain.AuthRepository
	userRepo        domain.UserRepository
	otpSvc          domain.OTPService
	oauthVerifier   domain.OAuthVerifier
	tokenSvc        domain.TokenService
	notificationSvc domain.NotificationService
	dispatcher      domain.Dispatcher
}

// NewAuthService creates a new auth orchestrator
func NewAuthService(
	authRepo domain.AuthRepository,
	userRepo domain.UserRepository,
	otpSvc domain.OTPService,
	oauthVerifier domain.OAuthVerifier,
	tokenSvc domain.TokenService,
	notificationSvc domain.NotificationService,
	dispatcher domain.Dispatcher,
) domain.AuthService {
	return &AuthServiceImpl{
		authRepo:        authRepo,
		userRepo:        userRepo,
		otpSvc:          otpSvc,
		oauthVerifier:   oauthVerifier,
		tokenSvc:        tokenSvc,
		notificationSvc: notificationSvc,
		dispatcher:      dispatcher,
	}
}

// PhoneSignup implements domain.AuthService
func (s *AuthServiceImpl) PhoneSignup(ctx context.Context, in domain.PhoneSignupInput) (*domain.TokenPair, error) {
	if err := s.requireValidOtp(ctx, in.Phone, in.Code); err != nil {
		return nil, err
	}

	identity, err := s.authRepo.FindByProviderIdentifier(ctx, domain.ProviderPhone, in.Phone)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}
	if identity != nil {
		if _, err := s.userRepo.FindByID(ctx, identity.ID); err == nil {
			return nil, domain.ErrUserExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up profile: %w", err)
		}
		// Identity without profile is residue from a failed signup.
		return nil, domain.ErrProfileIncomplete
	}

	newIdentity := &domain.AuthIdentity{Provider: domain.ProviderPhone, Identifier: in.Phone}
	if err := s.createIdentityWithProfile(ctx, newIdentity, in.Name, in.Gender, in.BirthYear); err != nil {
		return nil, err
	}

	return s.tokenSvc.IssueTokenPair(ctx, newIdentity.ID, in.DeviceInfo)
}

// PhoneLogin implements domain.AuthService
func (s *AuthServiceImpl) PhoneLogin(ctx context.Context, in domain.PhoneLoginInput) (*domain.TokenPair, error) {
	if err := s.requireValidOtp(ctx, in.Phone, in.Code); err != nil {
		return nil, err
	}

	identity, err := s.authRepo.FindByProviderIdentifier(ctx, domain.ProviderPhone, in.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if _, err := s.userRepo.FindByID(ctx, identity.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrProfileIncomplete
		}
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	return s.tokenSvc.IssueTokenPair(ctx, identity.ID, in.DeviceInfo)
}

// OAuthSignIn implements domain.AuthService. For an unrecognized subject no
// identity row is created: the verified provider identity is handed back to
// the client, which completes profile collection via OAuthSignup.
func (s *AuthServiceImpl) OAuthSignIn(ctx context.Context, provider domain.AuthProvider, idToken string, deviceInfo *string) (*domain.OAuthSignInResult, error) {
	claims, err := s.oauthVerifier.Verify(ctx, provider, idToken)
	if err != nil {
		return nil, err
	}
	if provider == domain.ProviderGoogle && claims.Email == "" {
		return nil, &domain.OAuthVerificationError{Provider: provider, Reason: "token missing email"}
	}

	identity, err := s.authRepo.FindByProviderIdentifier(ctx, provider, claims.Subject)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if identity != nil {
		pair, err := s.signInExistingIdentity(ctx, identity, claims.Email, deviceInfo)
		if err != nil {
			return nil, err
		}
		return &domain.OAuthSignInResult{Tokens: pair, Provider: provider, ProviderID: claims.Subject, Email: claims.Email}, nil
	}

	if err := s.checkEmailConflict(ctx, provider, claims.Email); err != nil {
		return nil, err
	}

	return &domain.OAuthSignInResult{
		NeedsSignup: true,
		Provider:    provider,
		ProviderID:  claims.Subject,
		Email:       claims.Email,
	}, nil
}

// OAuthSignup implements domain.AuthService. Existence and conflict checks
// are re-run server-side; a handoff that raced a successful sign-in simply
// resolves to the existing identity.
func (s *AuthServiceImpl) OAuthSignup(ctx context.Context, in domain.OAuthSignupInput) (*domain.TokenPair, error) {
	identity, err := s.authRepo.FindByProviderIdentifier(ctx, in.Provider, in.ProviderID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if identity != nil {
		email := ""
		if in.Email != nil {
			email = *in.Email
		}
		return s.signInExistingIdentity(ctx, identity, email, in.DeviceInfo)
	}

	email := ""
	if in.Email != nil {
		email = *in.Email
	}
	if err := s.checkEmailConflict(ctx, in.Provider, email); err != nil {
		return nil, err
	}

	newIdentity := &domain.AuthIdentity{
		Provider:   in.Provider,
		Identifier: in.ProviderID,
		Email:      in.Email,
	}
	if err := s.createIdentityWithProfile(ctx, newIdentity, in.Name, in.Gender, in.BirthYear); err != nil {
		return nil, err
	}

	if email != "" {
		to, name := email, in.Name
		s.dispatcher.Dispatch("welcome_email", func(ctx context.Context) error {
			return s.notificationSvc.SendEmail(to, "Welcome!", fmt.Sprintf("Hi %s, your account is ready.", name))
		})
	}

	return s.tokenSvc.IssueTokenPair(ctx, newIdentity.ID, in.DeviceInfo)
}

// Profile implements domain.AuthService
func (s *AuthServiceImpl) Profile(ctx context.Context, authID string) (*domain.UserProfile, error) {
	return s.userRepo.FindByID(ctx, authID)
}

// requireValidOtp maps every non-valid verification outcome to its caller
// facing error.
func (s *AuthServiceImpl) requireValidOtp(ctx context.Context, phone, code string) error {
	result, err := s.otpSvc.Verify(ctx, phone, code)
	if err != nil {
		return err
	}
	switch result {
	case domain.OtpValid:
		return nil
	case domain.OtpExpired:
		return domain.ErrOTPExpired
	case domain.OtpMaxAttempts:
		return domain.ErrOTPMaxAttempts
	case domain.OtpInvalid:
		return domain.ErrOTPInvalid
	default:
		return domain.ErrUnauthorized
	}
}

// signInExistingIdentity enforces the profile consistency guard, backfills a
// previously unset email and issues a fresh token pair.
func (s *AuthServiceImpl) signInExistingIdentity(ctx context.Context, identity *domain.AuthIdentity, email string, deviceInfo *string) (*domain.TokenPair, error) {
	if _, err := s.userRepo.FindByID(ctx, identity.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrProfileIncomplete
		}
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	if email != "" && identity.Email == nil {
		if err := s.authRepo.UpdateEmail(ctx, identity.ID, email); err != nil {
			return nil, fmt.Errorf("failed to backfill email: %w", err)
		}
	}

	return s.tokenSvc.IssueTokenPair(ctx, identity.ID, deviceInfo)
}

// checkEmailConflict rejects an email already bound to an identity on a
// different provider.
func (s *AuthServiceImpl) checkEmailConflict(ctx context.Context, provider domain.AuthProvider, email string) error {
	if email == "" {
		return nil
	}
	existing, err := s.authRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up email: %w", err)
	}
	if existing.Provider != provider {
		return &domain.EmailConflictError{Provider: existing.Provider}
	}
	return nil
}

// createIdentityWithProfile is an explicit two-phase create: identity first,
// then profile, with a best-effort compensating delete of the identity when
// the profile insert fails. The delete runs in the background and the
// original error is returned either way.
func (s *AuthServiceImpl) createIdentityWithProfile(ctx context.Context, identity *domain.AuthIdentity, name, gender string, birthYear int) error {
	if err := s.authRepo.Create(ctx, identity); err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	profile := &domain.UserProfile{
		ID:        identity.ID,
		Name:      name,
		Gender:    gender,
		BirthYear: birthYear,
	}
	if err := s.userRepo.Create(ctx, profile); err != nil {
		id := identity.ID
		s.dispatcher.Dispatch("identity_rollback", func(ctx context.Context) error {
			return s.authRepo.Delete(ctx, id)
		})
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}
