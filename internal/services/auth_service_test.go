package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mislam/topinspect/domain"
	"github.com/mislam/topinspect/internal/mocks"
)

type authServiceFixture struct {
	svc             domain.AuthService
	authRepo        *mocks.MockAuthRepository
	userRepo        *mocks.MockUserRepository
	otpSvc          *mocks.MockOTPService
	oauthVerifier   *mocks.MockOAuthVerifier
	tokenSvc        *mocks.MockTokenService
	notificationSvc *mocks.MockNotificationService
	dispatcher      *mocks.MockDispatcher
}

func createAuthServiceForTest(t *testing.T) *authServiceFixture {
	t.Helper()

	f := &authServiceFixture{
		authRepo:        mocks.NewMockAuthRepository(),
		userRepo:        mocks.NewMockUserRepository(),
		otpSvc:          mocks.NewMockOTPService(),
		oauthVerifier:   mocks.NewMockOAuthVerifier(),
		tokenSvc:        mocks.NewMockTokenService(),
		notificationSvc: mocks.NewMockNotificationService(),
		dispatcher:      mocks.NewMockDispatcher(),
	}
	f.svc = NewAuthService(f.authRepo, f.userRepo, f.otpSvc, f.oauthVerifier, f.tokenSvc, f.notificationSvc, f.dispatcher)
	return f
}

func TestAuthServiceImpl_PhoneSignup(t *testing.T) {
	phone := "+821012345678"
	input := domain.PhoneSignupInput{Phone: phone, Code: "482913", Name: "Test User", Gender: "female", BirthYear: 1992}

	tests := []struct {
		name    string
		setup   func(*authServiceFixture)
		wantErr error
	}{
		{
			name:    "new phone creates identity and profile",
			setup:   func(f *authServiceFixture) {},
			wantErr: nil,
		},
		{
			name: "expired otp is rejected",
			setup: func(f *authServiceFixture) {
				f.otpSvc.VerifyFunc = func(ctx context.Context, phone, code string) (domain.OtpVerification, error) {
					return domain.OtpExpired, nil
				}
			},
			wantErr: domain.ErrOTPExpired,
		},
		{
			name: "exhausted otp is rejected",
			setup: func(f *authServiceFixture) {
				f.otpSvc.VerifyFunc = func(ctx context.Context, phone, code string) (domain.OtpVerification, error) {
					return domain.OtpMaxAttempts, nil
				}
			},
			wantErr: domain.ErrOTPMaxAttempts,
		},
		{
			name: "wrong otp is rejected",
			setup: func(f *authServiceFixture) {
				f.otpSvc.VerifyFunc = func(ctx context.Context, phone, code string) (domain.OtpVerification, error) {
					return domain.OtpInvalid, nil
				}
			},
			wantErr: domain.ErrOTPInvalid,
		},
		{
			name: "absent otp challenge is unauthorized",
			setup: func(f *authServiceFixture) {
				f.otpSvc.VerifyFunc = func(ctx context.Context, phone, code string) (domain.OtpVerification, error) {
					return domain.OtpNotFound, nil
				}
			},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name: "identity with profile already exists",
			setup: func(f *authServiceFixture) {
				f.authRepo.FindByProviderIdentifierFunc = func(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error) {
					return &domain.AuthIdentity{ID: "auth-1", Provider: provider, Identifier: identifier}, nil
				}
				f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.UserProfile, error) {
					return &domain.UserProfile{ID: id}, nil
				}
			},
			wantErr: domain.ErrUserExists,
		},
		{
			name: "identity without profile reports incomplete",
			setup: func(f *authServiceFixture) {
				f.authRepo.FindByProviderIdentifierFunc = func(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error) {
					return &domain.AuthIdentity{ID: "auth-1", Provider: provider, Identifier: identifier}, nil
				}
			},
			wantErr: domain.ErrProfileIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createAuthServiceForTest(t)
			tt.setup(f)

			pair, err := f.svc.PhoneSignup(context.Background(), input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PhoneSignup() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && pair == nil {
				t.Fatal("PhoneSignup() returned nil pair")
			}
		})
	}
}

func TestAuthServiceImpl_PhoneSignupRollsBackIdentityOnProfileFailure(t *testing.T) {
	f := createAuthServiceForTest(t)

	var createdID string
	f.authRepo.CreateFunc = func(ctx context.Context, identity *domain.AuthIdentity) error {
		identity.ID = "auth-new"
		createdID = identity.ID
		return nil
	}
	f.userRepo.CreateFunc = func(ctx context.Context, profile *domain.UserProfile) error {
		return errors.New("profile insert failed")
	}
	var deletedID string
	f.authRepo.DeleteFunc = func(ctx context.Context, id string) error {
		deletedID = id
		return nil
	}

	_, err := f.svc.PhoneSignup(context.Background(), domain.PhoneSignupInput{
		Phone: "+821012345678", Code: "482913", Name: "Test User", Gender: "male", BirthYear: 1990,
	})
	if err == nil {
		t.Fatal("PhoneSignup() error = nil, want profile failure")
	}
	if len(f.dispatcher.Dispatched) != 1 || f.dispatcher.Dispatched[0] != "identity_rollback" {
		t.Fatalf("dispatched = %v, want [identity_rollback]", f.dispatcher.Dispatched)
	}
	if deletedID != createdID {
		t.Errorf("compensating delete removed %q, want %q", deletedID, createdID)
	}
}

func TestAuthServiceImpl_PhoneLogin(t *testing.T) {
	phone := "+821012345678"
	input := domain.PhoneLoginInput{Phone: phone, Code: "482913"}

	tests := []struct {
		name    string
		setup   func(*authServiceFixture)
		wantErr error
	}{
		{
			name: "existing user logs in",
			setup: func(f *authServiceFixture) {
				f.authRepo.FindByProviderIdentifierFunc = func(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error) {
					return &domain.AuthIdentity{ID: "auth-1", Provider: provider, Identifier: identifier}, nil
				}
				f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.UserProfile, error) {
					return &domain.UserProfile{ID: id}, nil
				}
			},
			wantErr: nil,
		},
		{
			name:    "unknown phone is not found",
			setup:   func(f *authServiceFixture) {},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name: "identity without profile reports incomplete",
			setup: func(f *authServiceFixture) {
				f.authRepo.FindByProviderIdentifierFunc = func(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error) {
					return &domain.AuthIdentity{ID: "auth-1", Provider: provider, Identifier: identifier}, nil
				}
			},
			wantErr: domain.ErrProfileIncomplete,
		},
		{
			name: "invalid otp blocks login",
			setup: func(f *authServiceFixture) {
				f.otpSvc.VerifyFunc = func(ctx context.Context, phone, code string) (domain.OtpVerification, error) {
					return domain.OtpInvalid, nil
				}
			},
			wantErr: domain.ErrOTPInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createAuthServiceForTest(t)
			tt.setup(f)

			pair, err := f.svc.PhoneLogin(context.Background(), input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PhoneLogin() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && pair == nil {
				t.Fatal("PhoneLogin() returned nil pair")
			}
		})
	}
}

func TestAuthServiceImpl_OAuthSignIn(t *testing.T) {
	t.Run("unknown subject returns needs signup without creating a row", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.oauthVerifier.VerifyFunc = func(ctx context.Context, provider domain.AuthProvider, idToken string) (*domain.OAuthClaims, error) {
			return &domain.OAuthClaims{Provider: provider, Subject: "google-sub-1", Email: "new@example.com"}, nil
		}
		created := false
		f.authRepo.CreateFunc = func(ctx context.Context, identity *domain.AuthIdentity) error {
			created = true
			return nil
		}

		res, err := f.svc.OAuthSignIn(context.Background(), domain.ProviderGoogle, "id-token", nil)
		if err != nil {
			t.Fatalf("OAuthSignIn() error = %v", err)
		}
		if !res.NeedsSignup {
			t.Fatal("OAuthSignIn() NeedsSignup = false, want true")
		}
		if res.Provider != domain.ProviderGoogle || res.ProviderID != "google-sub-1" || res.Email != "new@example.com" {
			t.Errorf("OAuthSignIn() handoff = %+v", res)
		}
		if res.Tokens != nil {
			t.Error("OAuthSignIn() issued tokens for needs-signup result")
		}
		if created {
			t.Error("OAuthSignIn() created an identity row before signup completion")
		}
	})

	t.Run("existing identity signs in and backfills email", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.oauthVerifier.VerifyFunc = func(ctx context.Context, provider domain.AuthProvider, idToken string) (*domain.OAuthClaims, error) {
			return &domain.OAuthClaims{Provider: provider, Subject: "google-sub-1", Email: "known@example.com"}, nil
		}
		f.authRepo.FindByProviderIdentifierFunc = func(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error) {
			return &domain.AuthIdentity{ID: "auth-1", Provider: provider, Identifier: identifier, Email: nil}, nil
		}
		f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.UserProfile, error) {
			return &domain.UserProfile{ID: id}, nil
		}
		var backfilled string
		f.authRepo.UpdateEmailFunc = func(ctx context.Context, id, email string) error {
			backfilled = email
			return nil
		}

		res, err := f.svc.OAuthSignIn(context.Background(), domain.ProviderGoogle, "id-token", nil)
		if err != nil {
			t.Fatalf("OAuthSignIn() error = %v", err)
		}
		if res.NeedsSignup || res.Tokens == nil {
			t.Fatalf("OAuthSignIn() = %+v, want issued tokens", res)
		}
		if backfilled != "known@example.com" {
			t.Errorf("backfilled email = %q, want known@example.com", backfilled)
		}
	})

	t.Run("email bound to another provider conflicts", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.oauthVerifier.VerifyFunc = func(ctx context.Context, provider domain.AuthProvider, idToken string) (*domain.OAuthClaims, error) {
			return &domain.OAuthClaims{Provider: provider, Subject: "apple-sub-1", Email: "taken@example.com"}, nil
		}
		f.authRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.AuthIdentity, error) {
			return &domain.AuthIdentity{ID: "auth-2", Provider: domain.ProviderGoogle, Identifier: "google-sub-2"}, nil
		}

		_, err := f.svc.OAuthSignIn(context.Background(), domain.ProviderApple, "id-token", nil)
		var conflict *domain.EmailConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("OAuthSignIn() error = %v, want EmailConflictError", err)
		}
		if conflict.Provider != domain.ProviderGoogle {
			t.Errorf("conflict provider = %s, want google", conflict.Provider)
		}
	})

	t.Run("google token without email is rejected", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.oauthVerifier.VerifyFunc = func(ctx context.Context, provider domain.AuthProvider, idToken string) (*domain.OAuthClaims, error) {
			return &domain.OAuthClaims{Provider: provider, Subject: "google-sub-1"}, nil
		}

		_, err := f.svc.OAuthSignIn(context.Background(), domain.ProviderGoogle, "id-token", nil)
		var verr *domain.OAuthVerificationError
		if !errors.As(err, &verr) {
			t.Fatalf("OAuthSignIn() error = %v, want OAuthVerificationError", err)
		}
	})

	t.Run("apple token without email proceeds to needs signup", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.oauthVerifier.VerifyFunc = func(ctx context.Context, provider domain.AuthProvider, idToken string) (*domain.OAuthClaims, error) {
			return &domain.OAuthClaims{Provider: provider, Subject: "apple-sub-1"}, nil
		}

		res, err := f.svc.OAuthSignIn(context.Background(), domain.ProviderApple, "id-token", nil)
		if err != nil {
			t.Fatalf("OAuthSignIn() error = %v", err)
		}
		if !res.NeedsSignup {
			t.Fatal("OAuthSignIn() NeedsSignup = false, want true")
		}
	})

	t.Run("verification failure propagates", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.oauthVerifier.VerifyFunc = func(ctx context.Context, provider domain.AuthProvider, idToken string) (*domain.OAuthClaims, error) {
			return nil, &domain.OAuthVerificationError{Provider: provider, Reason: "bad signature"}
		}

		_, err := f.svc.OAuthSignIn(context.Background(), domain.ProviderGoogle, "id-token", nil)
		var verr *domain.OAuthVerificationError
		if !errors.As(err, &verr) {
			t.Fatalf("OAuthSignIn() error = %v, want OAuthVerificationError", err)
		}
	})
}

func TestAuthServiceImpl_OAuthSignup(t *testing.T) {
	email := "new@example.com"
	input := domain.OAuthSignupInput{
		Provider:   domain.ProviderGoogle,
		ProviderID: "google-sub-1",
		Email:      &email,
		Name:       "Test User",
		Gender:     "male",
		BirthYear:  1990,
	}

	t.Run("completes the handoff and sends a welcome email", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.authRepo.CreateFunc = func(ctx context.Context, identity *domain.AuthIdentity) error {
			identity.ID = "auth-new"
			return nil
		}
		var welcomeTo string
		f.notificationSvc.SendEmailFunc = func(to, subject, body string) error {
			welcomeTo = to
			return nil
		}

		pair, err := f.svc.OAuthSignup(context.Background(), input)
		if err != nil {
			t.Fatalf("OAuthSignup() error = %v", err)
		}
		if pair == nil {
			t.Fatal("OAuthSignup() returned nil pair")
		}
		if len(f.dispatcher.Dispatched) != 1 || f.dispatcher.Dispatched[0] != "welcome_email" {
			t.Fatalf("dispatched = %v, want [welcome_email]", f.dispatcher.Dispatched)
		}
		if welcomeTo != email {
			t.Errorf("welcome email sent to %q, want %q", welcomeTo, email)
		}
	})

	t.Run("handoff that raced a sign in resolves to the existing identity", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.authRepo.FindByProviderIdentifierFunc = func(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error) {
			e := email
			return &domain.AuthIdentity{ID: "auth-1", Provider: provider, Identifier: identifier, Email: &e}, nil
		}
		f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.UserProfile, error) {
			return &domain.UserProfile{ID: id}, nil
		}
		created := false
		f.authRepo.CreateFunc = func(ctx context.Context, identity *domain.AuthIdentity) error {
			created = true
			return nil
		}

		pair, err := f.svc.OAuthSignup(context.Background(), input)
		if err != nil {
			t.Fatalf("OAuthSignup() error = %v", err)
		}
		if pair == nil {
			t.Fatal("OAuthSignup() returned nil pair")
		}
		if created {
			t.Error("OAuthSignup() created a duplicate identity")
		}
	})

	t.Run("conflicting email is rejected before any insert", func(t *testing.T) {
		f := createAuthServiceForTest(t)
		f.authRepo.FindByEmailFunc = func(ctx context.Context, e string) (*domain.AuthIdentity, error) {
			return &domain.AuthIdentity{ID: "auth-2", Provider: domain.ProviderApple, Identifier: "apple-sub-2"}, nil
		}
		created := false
		f.authRepo.CreateFunc = func(ctx context.Context, identity *domain.AuthIdentity) error {
			created = true
			return nil
		}

		_, err := f.svc.OAuthSignup(context.Background(), input)
		var conflict *domain.EmailConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("OAuthSignup() error = %v, want EmailConflictError", err)
		}
		if created {
			t.Error("OAuthSignup() created an identity despite the conflict")
		}
	})
}

func TestAuthServiceImpl_Profile(t *testing.T) {
	f := createAuthServiceForTest(t)
	f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.UserProfile, error) {
		if id == "auth-1" {
			return &domain.UserProfile{ID: id, Name: "Test User"}, nil
		}
		return nil, domain.ErrUserNotFound
	}

	profile, err := f.svc.Profile(context.Background(), "auth-1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.Name != "Test User" {
		t.Errorf("Profile() name = %q, want Test User", profile.Name)
	}

	if _, err := f.svc.Profile(context.Background(), "auth-x"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("Profile() error = %v, want ErrUserNotFound", err)
	}
}
