package domain

import (
	"context"
	"crypto"
	"time"
)

// AuthRepository defines identity data access operations
type AuthRepository interface {
	Create(ctx context.Context, identity *AuthIdentity) error
	FindByProviderIdentifier(ctx context.Context, provider AuthProvider, identifier string) (*AuthIdentity, error)
	FindByEmail(ctx context.Context, email string) (*AuthIdentity, error)
	FindByID(ctx context.Context, id string) (*AuthIdentity, error)
	UpdateEmail(ctx context.Context, id, email string) error
	Delete(ctx context.Context, id string) error
}

// UserRepository defines profile data access operations
type UserRepository interface {
	Create(ctx context.Context, profile *UserProfile) error
	FindByID(ctx context.Context, id string) (*UserProfile, error)
}

// OtpRepository defines challenge data access operations. Upsert replaces any
// prior challenge for the phone; IncrementAttempts returns the new count.
type OtpRepository interface {
	Upsert(ctx context.Context, challenge *OtpChallenge) error
	FindByPhone(ctx context.Context, phone string) (*OtpChallenge, error)
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}

// TokenRepository defines refresh token data access operations. Rotate and
// Revoke are conditional single-row updates: they report false when no row
// matched, which is how single-use rotation stays race-free without locks.
type TokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	Rotate(ctx context.Context, oldToken, newToken string, expiresAt, lastUsedAt time.Time) (bool, error)
	Revoke(ctx context.Context, token string, at time.Time) (bool, error)
}

// TokenService mints access tokens, generates opaque refresh tokens and
// persists refresh token rows.
type TokenService interface {
	IssueAccessToken(authID string) (string, error)
	IssueRefreshToken() (string, error)
	IssueTokenPair(ctx context.Context, authID string, deviceInfo *string) (*TokenPair, error)
	ValidateAccessToken(token string) (*AccessClaims, error)
}

// OTPService defines the one-time-code state machine
type OTPService interface {
	Request(ctx context.Context, phone string, purpose OtpPurpose) (userExists bool, err error)
	Verify(ctx context.Context, phone, code string) (OtpVerification, error)
}

// RefreshService rotates and revokes refresh tokens
type RefreshService interface {
	Rotate(ctx context.Context, token string) (*TokenPair, error)
	Logout(ctx context.Context, token string) error
}

// AuthService composes identity proof, existence checks and token issuance
// per entry point
type AuthService interface {
	PhoneSignup(ctx context.Context, in PhoneSignupInput) (*TokenPair, error)
	PhoneLogin(ctx context.Context, in PhoneLoginInput) (*TokenPair, error)
	OAuthSignIn(ctx context.Context, provider AuthProvider, idToken string, deviceInfo *string) (*OAuthSignInResult, error)
	OAuthSignup(ctx context.Context, in OAuthSignupInput) (*TokenPair, error)
	Profile(ctx context.Context, authID string) (*UserProfile, error)
}

// OAuthVerifier validates third-party identity tokens
type OAuthVerifier interface {
	Verify(ctx context.Context, provider AuthProvider, idToken string) (*OAuthClaims, error)
}

// KeyResolver supplies provider signing keys by key ID. Implementations may
// cache; the verifier never does.
type KeyResolver interface {
	ResolveKey(ctx context.Context, provider AuthProvider, kid string) (crypto.PublicKey, error)
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// Dispatcher runs named background tasks with at-most-once, fire-and-forget
// semantics: tasks never block the caller and may be dropped on shutdown.
// Failures are logged, not returned.
type Dispatcher interface {
	Dispatch(name string, fn func(ctx context.Context) error)
}
