package domain

import "time"

// AuthProvider identifies how an identity proved itself.
type AuthProvider string

const (
	ProviderPhone  AuthProvider = "phone"
	ProviderGoogle AuthProvider = "google"
	ProviderApple  AuthProvider = "apple"
)

// AuthIdentity is the core authentication record. Identifier holds the phone
// number for the phone provider and the OAuth subject for google/apple.
// Unique per (provider, identifier); email is globally unique when present.
type AuthIdentity struct {
	ID         string
	Provider   AuthProvider
	Identifier string
	Email      *string
}

// UserProfile shares its primary key with AuthIdentity and is created only
// after identity proof succeeds.
type UserProfile struct {
	ID        string
	Name      string
	Gender    string
	BirthYear int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OtpChallenge is the single live one-time-code challenge for a phone number.
type OtpChallenge struct {
	Phone     string
	Code      string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshToken is the persisted long-lived credential, one row per device.
// Rotation overwrites Token/ExpiresAt/LastUsedAt in place; revocation is
// terminal. Rows are kept after revocation for audit.
type RefreshToken struct {
	ID         string
	AuthID     string
	Token      string
	DeviceInfo *string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	LastUsedAt time.Time
	CreatedAt  time.Time
}

// TokenPair is what every successful login, signup or refresh returns.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccessClaims are the decoded claims of a stateless access token.
type AccessClaims struct {
	Subject   string
	IssuedAt  int64
	ExpiresAt int64
}

// OtpPurpose distinguishes login from signup when requesting a code.
type OtpPurpose string

const (
	OtpPurposeLogin  OtpPurpose = "login"
	OtpPurposeSignup OtpPurpose = "signup"
)

// OtpVerification is the outcome of checking a submitted code.
type OtpVerification int

const (
	OtpUnknown OtpVerification = iota
	OtpValid
	OtpNotFound
	OtpExpired
	OtpMaxAttempts
	OtpInvalid
)

func (v OtpVerification) String() string {
	switch v {
	case OtpValid:
		return "valid"
	case OtpNotFound:
		return "not_found"
	case OtpExpired:
		return "expired"
	case OtpMaxAttempts:
		return "max_attempts"
	case OtpInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// OAuthClaims are the verified claims extracted from a third-party ID token.
type OAuthClaims struct {
	Provider  AuthProvider
	Subject   string
	Email     string
	Issuer    string
	ExpiresAt time.Time
}

// OAuthSignInResult is either an issued token pair or a stateless
// needs-signup handoff carrying the verified provider identity. No identity
// row exists yet in the needs-signup case.
type OAuthSignInResult struct {
	NeedsSignup bool
	Provider    AuthProvider
	ProviderID  string
	Email       string
	Tokens      *TokenPair
}

// PhoneSignupInput carries everything a phone signup needs.
type PhoneSignupInput struct {
	Phone      string
	Code       string
	Name       string
	Gender     string
	BirthYear  int
	DeviceInfo *string
}

// PhoneLoginInput carries everything a phone login needs.
type PhoneLoginInput struct {
	Phone      string
	Code       string
	DeviceInfo *string
}

// OAuthSignupInput completes a needs-signup handoff with profile data.
type OAuthSignupInput struct {
	Provider   AuthProvider
	ProviderID string
	Email      *string
	Name       string
	Gender     string
	BirthYear  int
	DeviceInfo *string
}
