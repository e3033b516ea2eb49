package domain

import (
	"errors"
	"fmt"
)

// Identity conflicts
var (
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrProfileIncomplete = errors.New("user profile incomplete")
)

// OTP errors
var (
	ErrOTPRateLimited = errors.New("otp requested too recently")
	ErrOTPExpired     = errors.New("otp has expired")
	ErrOTPInvalid     = errors.New("invalid otp code")
	ErrOTPMaxAttempts = errors.New("maximum otp attempts exceeded")
)

// Token errors
var (
	ErrTokenExpired         = errors.New("access token expired")
	ErrTokenInvalid         = errors.New("invalid access token")
	ErrTokenMalformed       = errors.New("malformed access token")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrRefreshRateLimited   = errors.New("token refreshed too recently")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// Generic authentication failure
var ErrUnauthorized = errors.New("unauthorized")

// EmailConflictError reports that an email is already bound to an identity
// on a different provider.
type EmailConflictError struct {
	Provider AuthProvider
}

func (e *EmailConflictError) Error() string {
	name, article := providerDisplay(e.Provider)
	return fmt.Sprintf("This email is already associated with %s %s account. Please sign in with %s instead.", article, name, name)
}

func providerDisplay(p AuthProvider) (name, article string) {
	switch p {
	case ProviderApple:
		return "Apple", "an"
	case ProviderGoogle:
		return "Google", "a"
	case ProviderPhone:
		return "Phone", "a"
	default:
		return string(p), "a"
	}
}

// OAuthVerificationError is a failed third-party token check. It always maps
// to an unauthorized response; Reason carries provider-specific messaging.
type OAuthVerificationError struct {
	Provider AuthProvider
	Reason   string
}

func (e *OAuthVerificationError) Error() string {
	return fmt.Sprintf("%s token verification failed: %s", e.Provider, e.Reason)
}
