package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mislam/topinspect/domain"
)

// errorBody is the shared non-2xx response shape.
type errorBody struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorBody{Error: message, Code: code})
}

// writeDomainError maps service errors onto the wire taxonomy. Unrecognized
// errors are infra failures: logged with full context, surfaced generically.
func writeDomainError(c *gin.Context, err error) {
	var conflict *domain.EmailConflictError
	var oauthErr *domain.OAuthVerificationError

	switch {
	case errors.Is(err, domain.ErrOTPRateLimited):
		respondError(c, http.StatusTooManyRequests, "OTP_RATE_LIMITED", "Too many OTP requests, try again later")
	case errors.Is(err, domain.ErrRefreshRateLimited):
		respondError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later")
	case errors.Is(err, domain.ErrUserExists):
		respondError(c, http.StatusConflict, "USER_EXISTS", "User already exists. Please login instead.")
	case errors.Is(err, domain.ErrProfileIncomplete):
		respondError(c, http.StatusConflict, "PROFILE_INCOMPLETE", "Account setup incomplete. Please contact support.")
	case errors.Is(err, domain.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found. Please sign up first.")
	case errors.Is(err, domain.ErrOTPExpired):
		respondError(c, http.StatusUnauthorized, "EXPIRED_OTP", "OTP has expired")
	case errors.Is(err, domain.ErrOTPMaxAttempts):
		respondError(c, http.StatusUnauthorized, "OTP_MAX_ATTEMPTS", "Too many failed attempts. Please request a new OTP.")
	case errors.Is(err, domain.ErrOTPInvalid):
		respondError(c, http.StatusUnauthorized, "OTP_INVALID", "Invalid OTP! Please check and try again.")
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		respondError(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	case errors.As(err, &conflict):
		respondError(c, http.StatusConflict, "CONFLICT", conflict.Error())
	case errors.As(err, &oauthErr):
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", oauthErr.Error())
	default:
		log.Printf("INTERNAL_ERROR: path=%s error=%v", c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
