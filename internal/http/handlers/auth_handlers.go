package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mislam/topinspect/domain"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc    domain.AuthService
	otpSvc     domain.OTPService
	refreshSvc domain.RefreshService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, otpSvc domain.OTPService, refreshSvc domain.RefreshService) *AuthHandlers {
	return &AuthHandlers{
		authSvc:    authSvc,
		otpSvc:     otpSvc,
		refreshSvc: refreshSvc,
	}
}

// OtpRequest represents an OTP issuance request
type OtpRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Purpose string `json:"purpose" binding:"required,oneof=login signup"`
}

// PhoneSignupRequest represents a phone signup request
type PhoneSignupRequest struct {
	Phone      string         `json:"phone" binding:"required"`
	Code       string         `json:"code" binding:"required"`
	Name       string         `json:"name" binding:"required"`
	Gender     string         `json:"gender" binding:"required,oneof=male female"`
	BirthYear  int            `json:"birthYear" binding:"required,gte=1900,lte=2100"`
	DeviceInfo map[string]any `json:"deviceInfo,omitempty"`
}

// PhoneLoginRequest represents a phone login request
type PhoneLoginRequest struct {
	Phone      string         `json:"phone" binding:"required"`
	Code       string         `json:"code" binding:"required"`
	DeviceInfo map[string]any `json:"deviceInfo,omitempty"`
}

// OAuthSignInRequest represents a Google/Apple sign-in request
type OAuthSignInRequest struct {
	IDToken    string         `json:"idToken" binding:"required"`
	DeviceInfo map[string]any `json:"deviceInfo,omitempty"`
}

// OAuthSignupRequest completes an OAuth needs-signup handoff
type OAuthSignupRequest struct {
	Provider   string         `json:"provider" binding:"required,oneof=google apple"`
	ProviderID string         `json:"providerId" binding:"required"`
	Email      *string        `json:"email,omitempty" binding:"omitempty,email"`
	Name       string         `json:"name" binding:"required"`
	Gender     string         `json:"gender" binding:"required,oneof=male female"`
	BirthYear  int            `json:"birthYear" binding:"required,gte=1900,lte=2100"`
	DeviceInfo map[string]any `json:"deviceInfo,omitempty"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest represents a logout request
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RequestOtp handles POST /auth/phone/otp
func (h *AuthHandlers) RequestOtp(c *gin.Context) {
	var req OtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	userExists, err := h.otpSvc.Request(c.Request.Context(), req.Phone, domain.OtpPurpose(req.Purpose))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"userExists": userExists})
}

// PhoneSignup handles POST /auth/phone/signup
func (h *AuthHandlers) PhoneSignup(c *gin.Context) {
	var req PhoneSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	pair, err := h.authSvc.PhoneSignup(c.Request.Context(), domain.PhoneSignupInput{
		Phone:      req.Phone,
		Code:       req.Code,
		Name:       req.Name,
		Gender:     req.Gender,
		BirthYear:  req.BirthYear,
		DeviceInfo: encodeDeviceInfo(req.DeviceInfo),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tokenResponse(pair))
}

// PhoneLogin handles POST /auth/phone/login
func (h *AuthHandlers) PhoneLogin(c *gin.Context) {
	var req PhoneLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	pair, err := h.authSvc.PhoneLogin(c.Request.Context(), domain.PhoneLoginInput{
		Phone:      req.Phone,
		Code:       req.Code,
		DeviceInfo: encodeDeviceInfo(req.DeviceInfo),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(pair))
}

// OAuthSignIn returns a handler for POST /auth/google and POST /auth/apple.
func (h *AuthHandlers) OAuthSignIn(provider domain.AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OAuthSignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}

		result, err := h.authSvc.OAuthSignIn(c.Request.Context(), provider, req.IDToken, encodeDeviceInfo(req.DeviceInfo))
		if err != nil {
			writeDomainError(c, err)
			return
		}

		if result.NeedsSignup {
			body := gin.H{
				"needsSignup": true,
				"provider":    result.Provider,
				"providerId":  result.ProviderID,
			}
			if result.Email != "" {
				body["email"] = result.Email
			}
			c.JSON(http.StatusOK, body)
			return
		}

		c.JSON(http.StatusOK, tokenResponse(result.Tokens))
	}
}

// OAuthSignup handles POST /auth/oauth/signup
func (h *AuthHandlers) OAuthSignup(c *gin.Context) {
	var req OAuthSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	pair, err := h.authSvc.OAuthSignup(c.Request.Context(), domain.OAuthSignupInput{
		Provider:   domain.AuthProvider(req.Provider),
		ProviderID: req.ProviderID,
		Email:      req.Email,
		Name:       req.Name,
		Gender:     req.Gender,
		BirthYear:  req.BirthYear,
		DeviceInfo: encodeDeviceInfo(req.DeviceInfo),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tokenResponse(pair))
}

// Refresh handles POST /auth/token/refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	pair, err := h.refreshSvc.Rotate(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Logout handles POST /auth/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := h.refreshSvc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /auth/me (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	authID := c.GetString("auth_id")
	if authID == "" {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	profile, err := h.authSvc.Profile(c.Request.Context(), authID)
	if err != nil {
		// A valid token whose profile is gone means signup never completed.
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusConflict, "CONFLICT", "Profile required")
			return
		}
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        profile.ID,
		"name":      profile.Name,
		"gender":    profile.Gender,
		"birthYear": profile.BirthYear,
		"createdAt": profile.CreatedAt,
		"updatedAt": profile.UpdatedAt,
	})
}

func tokenResponse(pair *domain.TokenPair) gin.H {
	return gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}
}

// encodeDeviceInfo serializes client device metadata for storage. Nil maps
// stay nil so the column is NULL rather than "{}".
func encodeDeviceInfo(info map[string]any) *string {
	if len(info) == 0 {
		return nil
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}
