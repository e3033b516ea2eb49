package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mislam/topinspect/domain"
)

// AuthMW validates bearer access tokens
type AuthMW struct {
	tokenSvc domain.TokenService
}

// NewAuthMW creates authentication middleware
func NewAuthMW(tokenSvc domain.TokenService) *AuthMW {
	return &AuthMW{tokenSvc: tokenSvc}
}

// WithJWT requires a valid bearer access token and stores the authenticated
// identity ID in the context. Expired tokens are routine and not logged;
// malformed or badly signed tokens are logged as potential security signals.
func (m *AuthMW) WithJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortError(c, "MISSING_TOKEN", "Access token required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortError(c, "MISSING_TOKEN", "Access token required")
			return
		}
		token := parts[1]

		claims, err := m.tokenSvc.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				abortError(c, "EXPIRED_TOKEN", "Access token expired")
				return
			}
			log.Printf("ACCESS_TOKEN_REJECTED: error=%v token_prefix=%s", err, tokenPrefix(token))
			abortError(c, "INVALID_TOKEN", "Invalid access token")
			return
		}

		c.Set("auth_id", claims.Subject)
		c.Next()
	}
}

func abortError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "code": code})
}

func tokenPrefix(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:10] + "..."
}
