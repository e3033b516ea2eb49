package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/mislam/topinspect/domain"
	"github.com/mislam/topinspect/internal/http/handlers"
	"github.com/mislam/topinspect/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/phone/otp", ah.RequestOtp)
	auth.POST("/phone/signup", ah.PhoneSignup)
	auth.POST("/phone/login", ah.PhoneLogin)
	auth.POST("/google", ah.OAuthSignIn(domain.ProviderGoogle))
	auth.POST("/apple", ah.OAuthSignIn(domain.ProviderApple))
	auth.POST("/oauth/signup", ah.OAuthSignup)
	auth.POST("/token/refresh", ah.Refresh)
	auth.POST("/logout", ah.Logout)

	protected := r.Group("/auth").Use(jwtmw.WithJWT())
	protected.GET("/me", ah.Me)

	return r
}
