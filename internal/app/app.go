package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mislam/topinspect/internal/config"
	httpx "github.com/mislam/topinspect/internal/http"
	"github.com/mislam/topinspect/internal/http/handlers"
	"github.com/mislam/topinspect/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.RedisClient.Ping(context.Background()); err != nil {
		return err
	}

	authH := handlers.NewAuthHandlers(c.AuthSvc, c.OTPSvc, c.RefreshSvc)
	jwtMW := middleware.NewAuthMW(c.TokenSvc)

	r := httpx.BuildRouter(authH, jwtMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
