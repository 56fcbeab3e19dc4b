package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jimyag/hosting/pkg/ginx"
)

type Health struct {
	env string
}

func NewHealth(env string) *Health {
	return &Health{env: env}
}

func (h *Health) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", ginx.Adapt2(h.Health))
}

// Health 存活检查
func (h *Health) Health(ctx *gin.Context) gin.H {
	return gin.H{"status": "ok", "env": h.env}
}
