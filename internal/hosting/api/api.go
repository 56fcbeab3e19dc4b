// Package api 提供 HTTP 接口
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/hosting/internal/hosting/metrics"
	"github.com/jimyag/hosting/pkg/ginx"
	"github.com/rs/zerolog"
)

// Options HTTP 服务参数
type Options struct {
	Address string // 绑定地址
	Env     string // 运行环境，/health 中返回
}

type API struct {
	engine  *gin.Engine
	server  *http.Server
	metrics *metrics.Metrics

	auth    *Auth
	servers *Servers
	health  *Health
}

// New 创建 HTTP 服务并注册路由
func New(opts Options, authService AuthServiceInterface, provisioningService ProvisioningServiceInterface, m *metrics.Metrics) (*API, error) {
	if m == nil {
		m = metrics.New()
	}
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	// zerolog.Ctx(ginCtx) 和请求取消需要回落到 Request.Context()
	engine.ContextWithFallback = true
	engine.Use(
		gin.Recovery(),
		ginx.RequestID(),
		accessLog(m),
		cors(),
	)

	api := &API{
		engine:  engine,
		metrics: m,
		auth:    NewAuth(authService),
		servers: NewServers(provisioningService, authService, m),
		health:  NewHealth(opts.Env),
	}

	api.health.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	apiGroup := engine.Group("/api")
	api.auth.RegisterRoutes(apiGroup)
	api.servers.RegisterRoutes(apiGroup)

	api.server = &http.Server{
		Addr:              opts.Address,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return api, nil
}

// Handler 返回 HTTP handler，用于测试
func (a *API) Handler() http.Handler {
	return a.engine
}

// Run 实现 grace.Grace 接口
func (a *API) Run(ctx context.Context) error {
	zerolog.Ctx(ctx).Info().Str("address", a.server.Addr).Msg("API server listening")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 实现 grace.Grace 接口
func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "API Server"
}
